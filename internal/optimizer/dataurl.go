package optimizer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Static errors for data-URL parsing.
var (
	// ErrNotDataURL is returned when the string does not carry the data: scheme.
	ErrNotDataURL = errors.New("optimizer: not a data URL")
	// ErrMalformedDataURL is returned when the data URL has no comma separator.
	ErrMalformedDataURL = errors.New("optimizer: malformed data URL")
)

// IsDataURL reports whether s looks like an inline data URL rather than a
// file path.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL decodes a data:<mime>;base64,<payload> string into its media
// type and raw bytes.
func ParseDataURL(s string) (mediaType string, data []byte, err error) {
	if !IsDataURL(s) {
		return "", nil, ErrNotDataURL
	}

	header, encoded, found := strings.Cut(s, ",")
	if !found {
		return "", nil, ErrMalformedDataURL
	}

	mediaType = strings.TrimPrefix(header, "data:")
	mediaType = strings.TrimSuffix(mediaType, ";base64")

	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("optimizer: decode data URL payload: %w", err)
	}

	return mediaType, data, nil
}
