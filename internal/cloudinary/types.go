// Package cloudinary provides an HTTP client for the Cloudinary upload API,
// covering signed video uploads with eager (synchronous) transformations and
// delivery URL building for poster frames.
package cloudinary

import (
	"fmt"
	"strings"
)

// Transformation describes a single derivative the provider generates
// eagerly at upload time.
type Transformation struct {
	Format  string // Target container format, e.g. "mp4" or "webm"
	Width   int    // Target width in pixels
	Height  int    // Target height in pixels
	Crop    string // Crop mode, e.g. "scale"
	Quality string // Quality directive, e.g. "auto:eco"
	Flags   string // Delivery flags, e.g. "streaming_optimization"
}

// component serializes the transformation into Cloudinary's URL syntax.
// Parameters are emitted in a fixed order so the eager string (and therefore
// the request signature) is deterministic.
func (t Transformation) component() string {
	var parts []string
	if t.Crop != "" {
		parts = append(parts, "c_"+t.Crop)
	}
	if t.Flags != "" {
		parts = append(parts, "fl_"+t.Flags)
	}
	if t.Height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", t.Height))
	}
	if t.Quality != "" {
		parts = append(parts, "q_"+t.Quality)
	}
	if t.Width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", t.Width))
	}

	s := strings.Join(parts, ",")
	if t.Format != "" {
		s += "/" + t.Format
	}
	return s
}

// EagerString serializes a list of transformations into the pipe-separated
// form the upload API expects for the "eager" parameter.
func EagerString(eager []Transformation) string {
	components := make([]string, 0, len(eager))
	for _, t := range eager {
		components = append(components, t.component())
	}
	return strings.Join(components, "|")
}

// LandingPageEager returns the two derivatives generated for landing-page
// backgrounds: an MP4 and a WebM, both 1280x720 scaled with automatic
// eco quality and streaming optimization.
func LandingPageEager() []Transformation {
	return []Transformation{
		{
			Format:  "mp4",
			Width:   1280,
			Height:  720,
			Crop:    "scale",
			Quality: "auto:eco",
			Flags:   "streaming_optimization",
		},
		{
			Format:  "webm",
			Width:   1280,
			Height:  720,
			Crop:    "scale",
			Quality: "auto:eco",
			Flags:   "streaming_optimization",
		},
	}
}

// UploadOptions contains the parameters for a video upload.
type UploadOptions struct {
	// PublicID is the remote object identifier for the uploaded asset.
	PublicID string
	// Overwrite replaces any prior asset (and derivatives) under PublicID.
	Overwrite bool
	// Eager lists derivatives the provider generates at upload time.
	Eager []Transformation
	// EagerAsync requests background generation. This service always leaves
	// it false so the call blocks until both derivatives exist.
	EagerAsync bool
}

// UploadResult is the provider's response to a video upload.
type UploadResult struct {
	// PublicID is the identifier the asset was stored under.
	PublicID string `json:"public_id"`
	// SecureURL is the HTTPS delivery URL of the original upload.
	SecureURL string `json:"secure_url"`
	// Format is the container format of the stored original.
	Format string `json:"format"`
	// Bytes is the stored size of the original.
	Bytes int64 `json:"bytes"`
	// Duration is the video duration in seconds.
	Duration float64 `json:"duration"`
	// Eager holds one entry per requested eager transformation, in request
	// order.
	Eager []EagerResult `json:"eager"`
}

// EagerResult describes one generated derivative.
type EagerResult struct {
	// SecureURL is the HTTPS delivery URL of the derivative.
	SecureURL string `json:"secure_url"`
	// Format is the derivative's container format.
	Format string `json:"format"`
	// Bytes is the derivative's size.
	Bytes int64 `json:"bytes"`
}

// errorResponse is the provider's error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
