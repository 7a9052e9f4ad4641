package cloudinary

import (
	"context"
	"crypto/sha1" // #nosec G505 - SHA-1 is what the provider's signing scheme requires
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Static errors for Cloudinary client operations.
var (
	// ErrCloudNameRequired is returned when the cloud name is not provided.
	ErrCloudNameRequired = errors.New("cloudinary: cloud name is required")
	// ErrCredentialsRequired is returned when the API key or secret is not provided.
	ErrCredentialsRequired = errors.New("cloudinary: API key and secret are required")
	// ErrFilePathRequired is returned when the upload file path is not provided.
	ErrFilePathRequired = errors.New("cloudinary: file path is required")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("cloudinary: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("cloudinary: rate limited")
	// ErrUploadFailed is returned when the upload fails with a non-2xx status code.
	ErrUploadFailed = errors.New("cloudinary: upload failed")
)

// posterTransformation renders a JPEG frame taken one second into the video,
// scaled to the same 1280x720 box as the eager derivatives.
const posterTransformation = "q_auto:eco/c_scale,h_720,w_1280/so_1.0"

// Client defines the capabilities the optimizer expects from the
// media-transformation provider.
type Client interface {
	// Upload sends the video at filePath to the provider and blocks until
	// all eager derivatives have been generated.
	Upload(ctx context.Context, filePath string, opts UploadOptions) (*UploadResult, error)

	// PosterURL builds the delivery URL of the poster frame for an
	// uploaded asset.
	PosterURL(publicID string) string
}

// HTTPClient is the HTTP implementation of the Client interface.
type HTTPClient struct {
	cloudName   string
	apiKey      string
	apiSecret   string
	uploadBase  string
	deliverBase string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithUploadBaseURL sets a custom base URL for the upload API.
func WithUploadBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.uploadBase = strings.TrimSuffix(url, "/")
	}
}

// WithDeliveryBaseURL sets a custom base URL for delivery URLs.
func WithDeliveryBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.deliverBase = strings.TrimSuffix(url, "/")
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new Cloudinary HTTP client.
// The cloud name identifies the account; the API key and secret sign
// every upload request.
func NewClient(cloudName, apiKey, apiSecret string, opts ...ClientOption) (*HTTPClient, error) {
	if cloudName == "" {
		return nil, ErrCloudNameRequired
	}
	if apiKey == "" || apiSecret == "" {
		return nil, ErrCredentialsRequired
	}

	c := &HTTPClient{
		cloudName:   cloudName,
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		uploadBase:  "https://api.cloudinary.com/v1_1",
		deliverBase: "https://res.cloudinary.com",
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
		maxRetries:  2,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload sends the video at filePath to the provider's video/upload endpoint
// and blocks until all eager derivatives have been generated.
func (c *HTTPClient) Upload(ctx context.Context, filePath string, opts UploadOptions) (*UploadResult, error) {
	if filePath == "" {
		return nil, ErrFilePathRequired
	}

	params := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if opts.PublicID != "" {
		params["public_id"] = opts.PublicID
	}
	if opts.Overwrite {
		params["overwrite"] = "true"
	}
	if len(opts.Eager) > 0 {
		params["eager"] = EagerString(opts.Eager)
		params["eager_async"] = strconv.FormatBool(opts.EagerAsync)
	}
	params["signature"] = apiSignature(params, c.apiSecret)
	params["api_key"] = c.apiKey

	url := fmt.Sprintf("%s/%s/video/upload", c.uploadBase, c.cloudName)

	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("cloudinary: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		result, err := c.doUpload(ctx, url, filePath, params)
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("cloudinary: max retries exceeded: %w", lastErr)
}

// doUpload performs a single multipart upload request.
func (c *HTTPClient) doUpload(ctx context.Context, url, filePath string, params map[string]string) (*UploadResult, error) {
	f, err := os.Open(filePath) // #nosec G304 - path points at our own staged file
	if err != nil {
		return nil, fmt.Errorf("cloudinary: open upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Stream the multipart body so large videos are never buffered whole.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		for key, value := range params {
			if err := mw.WriteField(key, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("cloudinary: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("cloudinary: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := providerMessage(respBody)
		if resp.StatusCode >= 500 {
			return nil, &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, msg)}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, msg)}
		}
		return nil, fmt.Errorf("%w with status %d: %s", ErrUploadFailed, resp.StatusCode, msg)
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("cloudinary: unmarshal response: %w", err)
	}

	return &result, nil
}

// PosterURL builds the delivery URL of the poster frame for an uploaded asset.
func (c *HTTPClient) PosterURL(publicID string) string {
	return fmt.Sprintf("%s/%s/video/upload/%s/%s.jpg", c.deliverBase, c.cloudName, posterTransformation, publicID)
}

// apiSignature computes the provider's request signature: all parameters
// except file, api_key and signature itself, sorted by name, joined as a
// query string, with the API secret appended, hashed with SHA-1.
func apiSignature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "file" || k == "api_key" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// providerMessage extracts the human-readable message from an error body,
// falling back to the raw body.
func providerMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return string(body)
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
