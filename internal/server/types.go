// Package server provides the HTTP server for the video optimizer API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// OptimizeURLRequest is the HTTP request body for the JSON optimize endpoint.
type OptimizeURLRequest struct {
	// VideoFile is either a data:<mime>;base64,<payload> URL or a
	// server-local file path.
	VideoFile string `json:"videoFile" validate:"required"`
	// ProjectName labels the upload; it feeds the remote object identifier.
	ProjectName string `json:"projectName"`
	// CustomerEmail identifies the customer; hashed into the identifier.
	CustomerEmail string `json:"customerEmail"`
}

// FileVariant describes one delivery URL in the response.
type FileVariant struct {
	URL         string `json:"url"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

// OptimizedFiles groups the three delivery variants.
type OptimizedFiles struct {
	MP4    FileVariant `json:"mp4"`
	WebM   FileVariant `json:"webm"`
	Poster FileVariant `json:"poster"`
}

// Instructions walks the customer through using the embed code.
type Instructions struct {
	Step1 string `json:"step1"`
	Step2 string `json:"step2"`
	Step3 string `json:"step3"`
	Step4 string `json:"step4"`
}

// TechnicalSpecs summarizes what the optimization produced.
type TechnicalSpecs struct {
	Resolution      string   `json:"resolution"`
	Formats         []string `json:"formats"`
	Optimization    string   `json:"optimization"`
	PosterImage     string   `json:"posterImage"`
	MobileOptimized bool     `json:"mobileOptimized"`
	LoadingStrategy string   `json:"loadingStrategy"`
}

// OptimizeResponse is the success envelope for both optimize endpoints.
// The JSON endpoint returns the reduced variant without instructions or
// technical specs.
type OptimizeResponse struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	OptimizedFiles OptimizedFiles  `json:"optimizedFiles"`
	EmbedCode      string          `json:"embedCode"`
	Instructions   *Instructions   `json:"instructions,omitempty"`
	TechnicalSpecs *TechnicalSpecs `json:"technicalSpecs,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
