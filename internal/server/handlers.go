package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cinematiclanding/video-optimizer-api/internal/optimizer"
)

// defaultMultipartMemory caps how much of a multipart form is held in memory
// before spilling to disk.
const defaultMultipartMemory = 32 << 20

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service        *optimizer.Service
	validator      *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithMaxUploadBytes caps the accepted video size on the multipart endpoint.
// Zero disables the cap.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handlers) {
		h.maxUploadBytes = n
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *optimizer.Service, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET / requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Message: "Cinematic Video Optimizer API is running!",
		Status:  "healthy",
	})
}

// OptimizeVideo handles POST /optimize-video multipart requests.
func (h *Handlers) OptimizeVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(defaultMultipartMemory); err != nil {
		h.logger.Warn("invalid multipart form",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid multipart form", "INVALID_MULTIPART")
		return
	}

	file, header, err := r.FormFile("videoFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No video file provided", "MISSING_VIDEO_FILE")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "video exceeds the maximum upload size", "FILE_TOO_LARGE")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		writeError(w, http.StatusBadRequest, "File must be a video", "NOT_A_VIDEO")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read uploaded file", "READ_FAILED")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "video payload is empty", "EMPTY_VIDEO")
		return
	}

	result, err := h.service.Optimize(r.Context(), optimizer.Input{
		Video:         data,
		ProjectName:   r.FormValue("projectName"),
		CustomerEmail: r.FormValue("customerEmail"),
	})
	if err != nil {
		h.writeOptimizeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, fullResponse(result))
}

// OptimizeVideoURL handles POST /optimize-video-url JSON requests carrying a
// data-URL payload or a server-local path.
func (h *Handlers) OptimizeVideoURL(w http.ResponseWriter, r *http.Request) {
	var req OptimizeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "No video file provided", "MISSING_VIDEO_FILE")
		return
	}

	input := optimizer.Input{
		ProjectName:   req.ProjectName,
		CustomerEmail: req.CustomerEmail,
	}

	if optimizer.IsDataURL(req.VideoFile) {
		_, data, err := optimizer.ParseDataURL(req.VideoFile)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid data URL payload", "INVALID_DATA_URL")
			return
		}
		if len(data) == 0 {
			writeError(w, http.StatusBadRequest, "video payload is empty", "EMPTY_VIDEO")
			return
		}
		input.Video = data
	} else {
		input.SourcePath = req.VideoFile
	}

	result, err := h.service.Optimize(r.Context(), input)
	if err != nil {
		h.writeOptimizeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reducedResponse(result))
}

// writeOptimizeError maps pipeline errors onto the HTTP contract: validation
// problems are the client's fault, everything else is a 500 carrying the
// original failure text.
func (h *Handlers) writeOptimizeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, optimizer.ErrEmptyVideo) {
		writeError(w, http.StatusBadRequest, "video payload is empty", "EMPTY_VIDEO")
		return
	}

	h.logger.Error("video optimization failed",
		slog.String("request_id", RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError,
		fmt.Sprintf("Failed to process video: %s", err), "OPTIMIZE_FAILED")
}

// fullResponse builds the rich success envelope for the multipart endpoint.
func fullResponse(result *optimizer.Result) OptimizeResponse {
	return OptimizeResponse{
		Success: true,
		Message: "Video optimized successfully!",
		OptimizedFiles: OptimizedFiles{
			MP4: FileVariant{
				URL:         result.MP4URL,
				Format:      "MP4 (H.264)",
				Description: "Best compatibility across all devices",
			},
			WebM: FileVariant{
				URL:         result.WebMURL,
				Format:      "WebM (VP9)",
				Description: "Smaller file size for modern browsers",
			},
			Poster: FileVariant{
				URL:         result.PosterURL,
				Format:      "JPG",
				Description: "Preview image for instant loading",
			},
		},
		EmbedCode: result.EmbedCode,
		Instructions: &Instructions{
			Step1: "Copy the embed code below",
			Step2: "Paste it into your landing page HTML",
			Step3: "Replace the placeholder content with your actual content",
			Step4: "Publish and enjoy your professional video background!",
		},
		TechnicalSpecs: &TechnicalSpecs{
			Resolution:      "1280x720 (720p HD)",
			Formats:         []string{"MP4 (broad compatibility)", "WebM (smaller size)"},
			Optimization:    "Auto-quality compression",
			PosterImage:     "Auto-generated from video frame",
			MobileOptimized: true,
			LoadingStrategy: "Immediate (optimized for hero sections)",
		},
	}
}

// reducedResponse builds the URL-only envelope for the JSON endpoint.
func reducedResponse(result *optimizer.Result) OptimizeResponse {
	return OptimizeResponse{
		Success: true,
		Message: "Video optimized successfully!",
		OptimizedFiles: OptimizedFiles{
			MP4:    FileVariant{URL: result.MP4URL},
			WebM:   FileVariant{URL: result.WebMURL},
			Poster: FileVariant{URL: result.PosterURL},
		},
		EmbedCode: result.EmbedCode,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
