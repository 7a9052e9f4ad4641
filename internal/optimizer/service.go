package optimizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinematiclanding/video-optimizer-api/internal/cloudinary"
	"github.com/cinematiclanding/video-optimizer-api/internal/storage"
)

// Static errors for the optimization pipeline.
var (
	// ErrEmptyVideo is returned when neither video bytes nor a source path
	// are provided, or the payload is empty.
	ErrEmptyVideo = errors.New("optimizer: video payload is empty")
)

// Input carries one upload through the pipeline. Exactly one of Video and
// SourcePath is used: Video bytes are staged to a temp file that is always
// removed afterwards, while SourcePath points at an existing file that is
// used in place and never deleted.
type Input struct {
	Video         []byte
	SourcePath    string
	ProjectName   string
	CustomerEmail string
}

// Result holds the delivery URLs and embed snippet for one optimized video.
type Result struct {
	PublicID    string
	OriginalURL string
	MP4URL      string
	WebMURL     string
	PosterURL   string
	EmbedCode   string
}

// Service orchestrates the optimization pipeline against the
// media-transformation provider.
type Service struct {
	provider cloudinary.Client
	store    storage.Storage
	logger   *slog.Logger
	timeout  time.Duration
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithProviderTimeout bounds the blocking provider call. Zero disables the
// deadline.
func WithProviderTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService creates a new optimization Service.
func NewService(provider cloudinary.Client, store storage.Storage, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		provider: provider,
		store:    store,
		logger:   logger,
		timeout:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Optimize runs the pipeline for one upload: stage, archive, remote call,
// map, embed. The staged temp file is removed on success and failure alike.
func (s *Service) Optimize(ctx context.Context, in Input) (*Result, error) {
	project := in.ProjectName
	if project == "" {
		project = "untitled"
	}
	email := in.CustomerEmail
	if email == "" {
		email = "anonymous"
	}
	publicID := PublicID(project, email)

	var path string
	switch {
	case len(in.Video) > 0:
		staged, err := s.store.SaveTemp(ctx, "upload", bytes.NewReader(in.Video))
		if err != nil {
			return nil, fmt.Errorf("stage video: %w", err)
		}
		// Cleanup must run even when the request context already expired.
		cleanupCtx := context.WithoutCancel(ctx)
		defer func() {
			if err := s.store.CleanupTemp(cleanupCtx, []string{staged}); err != nil {
				s.logger.Warn("temp file cleanup failed",
					slog.String("path", staged),
					slog.String("error", err.Error()),
				)
			}
		}()
		path = staged

		s.archiveRaw(ctx, publicID, staged)
	case in.SourcePath != "":
		path = in.SourcePath
	default:
		return nil, ErrEmptyVideo
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	upload, err := s.provider.Upload(callCtx, path, cloudinary.UploadOptions{
		PublicID:  publicID,
		Overwrite: true,
		Eager:     cloudinary.LandingPageEager(),
	})
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	s.logger.Info("provider upload finished",
		slog.String("public_id", upload.PublicID),
		slog.Duration("took", time.Since(started)),
		slog.Int("eager_count", len(upload.Eager)),
	)

	// The provider may skip derivatives it considers redundant; fall back
	// to the original delivery URL so the response always carries three
	// playable sources.
	mp4URL := upload.SecureURL
	if len(upload.Eager) > 0 && upload.Eager[0].SecureURL != "" {
		mp4URL = upload.Eager[0].SecureURL
	}
	webmURL := upload.SecureURL
	if len(upload.Eager) > 1 && upload.Eager[1].SecureURL != "" {
		webmURL = upload.Eager[1].SecureURL
	}

	resultID := upload.PublicID
	if resultID == "" {
		resultID = publicID
	}
	posterURL := s.provider.PosterURL(resultID)

	embedCode, err := RenderEmbed(mp4URL, webmURL, posterURL)
	if err != nil {
		return nil, err
	}

	return &Result{
		PublicID:    resultID,
		OriginalURL: upload.SecureURL,
		MP4URL:      mp4URL,
		WebMURL:     webmURL,
		PosterURL:   posterURL,
		EmbedCode:   embedCode,
	}, nil
}

// archiveRaw copies the staged upload to S3 when an archive backend is
// configured. Archival is best-effort: failures are logged and never
// surfaced to the client.
func (s *Service) archiveRaw(ctx context.Context, publicID, path string) {
	reader, err := s.store.LoadTemp(ctx, path)
	if err != nil {
		s.logger.Warn("raw archive skipped: cannot reopen staged file",
			slog.String("error", err.Error()),
		)
		return
	}
	defer func() { _ = reader.Close() }()

	key := fmt.Sprintf("raw/%s.mp4", publicID)
	url, err := s.store.ArchiveRaw(ctx, key, reader)
	if err != nil {
		if errors.Is(err, storage.ErrS3NotConfigured) {
			return
		}
		s.logger.Warn("raw archive failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("raw upload archived",
		slog.String("key", key),
		slog.String("url", url),
	)
}
