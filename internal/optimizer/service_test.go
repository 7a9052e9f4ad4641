package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cinematiclanding/video-optimizer-api/internal/cloudinary"
	"github.com/cinematiclanding/video-optimizer-api/internal/storage"
)

// mockProvider implements cloudinary.Client for testing.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Upload(ctx context.Context, filePath string, opts cloudinary.UploadOptions) (*cloudinary.UploadResult, error) {
	args := m.Called(ctx, filePath, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudinary.UploadResult), args.Error(1)
}

func (m *mockProvider) PosterURL(publicID string) string {
	args := m.Called(publicID)
	return args.String(0)
}

func newTestService(t *testing.T) (*Service, *mockProvider, *storage.LocalStorage) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	provider := &mockProvider{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewService(provider, store, logger), provider, store
}

func tempDirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestOptimize_Success(t *testing.T) {
	svc, provider, store := newTestService(t)

	wantID := PublicID("Demo Launch", "jane@example.com")
	provider.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(opts cloudinary.UploadOptions) bool {
		return opts.PublicID == wantID && opts.Overwrite && len(opts.Eager) == 2 && !opts.EagerAsync
	})).Return(&cloudinary.UploadResult{
		PublicID:  wantID,
		SecureURL: "https://res.example.com/original.mov",
		Eager: []cloudinary.EagerResult{
			{SecureURL: "https://res.example.com/clip.mp4", Format: "mp4"},
			{SecureURL: "https://res.example.com/clip.webm", Format: "webm"},
		},
	}, nil)
	provider.On("PosterURL", wantID).Return("https://res.example.com/clip.jpg")

	result, err := svc.Optimize(context.Background(), Input{
		Video:         []byte("fake video bytes"),
		ProjectName:   "Demo Launch",
		CustomerEmail: "jane@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, wantID, result.PublicID)
	assert.Equal(t, "https://res.example.com/original.mov", result.OriginalURL)
	assert.Equal(t, "https://res.example.com/clip.mp4", result.MP4URL)
	assert.Equal(t, "https://res.example.com/clip.webm", result.WebMURL)
	assert.Equal(t, "https://res.example.com/clip.jpg", result.PosterURL)
	assert.Contains(t, result.EmbedCode, result.MP4URL)
	assert.Contains(t, result.EmbedCode, result.WebMURL)
	assert.Contains(t, result.EmbedCode, `poster="https://res.example.com/clip.jpg"`)

	// The staged temp file must be gone after the request.
	assert.Empty(t, tempDirEntries(t, store.TempDir()))

	provider.AssertExpectations(t)
}

func TestOptimize_DefaultsProjectAndEmail(t *testing.T) {
	svc, provider, _ := newTestService(t)

	wantID := PublicID("untitled", "anonymous")
	provider.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(opts cloudinary.UploadOptions) bool {
		return opts.PublicID == wantID
	})).Return(&cloudinary.UploadResult{
		PublicID:  wantID,
		SecureURL: "https://res.example.com/original.mov",
	}, nil)
	provider.On("PosterURL", wantID).Return("https://res.example.com/poster.jpg")

	result, err := svc.Optimize(context.Background(), Input{Video: []byte("bytes")})
	require.NoError(t, err)
	assert.Equal(t, wantID, result.PublicID)
}

func TestOptimize_FallsBackToOriginalURL(t *testing.T) {
	svc, provider, _ := newTestService(t)

	provider.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(&cloudinary.UploadResult{
		PublicID:  "no-eager",
		SecureURL: "https://res.example.com/original.mov",
		Eager:     nil,
	}, nil)
	provider.On("PosterURL", "no-eager").Return("https://res.example.com/poster.jpg")

	result, err := svc.Optimize(context.Background(), Input{Video: []byte("bytes")})
	require.NoError(t, err)

	assert.Equal(t, "https://res.example.com/original.mov", result.MP4URL)
	assert.Equal(t, "https://res.example.com/original.mov", result.WebMURL)
}

func TestOptimize_EmptyPayload(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Optimize(context.Background(), Input{
		ProjectName:   "Demo",
		CustomerEmail: "jane@example.com",
	})
	assert.ErrorIs(t, err, ErrEmptyVideo)
}

func TestOptimize_ProviderFailureCleansUp(t *testing.T) {
	svc, provider, store := newTestService(t)

	provider.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("Invalid video file"))

	_, err := svc.Optimize(context.Background(), Input{Video: []byte("broken")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid video file")

	// Cleanup must run on the failure path too.
	assert.Empty(t, tempDirEntries(t, store.TempDir()))
}

func TestOptimize_SourcePathUsedInPlace(t *testing.T) {
	svc, provider, _ := newTestService(t)

	src := filepath.Join(t.TempDir(), "existing.mp4")
	require.NoError(t, os.WriteFile(src, []byte("existing video"), 0600))

	provider.On("Upload", mock.Anything, src, mock.Anything).Return(&cloudinary.UploadResult{
		PublicID:  "from-path",
		SecureURL: "https://res.example.com/original.mov",
	}, nil)
	provider.On("PosterURL", "from-path").Return("https://res.example.com/poster.jpg")

	_, err := svc.Optimize(context.Background(), Input{SourcePath: src})
	require.NoError(t, err)

	// A caller-provided path is not ours to delete.
	_, statErr := os.Stat(src)
	assert.NoError(t, statErr)
}

func TestOptimize_StagesUploadForProvider(t *testing.T) {
	svc, provider, store := newTestService(t)

	payload := []byte("staged video bytes")
	provider.On("Upload", mock.Anything, mock.MatchedBy(func(path string) bool {
		content, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		return string(content) == string(payload) &&
			filepath.Dir(path) == store.TempDir()
	}), mock.Anything).Return(&cloudinary.UploadResult{
		PublicID:  "staged",
		SecureURL: "https://res.example.com/original.mov",
	}, nil)
	provider.On("PosterURL", "staged").Return("https://res.example.com/poster.jpg")

	_, err := svc.Optimize(context.Background(), Input{Video: payload})
	require.NoError(t, err)

	provider.AssertExpectations(t)
}

func TestOptimize_WrapsProviderError(t *testing.T) {
	svc, provider, _ := newTestService(t)

	providerErr := fmt.Errorf("%w with status 400: Invalid video file", cloudinary.ErrUploadFailed)
	provider.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, providerErr)

	_, err := svc.Optimize(context.Background(), Input{Video: []byte("bytes")})
	require.Error(t, err)
	assert.ErrorIs(t, err, cloudinary.ErrUploadFailed)
}
