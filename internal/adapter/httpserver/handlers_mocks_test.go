package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pscheid92/photocontest/internal/domain"
	"github.com/pscheid92/photocontest/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	submitPhotoFn func(ctx context.Context, req domain.SubmitPhotoRequest) (*domain.Photo, error)
	listPhotosFn  func(ctx context.Context) ([]domain.Photo, error)
	getPhotoFn    func(ctx context.Context, photoID string) (*domain.Photo, error)
	castVoteFn    func(ctx context.Context, identity, photoID string) (int64, error)
}

func (m *mockAppService) SubmitPhoto(ctx context.Context, req domain.SubmitPhotoRequest) (*domain.Photo, error) {
	if m.submitPhotoFn != nil {
		return m.submitPhotoFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) ListPhotos(ctx context.Context) ([]domain.Photo, error) {
	if m.listPhotosFn != nil {
		return m.listPhotosFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) GetPhoto(ctx context.Context, photoID string) (*domain.Photo, error) {
	if m.getPhotoFn != nil {
		return m.getPhotoFn(ctx, photoID)
	}
	return nil, domain.ErrPhotoNotFound
}

func (m *mockAppService) CastVote(ctx context.Context, identity, photoID string) (int64, error) {
	if m.castVoteFn != nil {
		return m.castVoteFn(ctx, identity, photoID)
	}
	return 1, nil
}

// --- Test helpers ---

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:              "0",
		UploadDir:         t.TempDir(),
		MaxUploadSize:     "1M",
		AllowedExtensions: "gif,jpg,png",
		MaxTitleLength:    25,
		MaxAuthorLength:   50,
	}
}

func newTestServer(t *testing.T, app appService, opts ...Option) *Server {
	t.Helper()
	return NewServer(testConfig(t), app, opts...)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, app appService, opts ...Option) *Server {
	t.Helper()
	return NewServer(cfg, app, opts...)
}

// serve runs req through the full middleware and routing stack.
func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func samplePhoto(id string) *domain.Photo {
	return &domain.Photo{
		ID:        id,
		Title:     "Sunset",
		Author:    "Ann",
		Email:     "ann@example.com",
		Src:       id + ".jpg",
		Votes:     3,
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

