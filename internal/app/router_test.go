package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/amplifai/lesson-service/internal/adapter/httpserver"
	"github.com/amplifai/lesson-service/internal/app"
	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, app.ParseOrigins(" https://a.example , https://b.example "))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , "))
}

type emptyRepo struct{}

func (emptyRepo) Create(context.Context, domain.Lesson) (string, error) {
	return "", domain.ErrInternal
}
func (emptyRepo) FindByHash(context.Context, string) (domain.Lesson, error) {
	return domain.Lesson{}, domain.ErrNotFound
}
func (emptyRepo) Get(context.Context, string) (domain.Lesson, error) {
	return domain.Lesson{}, domain.ErrNotFound
}
func (emptyRepo) List(context.Context) ([]domain.Lesson, error) { return nil, nil }
func (emptyRepo) Count(context.Context) (int64, error)          { return 0, nil }

func TestBuildRouter_Smoke(t *testing.T) {
	t.Parallel()
	cfg := config.Config{AppEnv: "test", RateLimitPerMin: 100, CORSAllowOrigins: "*"}
	repo := emptyRepo{}
	srv := httpserver.NewServer(
		cfg,
		usecase.IngestService{},
		usecase.GenerateService{},
		usecase.NewStoreService(repo),
		usecase.NewLessonsService(repo),
		usecase.NewSearchService(repo),
		func(context.Context) error { return nil },
		func(context.Context) error { return nil },
	)
	h := app.BuildRouter(cfg, srv)

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/v1/lessons", http.StatusOK},
		{"/v1/lessons/tags", http.StatusOK},
		{"/v1/lessons/search", http.StatusOK},
		{"/v1/lessons/unknown-id", http.StatusNotFound},
	} {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, tc.path)
	}

	// security headers applied at the outermost layer
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
