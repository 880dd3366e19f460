// Command server starts the lesson library HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amplifai/lesson-service/internal/adapter/ai/anthropic"
	"github.com/amplifai/lesson-service/internal/adapter/ai/gateway"
	"github.com/amplifai/lesson-service/internal/adapter/ai/offline"
	httpserver "github.com/amplifai/lesson-service/internal/adapter/httpserver"
	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/adapter/repo/postgres"
	tikaext "github.com/amplifai/lesson-service/internal/adapter/textextractor/tika"
	"github.com/amplifai/lesson-service/internal/app"
	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	lessonRepo := postgres.NewLessonRepo(pool)

	// Generation chain, in priority order.
	genSvc := usecase.NewGenerateService(
		gateway.New(cfg),
		anthropic.New(cfg),
		offline.New(),
	)

	ext := tikaext.New(cfg.TikaURL)

	ingestSvc := usecase.NewIngestService(ext, cfg)
	storeSvc := usecase.NewStoreService(lessonRepo)
	lessonsSvc := usecase.NewLessonsService(lessonRepo)
	searchSvc := usecase.NewSearchService(lessonRepo)

	dbCheck, tikaCheck := app.BuildReadinessChecks(cfg, pool)

	srv := httpserver.NewServer(cfg, ingestSvc, genSvc, storeSvc, lessonsSvc, searchSvc, dbCheck, tikaCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
