// Command seed loads starter lessons from YAML files into the database.
//
// Usage:
//
//	seed [-dir seeds] [-file lessons.yaml]
//
// Seeding is idempotent; re-running it never creates duplicate lessons.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/adapter/repo/postgres"
	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/seed"
	"github.com/amplifai/lesson-service/internal/usecase"
)

func main() {
	dir := flag.String("dir", "", "directory of YAML seed files")
	file := flag.String("file", "", "single YAML seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	if *dir == "" && *file == "" {
		slog.Error("either -dir or -file is required")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	store := usecase.NewStoreService(postgres.NewLessonRepo(pool))

	var res seed.Result
	if *file != "" {
		res, err = seed.File(ctx, store, *file)
	} else {
		res, err = seed.Dir(ctx, store, *dir)
	}
	if err != nil {
		slog.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("seeding complete", slog.Int("created", res.Created), slog.Int("duplicates", res.Duplicates))
}
