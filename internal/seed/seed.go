// Package seed loads starter lessons from YAML files into the lesson store.
//
// Seeding is idempotent: the content-hash deduplication in the store layer
// means re-running the seeder against the same files creates no duplicates.
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/internal/usecase"
)

type seedFile struct {
	Lessons []seedLesson `yaml:"lessons"`
}

type seedLesson struct {
	Title           string   `yaml:"title"`
	QuickSummary    string   `yaml:"quickSummary"`
	Problem         string   `yaml:"problem"`
	Solution        string   `yaml:"solution"`
	Impact          string   `yaml:"impact"`
	TipsWarnings    string   `yaml:"tipsWarnings"`
	Tags            []string `yaml:"tags"`
	Difficulty      string   `yaml:"difficulty"`
	TimeToImplement string   `yaml:"timeToImplement"`
	Subject         string   `yaml:"subject"`
	GradeLevel      string   `yaml:"gradeLevel"`
}

// Result summarizes one seeding run.
type Result struct {
	Created    int
	Duplicates int
}

// File seeds every lesson from a single YAML file.
func File(ctx domain.Context, store usecase.StoreService, path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("seed file not found: %s", path)
		}
		return Result{}, err
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Result{}, fmt.Errorf("yaml parse %s: %w", path, err)
	}
	if len(f.Lessons) == 0 {
		return Result{}, fmt.Errorf("no lessons in %s", path)
	}

	var res Result
	for i, sl := range f.Lessons {
		if strings.TrimSpace(sl.Title) == "" {
			return res, fmt.Errorf("%w: lesson %d in %s has no title", domain.ErrInvalidArgument, i, path)
		}
		doc := domain.BuildDocument(domain.StructuredLesson{
			Title:           sl.Title,
			QuickSummary:    sl.QuickSummary,
			Problem:         sl.Problem,
			Solution:        sl.Solution,
			Impact:          sl.Impact,
			TipsWarnings:    sl.TipsWarnings,
			Difficulty:      domain.Difficulty(sl.Difficulty),
			TimeToImplement: sl.TimeToImplement,
		}, sl.Tags)
		id, isNew, err := store.Store(ctx, doc, usecase.Provenance{
			OriginalFilename: filepath.Base(path),
			FileType:         "application/yaml",
			Subject:          sl.Subject,
			GradeLevel:       sl.GradeLevel,
		})
		if err != nil {
			return res, fmt.Errorf("seed %q: %w", sl.Title, err)
		}
		if isNew {
			res.Created++
			slog.Info("seeded lesson", slog.String("id", id), slog.String("title", sl.Title))
		} else {
			res.Duplicates++
		}
	}
	return res, nil
}

// Dir seeds every *.yaml and *.yml file in a directory.
func Dir(ctx domain.Context, store usecase.StoreService, dir string) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, err
	}
	var total Result
	var seeded int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		res, err := File(ctx, store, filepath.Join(dir, e.Name()))
		if err != nil {
			return total, err
		}
		total.Created += res.Created
		total.Duplicates += res.Duplicates
		seeded++
	}
	if seeded == 0 {
		return total, fmt.Errorf("no seed files in %s", dir)
	}
	return total, nil
}
