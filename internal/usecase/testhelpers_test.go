package usecase_test

import (
	"context"
	"fmt"
	"time"

	"github.com/amplifai/lesson-service/internal/domain"
)

// repoStub is an in-memory domain.LessonRepository for tests.
type repoStub struct {
	lessons   []domain.Lesson
	createErr error
	listErr   error
	nextID    int
}

func (r *repoStub) Create(_ context.Context, l domain.Lesson) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	for _, existing := range r.lessons {
		if existing.ContentHash == l.ContentHash {
			return "", fmt.Errorf("%w: content_hash %s", domain.ErrConflict, l.ContentHash)
		}
	}
	r.nextID++
	if l.ID == "" {
		l.ID = fmt.Sprintf("lesson-%d", r.nextID)
	}
	// strictly increasing timestamps so ordering tests are deterministic
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.nextID) * time.Second)
	l.CreatedAt, l.UpdatedAt = ts, ts
	r.lessons = append(r.lessons, l)
	return l.ID, nil
}

func (r *repoStub) FindByHash(_ context.Context, hash string) (domain.Lesson, error) {
	for _, l := range r.lessons {
		if l.ContentHash == hash {
			return l, nil
		}
	}
	return domain.Lesson{}, fmt.Errorf("%w: hash", domain.ErrNotFound)
}

func (r *repoStub) Get(_ context.Context, id string) (domain.Lesson, error) {
	for _, l := range r.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Lesson{}, fmt.Errorf("%w: id %s", domain.ErrNotFound, id)
}

func (r *repoStub) List(_ context.Context) ([]domain.Lesson, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Lesson, len(r.lessons))
	copy(out, r.lessons)
	// newest first, matching the SQL ordering
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *repoStub) Count(_ context.Context) (int64, error) {
	return int64(len(r.lessons)), nil
}

// backendStub is a canned domain.GenerationBackend.
type backendStub struct {
	name   string
	lesson domain.StructuredLesson
	tags   []string
	err    error
	calls  int
}

func (b *backendStub) Name() string { return b.name }

func (b *backendStub) GenerateLesson(_ context.Context, _ string) (domain.StructuredLesson, []string, error) {
	b.calls++
	if b.err != nil {
		return domain.StructuredLesson{}, nil, b.err
	}
	return b.lesson, b.tags, nil
}

func sampleLesson(title string) domain.StructuredLesson {
	return domain.StructuredLesson{
		Title:           title,
		QuickSummary:    "quick summary",
		Problem:         "problem",
		Solution:        "solution",
		Impact:          "impact",
		Difficulty:      domain.DifficultyIntermediate,
		TimeToImplement: "2-4 hours",
	}
}
