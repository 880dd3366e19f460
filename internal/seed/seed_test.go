package seed_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/internal/seed"
	"github.com/amplifai/lesson-service/internal/usecase"
)

type memRepo struct {
	lessons []domain.Lesson
	nextID  int
}

func (r *memRepo) Create(_ context.Context, l domain.Lesson) (string, error) {
	for _, existing := range r.lessons {
		if existing.ContentHash == l.ContentHash {
			return "", fmt.Errorf("%w: dup", domain.ErrConflict)
		}
	}
	r.nextID++
	if l.ID == "" {
		l.ID = fmt.Sprintf("id-%d", r.nextID)
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	r.lessons = append(r.lessons, l)
	return l.ID, nil
}

func (r *memRepo) FindByHash(_ context.Context, hash string) (domain.Lesson, error) {
	for _, l := range r.lessons {
		if l.ContentHash == hash {
			return l, nil
		}
	}
	return domain.Lesson{}, domain.ErrNotFound
}

func (r *memRepo) Get(_ context.Context, id string) (domain.Lesson, error) {
	for _, l := range r.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Lesson{}, domain.ErrNotFound
}

func (r *memRepo) List(_ context.Context) ([]domain.Lesson, error) { return r.lessons, nil }
func (r *memRepo) Count(_ context.Context) (int64, error)          { return int64(len(r.lessons)), nil }

func TestFile(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	store := usecase.NewStoreService(repo)

	res, err := seed.File(context.Background(), store, filepath.Join("testdata", "starter.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Zero(t, res.Duplicates)

	// idempotent: second run creates nothing
	res, err = seed.File(context.Background(), store, filepath.Join("testdata", "starter.yaml"))
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 2, res.Duplicates)
	assert.Len(t, repo.lessons, 2)

	// provenance and metadata carried through
	rows, _ := repo.List(context.Background())
	byTitle := map[string]domain.Lesson{}
	for _, r := range rows {
		byTitle[r.Title] = r
	}
	contract := byTitle["Contract Review Acceleration With Claude"]
	assert.Equal(t, "starter.yaml", contract.OriginalFilename)
	assert.Equal(t, "Legal Operations", contract.Subject)
	doc := domain.DecodeDocument(contract.LessonJSON, contract.Title)
	assert.Contains(t, doc.Tags, "Claude API")
	assert.Equal(t, domain.DifficultyIntermediate, doc.Metadata.Difficulty)
	assert.Len(t, doc.Tips, 2)
}

func TestFile_Missing(t *testing.T) {
	t.Parallel()
	store := usecase.NewStoreService(&memRepo{})
	_, err := seed.File(context.Background(), store, filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFile_BadYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lessons: [:::"), 0o600))
	store := usecase.NewStoreService(&memRepo{})
	_, err := seed.File(context.Background(), store, path)
	require.Error(t, err)
}

func TestDir(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	store := usecase.NewStoreService(repo)

	res, err := seed.Dir(context.Background(), store, "testdata")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	_, err = seed.Dir(context.Background(), store, t.TempDir())
	require.Error(t, err)
}
