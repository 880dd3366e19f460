package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/domain"
)

// Provenance records where a lesson's source narrative came from.
type Provenance struct {
	OriginalFilename string
	FileType         string
	Subject          string
	GradeLevel       string
}

// StoreService persists lesson documents with content-hash deduplication.
type StoreService struct {
	Repo domain.LessonRepository
}

// NewStoreService wires the store service.
func NewStoreService(repo domain.LessonRepository) StoreService {
	return StoreService{Repo: repo}
}

// Store saves a document unless identical content already exists. It returns
// the id of the stored or pre-existing row and whether a new row was created.
// Storing the same document twice always resolves to the same id.
func (s StoreService) Store(ctx domain.Context, doc domain.LessonDocument, prov Provenance) (string, bool, error) {
	raw := domain.CanonicalJSON(doc)
	hash := domain.ContentHash(doc)

	existing, err := s.Repo.FindByHash(ctx, hash)
	if err == nil {
		slog.Info("duplicate lesson content, reusing", slog.String("id", existing.ID))
		observability.LessonsStoredTotal.WithLabelValues("duplicate").Inc()
		return existing.ID, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, fmt.Errorf("op=store.find_by_hash: %w", err)
	}

	id, err := s.Repo.Create(ctx, domain.Lesson{
		Title:            doc.Title,
		ContentHash:      hash,
		OriginalFilename: prov.OriginalFilename,
		FileType:         prov.FileType,
		LessonJSON:       string(raw),
		Subject:          prov.Subject,
		GradeLevel:       prov.GradeLevel,
	})
	if err != nil {
		// A concurrent insert can win the race; the unique index decides.
		if errors.Is(err, domain.ErrConflict) {
			winner, ferr := s.Repo.FindByHash(ctx, hash)
			if ferr != nil {
				return "", false, fmt.Errorf("op=store.conflict_requery: %w", ferr)
			}
			observability.LessonsStoredTotal.WithLabelValues("duplicate").Inc()
			return winner.ID, false, nil
		}
		return "", false, fmt.Errorf("op=store.create: %w", err)
	}
	observability.LessonsStoredTotal.WithLabelValues("new").Inc()
	return id, true, nil
}
