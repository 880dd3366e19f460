// Package postgres provides PostgreSQL database adapters.
//
// It implements the lesson repository on top of a minimal pgx pool. The
// uniqueness of content_hash is enforced by the database so that concurrent
// duplicate inserts resolve to exactly one stored row.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/amplifai/lesson-service/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repo for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LessonRepo persists and loads lessons using a minimal pgx pool.
type LessonRepo struct{ Pool PgxPool }

// NewLessonRepo constructs a LessonRepo with the given pool.
func NewLessonRepo(p PgxPool) *LessonRepo { return &LessonRepo{Pool: p} }

const uniqueViolation = "23505"

// Create stores a new lesson and returns its id (generates one if empty).
// A unique-violation on content_hash is surfaced as domain.ErrConflict so the
// gateway can re-query the winning row.
func (r *LessonRepo) Create(ctx domain.Context, l domain.Lesson) (string, error) {
	tracer := otel.Tracer("repo.lessons")
	ctx, span := tracer.Start(ctx, "lessons.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "lessons"),
	)
	id := l.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO lessons (id, title, content_hash, original_filename, file_type, lesson_json, subject, grade_level, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.Pool.Exec(ctx, q, id, l.Title, l.ContentHash, l.OriginalFilename, l.FileType, l.LessonJSON, l.Subject, l.GradeLevel, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%w: content_hash %s: %v", domain.ErrConflict, l.ContentHash, err)
		}
		return "", fmt.Errorf("op=lesson.create: %w", err)
	}
	return id, nil
}

// FindByHash loads a lesson by content hash or returns domain.ErrNotFound.
func (r *LessonRepo) FindByHash(ctx domain.Context, hash string) (domain.Lesson, error) {
	tracer := otel.Tracer("repo.lessons")
	ctx, span := tracer.Start(ctx, "lessons.FindByHash")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "lessons"),
	)
	q := selectCols + ` FROM lessons WHERE content_hash=$1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, hash), "lesson.find_by_hash")
}

// Get loads a lesson by id or returns domain.ErrNotFound.
func (r *LessonRepo) Get(ctx domain.Context, id string) (domain.Lesson, error) {
	tracer := otel.Tracer("repo.lessons")
	ctx, span := tracer.Start(ctx, "lessons.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "lessons"),
	)
	q := selectCols + ` FROM lessons WHERE id=$1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, id), "lesson.get")
}

// List returns all lessons, newest first.
func (r *LessonRepo) List(ctx domain.Context) ([]domain.Lesson, error) {
	tracer := otel.Tracer("repo.lessons")
	ctx, span := tracer.Start(ctx, "lessons.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "lessons"),
	)
	q := selectCols + ` FROM lessons ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=lesson.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Lesson
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.ContentHash, &l.OriginalFilename, &l.FileType, &l.LessonJSON, &l.Subject, &l.GradeLevel, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("op=lesson.list.scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=lesson.list.rows: %w", err)
	}
	return out, nil
}

// Count returns the total number of lessons.
func (r *LessonRepo) Count(ctx domain.Context) (int64, error) {
	tracer := otel.Tracer("repo.lessons")
	ctx, span := tracer.Start(ctx, "lessons.Count")
	defer span.End()
	row := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM lessons`)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("op=lesson.count: %w", err)
	}
	return count, nil
}

const selectCols = `SELECT id, title, content_hash, original_filename, file_type, lesson_json, subject, grade_level, created_at, updated_at`

func (r *LessonRepo) scanOne(row pgx.Row, op string) (domain.Lesson, error) {
	var l domain.Lesson
	if err := row.Scan(&l.ID, &l.Title, &l.ContentHash, &l.OriginalFilename, &l.FileType, &l.LessonJSON, &l.Subject, &l.GradeLevel, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lesson{}, fmt.Errorf("%w: op=%s", domain.ErrNotFound, op)
		}
		return domain.Lesson{}, fmt.Errorf("op=%s: %w", op, err)
	}
	return l, nil
}
