package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrEmptyInput            = errors.New("empty input")
	ErrPayloadTooLarge       = errors.New("payload too large")
	ErrUnsupportedType       = errors.New("unsupported media type")
	ErrCredentialMissing     = errors.New("credential missing")
	ErrGeneration            = errors.New("generation failed")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrInternal              = errors.New("internal error")
)

// Difficulty is the coarse implementation-effort classification of a lesson.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the three known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// StructuredLesson is the fixed shape every generation backend must produce
// from free-form narrative text. Title, QuickSummary, Problem, Solution and
// Impact are required; the rest is filled with defaults downstream.
type StructuredLesson struct {
	Title           string     `json:"title"`
	QuickSummary    string     `json:"quickSummary"`
	Problem         string     `json:"problem"`
	Solution        string     `json:"solution"`
	Impact          string     `json:"impact"`
	TipsWarnings    string     `json:"tipsWarnings,omitempty"`
	Difficulty      Difficulty `json:"difficulty"`
	TimeToImplement string     `json:"timeToImplement"`
}

// Lesson is the persisted row. LessonJSON holds the full document; Subject
// and GradeLevel are duplicated out of it for indexable filtering.
// Invariant: ContentHash is unique per distinct generated content.
type Lesson struct {
	ID               string
	Title            string
	ContentHash      string
	OriginalFilename string
	FileType         string
	LessonJSON       string
	Subject          string
	GradeLevel       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repositories (ports)

type LessonRepository interface {
	// Create inserts a new lesson and returns its id (generates one if empty).
	// Returns an error wrapping ErrConflict when the content hash already exists.
	Create(ctx Context, l Lesson) (string, error)
	// FindByHash returns the lesson with the given content hash, or an error
	// wrapping ErrNotFound.
	FindByHash(ctx Context, hash string) (Lesson, error)
	Get(ctx Context, id string) (Lesson, error)
	// List returns all lessons, newest first.
	List(ctx Context) ([]Lesson, error)
	Count(ctx Context) (int64, error)
}

// GenerationBackend (port)
//
// GenerateLesson turns free-form narrative text into the fixed lesson shape
// plus a list of suggested tags. Implementations must treat rawText as
// untrusted free text.
type GenerationBackend interface {
	Name() string
	GenerateLesson(ctx Context, rawText string) (StructuredLesson, []string, error)
}

// TextExtractor (port)
// Extract returns best-effort plain text for a single uploaded document.
// Implementations may call external services (e.g., Tika) or use local libraries.
type TextExtractor interface {
	Extract(ctx Context, fileName, mediaType string, data []byte) (string, error)
}

// Context is an alias to context.Context; adapters and usecases pass it through.
type Context = context.Context
