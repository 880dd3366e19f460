package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/amplifai/lesson-service/internal/domain"
)

// LessonView is the read-side representation of a stored lesson: the decoded
// document plus row identity and timestamps.
type LessonView struct {
	ID        string
	Document  domain.LessonDocument
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScoredLesson pairs a view with its relevance score for a query.
type ScoredLesson struct {
	LessonView
	Score int
}

// Field weights for relevance scoring. Tag weight applies once per matching
// tag; tag matching is substring in either direction.
const (
	weightTitle    = 20
	weightTag      = 15
	weightSummary  = 10
	weightProblem  = 12
	weightSolution = 12
)

// Rank scores views against the query and returns matches sorted by score,
// highest first. Zero-score views are excluded. An empty query matches
// nothing. Rank is pure: it never mutates its inputs and its output depends
// only on them, with ties resolved by input order.
func Rank(query string, views []LessonView) []ScoredLesson {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []ScoredLesson{}
	}
	out := make([]ScoredLesson, 0, len(views))
	for _, v := range views {
		score := scoreLesson(q, v.Document)
		if score <= 0 {
			continue
		}
		out = append(out, ScoredLesson{LessonView: v, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func scoreLesson(q string, doc domain.LessonDocument) int {
	score := 0
	if strings.Contains(strings.ToLower(doc.Title), q) {
		score += weightTitle
	}
	for _, tag := range doc.Tags {
		lt := strings.ToLower(tag)
		if strings.Contains(lt, q) || strings.Contains(q, lt) {
			score += weightTag
		}
	}
	if strings.Contains(strings.ToLower(doc.QuickSummary), q) {
		score += weightSummary
	}
	if strings.Contains(strings.ToLower(doc.DetailedSummary.Problem), q) {
		score += weightProblem
	}
	if strings.Contains(strings.ToLower(doc.DetailedSummary.Solution), q) {
		score += weightSolution
	}
	return score
}

// SearchService loads stored lessons and ranks them against a query.
type SearchService struct {
	Repo domain.LessonRepository
}

// NewSearchService wires the search service.
func NewSearchService(repo domain.LessonRepository) SearchService {
	return SearchService{Repo: repo}
}

// Search returns ranked matches for the query across all stored lessons.
func (s SearchService) Search(ctx domain.Context, query string) ([]ScoredLesson, error) {
	rows, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(query, viewsOf(rows)), nil
}

func viewsOf(rows []domain.Lesson) []LessonView {
	views := make([]LessonView, 0, len(rows))
	for _, r := range rows {
		views = append(views, LessonView{
			ID:        r.ID,
			Document:  domain.DecodeDocument(r.LessonJSON, r.Title),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return views
}
