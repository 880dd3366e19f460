package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amplifai/lesson-service/internal/domain"
)

// ListFilter narrows and orders the lesson listing.
type ListFilter struct {
	Query      string
	Tags       []string
	Difficulty domain.Difficulty
	SortBy     string
}

// Sort orders accepted by List. Relevance requires a query; without one it
// degrades to newest.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortOldest    = "oldest"
)

// LessonsService serves the read side of the lesson library.
type LessonsService struct {
	Repo domain.LessonRepository
}

// NewLessonsService wires the lessons read service.
func NewLessonsService(repo domain.LessonRepository) LessonsService {
	return LessonsService{Repo: repo}
}

// List returns lessons matching the filter. With no filter it returns every
// lesson, newest first.
func (s LessonsService) List(ctx domain.Context, f ListFilter) ([]LessonView, error) {
	rows, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := viewsOf(rows)

	if q := strings.TrimSpace(f.Query); q != "" {
		ranked := Rank(q, views)
		views = views[:0]
		for _, r := range ranked {
			views = append(views, r.LessonView)
		}
	}
	if len(f.Tags) > 0 {
		views = filterByTags(views, f.Tags)
	}
	if f.Difficulty != "" {
		if !f.Difficulty.Valid() {
			return nil, fmt.Errorf("%w: difficulty %q", domain.ErrInvalidArgument, f.Difficulty)
		}
		filtered := views[:0]
		for _, v := range views {
			if v.Document.Metadata.Difficulty == f.Difficulty {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	switch f.SortBy {
	case "", SortNewest:
		sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	case SortOldest:
		sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.Before(views[j].CreatedAt) })
	case SortRelevance:
		// Rank already ordered by score; without a query fall back to newest.
		if strings.TrimSpace(f.Query) == "" {
			sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
		}
	default:
		return nil, fmt.Errorf("%w: sortBy %q", domain.ErrInvalidArgument, f.SortBy)
	}
	return views, nil
}

func filterByTags(views []LessonView, tags []string) []LessonView {
	want := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return views
	}
	out := views[:0]
	for _, v := range views {
		have := make(map[string]struct{}, len(v.Document.Tags))
		for _, t := range v.Document.Tags {
			have[strings.ToLower(t)] = struct{}{}
		}
		matched := false
		for _, w := range want {
			if _, ok := have[w]; ok {
				matched = true
				break
			}
		}
		if matched {
			out = append(out, v)
		}
	}
	return out
}

// Get returns a single lesson view by id.
func (s LessonsService) Get(ctx domain.Context, id string) (LessonView, error) {
	row, err := s.Repo.Get(ctx, id)
	if err != nil {
		return LessonView{}, err
	}
	return LessonView{
		ID:        row.ID,
		Document:  domain.DecodeDocument(row.LessonJSON, row.Title),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Tags returns the distinct tags across all lessons, sorted alphabetically.
// Case-insensitive duplicates collapse to the first spelling seen.
func (s LessonsService) Tags(ctx domain.Context) ([]string, error) {
	rows, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string)
	for _, r := range rows {
		doc := domain.DecodeDocument(r.LessonJSON, r.Title)
		for _, t := range doc.Tags {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; !ok {
				seen[key] = strings.TrimSpace(t)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// ChatResult is a conversational answer over the lesson library.
type ChatResult struct {
	Reply   string
	Lessons []ScoredLesson
}

const maxChatLessons = 3

// Chat answers a free-text question by ranking lessons against it and
// composing a short reply around the best matches.
func (s LessonsService) Chat(ctx domain.Context, message string) (ChatResult, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return ChatResult{}, fmt.Errorf("%w: message", domain.ErrEmptyInput)
	}
	rows, err := s.Repo.List(ctx)
	if err != nil {
		return ChatResult{}, err
	}
	ranked := Rank(msg, viewsOf(rows))
	if len(ranked) == 0 {
		return ChatResult{
			Reply:   "I couldn't find specific lessons matching your query. Try asking about AI tools, automation, document processing, or workflow optimization.",
			Lessons: []ScoredLesson{},
		}, nil
	}
	if len(ranked) > maxChatLessons {
		ranked = ranked[:maxChatLessons]
	}
	top := ranked[0]
	reply := fmt.Sprintf("I found %d relevant lesson(s) for you! %q seems most relevant - %s",
		len(ranked), top.Document.Title, top.Document.QuickSummary)
	return ChatResult{Reply: reply, Lessons: ranked}, nil
}
