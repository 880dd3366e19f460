package ai

import (
	"encoding/json"
	"fmt"

	"github.com/amplifai/lesson-service/internal/domain"
)

// lessonPayload is the wire shape remote backends are instructed to return.
type lessonPayload struct {
	Title           string   `json:"title"`
	QuickSummary    string   `json:"quickSummary"`
	Problem         string   `json:"problem"`
	Solution        string   `json:"solution"`
	Impact          string   `json:"impact"`
	TipsWarnings    string   `json:"tipsWarnings"`
	Tags            []string `json:"tags"`
	Difficulty      string   `json:"difficulty"`
	TimeToImplement string   `json:"timeToImplement"`
}

// defaultTags is used when a backend returns no usable tag list.
var defaultTags = []string{"AI Implementation", "Process Improvement"}

// ParseLessonResponse cleans a raw LLM response and decodes it into the fixed
// lesson shape. Missing required fields or undecodable output fail with
// domain.ErrGeneration so the orchestrator can fall through.
func ParseLessonResponse(raw string) (domain.StructuredLesson, []string, error) {
	cleaned := CleanJSONResponse(raw)
	var p lessonPayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: decode response: %v", domain.ErrGeneration, err)
	}
	required := map[string]string{
		"title":        p.Title,
		"quickSummary": p.QuickSummary,
		"problem":      p.Problem,
		"solution":     p.Solution,
		"impact":       p.Impact,
	}
	for field, v := range required {
		if v == "" {
			return domain.StructuredLesson{}, nil, fmt.Errorf("%w: missing required field %s", domain.ErrGeneration, field)
		}
	}
	sl := domain.StructuredLesson{
		Title:           p.Title,
		QuickSummary:    p.QuickSummary,
		Problem:         p.Problem,
		Solution:        p.Solution,
		Impact:          p.Impact,
		TipsWarnings:    p.TipsWarnings,
		Difficulty:      domain.Difficulty(p.Difficulty),
		TimeToImplement: p.TimeToImplement,
	}
	if !sl.Difficulty.Valid() {
		sl.Difficulty = domain.DifficultyIntermediate
	}
	if sl.TimeToImplement == "" {
		sl.TimeToImplement = "2-4 hours"
	}
	tags := p.Tags
	if len(tags) == 0 {
		tags = defaultTags
	}
	return sl, tags, nil
}
