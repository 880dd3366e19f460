// Package domain defines entities, ports, and the error taxonomy.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// LessonDocument is the full semi-structured lesson body persisted as JSON.
// Downstream readers must tolerate missing fields; DecodeDocument applies
// the documented defaults.
type LessonDocument struct {
	Title           string          `json:"title"`
	QuickSummary    string          `json:"quickSummary"`
	DetailedSummary DetailedSummary `json:"detailedSummary"`
	Tips            []string        `json:"tips"`
	Warnings        []string        `json:"warnings"`
	Tags            []string        `json:"tags"`
	Metadata        LessonMetadata  `json:"metadata"`
	Author          Author          `json:"author"`
	Stats           LessonStats     `json:"stats"`
	CustomAITool    *CustomAITool   `json:"customAiTool,omitempty"`
	PromptUsed      *PromptUsed     `json:"promptUsed,omitempty"`
}

type DetailedSummary struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Impact   string `json:"impact"`
}

type LessonMetadata struct {
	AITool          string     `json:"aiTool"`
	UseCase         string     `json:"useCase"`
	Team            string     `json:"team"`
	Difficulty      Difficulty `json:"difficulty"`
	TimeToImplement string     `json:"timeToImplement"`
}

type Author struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	ContactPreference string `json:"contactPreference"`
}

type LessonStats struct {
	Views     int `json:"views"`
	Likes     int `json:"likes"`
	Bookmarks int `json:"bookmarks"`
}

type CustomAITool struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	GitHubURL        string `json:"githubUrl,omitempty"`
	DocumentationURL string `json:"documentationUrl,omitempty"`
}

type PromptUsed struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Notes   string `json:"notes,omitempty"`
}

// BuildDocument assembles a full lesson document from a generated structured
// lesson plus suggested/custom tags. Tips are split out of the free-form
// tips-and-warnings text; unknown fields get community defaults.
func BuildDocument(sl StructuredLesson, tags []string) LessonDocument {
	var tips []string
	for _, line := range strings.Split(sl.TipsWarnings, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tips = append(tips, line)
		}
	}
	difficulty := sl.Difficulty
	if !difficulty.Valid() {
		difficulty = DifficultyIntermediate
	}
	timeToImplement := sl.TimeToImplement
	if timeToImplement == "" {
		timeToImplement = "2-4 hours"
	}
	return LessonDocument{
		Title:        sl.Title,
		QuickSummary: sl.QuickSummary,
		DetailedSummary: DetailedSummary{
			Problem:  sl.Problem,
			Solution: sl.Solution,
			Impact:   sl.Impact,
		},
		Tips:     tips,
		Warnings: []string{},
		Tags:     dedupeTags(tags),
		Metadata: LessonMetadata{
			AITool:          "User Generated",
			UseCase:         "General",
			Team:            "Community",
			Difficulty:      difficulty,
			TimeToImplement: timeToImplement,
		},
		Author: Author{
			Name:              "Community Member",
			Email:             "community@example.com",
			ContactPreference: "none",
		},
		Stats: LessonStats{},
	}
}

func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CanonicalJSON serializes the document with a stable field order so that
// semantically identical content always produces identical bytes.
func CanonicalJSON(doc LessonDocument) []byte {
	// encoding/json emits struct fields in declaration order, which is the
	// canonical order for hashing.
	b, _ := json.Marshal(doc)
	return b
}

// ContentHash is the deduplication fingerprint: SHA-256 hex over the
// canonical serialization of the generated lesson document.
func ContentHash(doc LessonDocument) string {
	sum := sha256.Sum256(CanonicalJSON(doc))
	return hex.EncodeToString(sum[:])
}

// DecodeDocument parses a stored lesson JSON blob and fills defaults for
// every missing field. A blob that fails to decode yields a placeholder
// document rather than an error; stored rows must always render.
func DecodeDocument(raw string, fallbackTitle string) LessonDocument {
	var doc LessonDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return placeholderDocument(fallbackTitle)
	}
	if doc.Title == "" {
		doc.Title = fallbackTitle
	}
	if doc.Title == "" {
		doc.Title = "Untitled Lesson"
	}
	if doc.QuickSummary == "" {
		doc.QuickSummary = "No summary available"
	}
	if doc.DetailedSummary.Problem == "" {
		doc.DetailedSummary.Problem = "No problem description"
	}
	if doc.DetailedSummary.Solution == "" {
		doc.DetailedSummary.Solution = "No solution description"
	}
	if doc.DetailedSummary.Impact == "" {
		doc.DetailedSummary.Impact = "No impact description"
	}
	if doc.Tips == nil {
		doc.Tips = []string{}
	}
	if doc.Warnings == nil {
		doc.Warnings = []string{}
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.Metadata.AITool == "" {
		doc.Metadata.AITool = "Unknown"
	}
	if doc.Metadata.UseCase == "" {
		doc.Metadata.UseCase = "General"
	}
	if doc.Metadata.Team == "" {
		doc.Metadata.Team = "Unknown Team"
	}
	if !doc.Metadata.Difficulty.Valid() {
		doc.Metadata.Difficulty = DifficultyBeginner
	}
	if doc.Metadata.TimeToImplement == "" {
		doc.Metadata.TimeToImplement = "1-2 hours"
	}
	if doc.Author.Name == "" {
		doc.Author = Author{Name: "Anonymous", Email: "unknown@example.com", ContactPreference: "none"}
	}
	return doc
}

func placeholderDocument(title string) LessonDocument {
	if title == "" {
		title = "Untitled Lesson"
	}
	return LessonDocument{
		Title:        title,
		QuickSummary: "Lesson data could not be loaded",
		DetailedSummary: DetailedSummary{
			Problem:  "Data unavailable",
			Solution: "Data unavailable",
			Impact:   "Data unavailable",
		},
		Tips:     []string{},
		Warnings: []string{},
		Tags:     []string{},
		Metadata: LessonMetadata{
			AITool:          "Unknown",
			UseCase:         "General",
			Team:            "Unknown Team",
			Difficulty:      DifficultyBeginner,
			TimeToImplement: "1-2 hours",
		},
		Author: Author{Name: "Anonymous", Email: "unknown@example.com", ContactPreference: "none"},
	}
}
