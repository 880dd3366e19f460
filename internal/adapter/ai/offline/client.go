// Package offline implements the terminal generation backend. It derives a
// plausible structured lesson from heuristics over the input text and never
// fails, guaranteeing the fallback chain always produces a result with zero
// external dependencies.
package offline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/amplifai/lesson-service/internal/domain"
)

// Client is the deterministic offline backend.
type Client struct{}

// New constructs an offline client.
func New() *Client { return &Client{} }

// Name identifies this backend in fallback transition logs.
func (c *Client) Name() string { return "offline" }

var durationRe = regexp.MustCompile(`(?i)(\d+)\s*(hour|minute|day)`)

// stopWords are ignored by the keyword-frequency tag extraction.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {}, "with": {},
	"from": {}, "were": {}, "was": {}, "are": {}, "have": {}, "has": {},
	"had": {}, "our": {}, "their": {}, "they": {}, "its": {}, "into": {},
	"over": {}, "when": {}, "then": {}, "than": {}, "which": {}, "would": {},
	"could": {}, "should": {}, "used": {}, "using": {}, "use": {}, "been": {},
	"about": {}, "after": {}, "before": {}, "more": {}, "some": {}, "also": {},
	"each": {}, "very": {}, "them": {}, "these": {}, "those": {}, "what": {},
}

// GenerateLesson builds a lesson purely from presence tests and keyword
// frequency over the input. Deterministic: identical input yields identical
// output.
func (c *Client) GenerateLesson(_ domain.Context, rawText string) (domain.StructuredLesson, []string, error) {
	lower := strings.ToLower(rawText)
	hasAPI := strings.Contains(lower, "api")
	hasAutomation := strings.Contains(lower, "automat")
	hasDocument := strings.Contains(lower, "document")
	hasTime := durationRe.MatchString(rawText)

	title := "Streamlined Business Workflow Using AI Tools"
	if hasDocument {
		title = "Automated Document Processing Using AI Tools"
	}

	reduction := "60%"
	if hasTime {
		reduction = "75%"
	}
	workKind := "data processing"
	if hasDocument {
		workKind = "document review"
	}
	approach := "AI tools"
	if hasAPI {
		approach = "API integration"
	}

	difficulty := domain.DifficultyBeginner
	timeToImplement := "2-3 hours"
	if hasAPI {
		difficulty = domain.DifficultyIntermediate
		timeToImplement = "4-6 hours"
	}

	sl := domain.StructuredLesson{
		Title:           title,
		QuickSummary:    "Reduced manual processing time by " + reduction + " through AI automation implementation, improving accuracy and scalability for high-volume operations.",
		Problem:         "Manual " + workKind + " was time-consuming and error-prone, creating bottlenecks in our workflow and limiting our ability to scale operations effectively.",
		Solution:        "Implemented " + approach + " with custom prompts to automate the extraction and analysis of key information, creating a streamlined workflow with minimal human intervention.",
		Impact:          reduction + " time reduction, improved accuracy, and a scalable solution capable of handling much larger volumes with consistent quality.",
		TipsWarnings:    "Start with small pilot projects to validate the approach.\nInvest time in prompt engineering for better results.\nAlways validate AI outputs initially.\nDo not skip human oversight for critical decisions.",
		Difficulty:      difficulty,
		TimeToImplement: timeToImplement,
	}

	var tags []string
	if hasAPI {
		tags = append(tags, "API Integration")
	}
	if hasAutomation {
		tags = append(tags, "Automation")
	}
	if hasDocument {
		tags = append(tags, "Document Processing")
	} else {
		tags = append(tags, "Data Processing")
	}
	if strings.Contains(lower, "claude") {
		tags = append(tags, "Claude API")
	}
	if strings.Contains(lower, "gpt") {
		tags = append(tags, "GPT")
	}
	if strings.Contains(lower, "workflow") {
		tags = append(tags, "Workflow Optimization")
	}
	tags = append(tags, "AI Implementation", "Time Savings")
	tags = append(tags, topKeywords(lower, 2)...)

	return sl, tags, nil
}

var wordRe = regexp.MustCompile(`[a-z]{4,}`)

// topKeywords returns the n most frequent non-stop-words, title-cased.
// Ties break alphabetically so the result is stable.
func topKeywords(lower string, n int) []string {
	freq := make(map[string]int)
	for _, w := range wordRe.FindAllString(lower, -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		freq[w]++
	}
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToUpper(w[:1])+w[1:])
	}
	return out
}
