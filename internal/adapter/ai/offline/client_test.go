package offline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplifai/lesson-service/internal/adapter/ai/offline"
	"github.com/amplifai/lesson-service/internal/domain"
)

const narrative = "We used Claude API to automate document review, cutting 4 hours to 15 minutes"

func TestGenerateLesson_DocumentScenario(t *testing.T) {
	t.Parallel()
	c := offline.New()
	sl, tags, err := c.GenerateLesson(context.Background(), narrative)
	require.NoError(t, err)

	hasDocOrAutomat := strings.Contains(sl.Title, "Document") || strings.Contains(sl.Title, "Automat")
	assert.True(t, hasDocOrAutomat, "title %q should mention Document or Automat", sl.Title)
	assert.Contains(t, tags, "Automation")
	assert.Contains(t, tags, "Document Processing")
	assert.Contains(t, tags, "Claude API")
	assert.Equal(t, domain.DifficultyIntermediate, sl.Difficulty)
}

func TestGenerateLesson_RequiredFieldsAlwaysPresent(t *testing.T) {
	t.Parallel()
	c := offline.New()
	for _, input := range []string{"", "x", narrative, strings.Repeat("workflow ", 1000)} {
		sl, tags, err := c.GenerateLesson(context.Background(), input)
		require.NoError(t, err)
		assert.NotEmpty(t, sl.Title)
		assert.NotEmpty(t, sl.QuickSummary)
		assert.NotEmpty(t, sl.Problem)
		assert.NotEmpty(t, sl.Solution)
		assert.NotEmpty(t, sl.Impact)
		assert.NotEmpty(t, tags)
	}
}

func TestGenerateLesson_Deterministic(t *testing.T) {
	t.Parallel()
	c := offline.New()
	sl1, tags1, err := c.GenerateLesson(context.Background(), narrative)
	require.NoError(t, err)
	sl2, tags2, err := c.GenerateLesson(context.Background(), narrative)
	require.NoError(t, err)
	assert.Equal(t, sl1, sl2)
	assert.Equal(t, tags1, tags2)
}

func TestGenerateLesson_BeginnerWithoutAPIMarker(t *testing.T) {
	t.Parallel()
	c := offline.New()
	sl, _, err := c.GenerateLesson(context.Background(), "we improved a spreadsheet process by hand")
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyBeginner, sl.Difficulty)
	assert.Equal(t, "2-3 hours", sl.TimeToImplement)
}
