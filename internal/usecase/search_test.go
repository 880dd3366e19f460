package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/internal/usecase"
)

func view(id, title, summary, problem, solution string, tags ...string) usecase.LessonView {
	return usecase.LessonView{
		ID: id,
		Document: domain.LessonDocument{
			Title:           title,
			QuickSummary:    summary,
			DetailedSummary: domain.DetailedSummary{Problem: problem, Solution: solution},
			Tags:            tags,
		},
	}
}

func TestRank_Weights(t *testing.T) {
	t.Parallel()

	t.Run("title match scores 20", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("invoice", []usecase.LessonView{
			view("a", "Invoice Automation", "", "", ""),
		})
		require.Len(t, got, 1)
		assert.Equal(t, 20, got[0].Score)
	})

	t.Run("each matching tag scores 15", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("automation", []usecase.LessonView{
			view("a", "", "", "", "", "Automation", "Email Automation"),
		})
		require.Len(t, got, 1)
		assert.Equal(t, 30, got[0].Score)
	})

	t.Run("tag matching is bidirectional", func(t *testing.T) {
		t.Parallel()
		// Query contains the tag, not the other way round.
		got := usecase.Rank("claude api integration tips", []usecase.LessonView{
			view("a", "", "", "", "", "Claude API"),
		})
		require.Len(t, got, 1)
		assert.Equal(t, 15, got[0].Score)
	})

	t.Run("summary problem solution weights", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("report", []usecase.LessonView{
			view("a", "", "weekly report generation", "", ""),
			view("b", "", "", "manual report assembly was slow", ""),
			view("c", "", "", "", "automated the report pipeline"),
		})
		require.Len(t, got, 3)
		byID := map[string]int{}
		for _, g := range got {
			byID[g.ID] = g.Score
		}
		assert.Equal(t, 10, byID["a"])
		assert.Equal(t, 12, byID["b"])
		assert.Equal(t, 12, byID["c"])
	})

	t.Run("fields accumulate", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("automation", []usecase.LessonView{
			view("a", "Invoice Automation", "automation saved hours", "automation gap", "automation rollout", "Automation"),
		})
		require.Len(t, got, 1)
		assert.Equal(t, 20+15+10+12+12, got[0].Score)
	})
}

func TestRank_FilterAndOrder(t *testing.T) {
	t.Parallel()

	t.Run("zero score excluded", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("kubernetes", []usecase.LessonView{
			view("a", "Invoice Automation", "summary", "problem", "solution", "Automation"),
		})
		assert.Empty(t, got)
	})

	t.Run("sorted by score descending, stable on ties", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("report", []usecase.LessonView{
			view("low", "", "report summary", "", ""),
			view("high", "Report Builder", "report summary", "", ""),
			view("tie1", "", "", "report problem", ""),
			view("tie2", "", "", "report problem", ""),
		})
		require.Len(t, got, 4)
		assert.Equal(t, "high", got[0].ID)
		assert.Equal(t, []string{"tie1", "tie2"}, []string{got[2].ID, got[3].ID})
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("   ", []usecase.LessonView{
			view("a", "Anything", "", "", ""),
		})
		assert.Empty(t, got)
	})

	t.Run("case insensitive", func(t *testing.T) {
		t.Parallel()
		got := usecase.Rank("INVOICE", []usecase.LessonView{
			view("a", "invoice automation", "", "", ""),
		})
		require.Len(t, got, 1)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		views := []usecase.LessonView{
			view("a", "Report One", "", "", ""),
			view("b", "Report Two", "report", "", ""),
		}
		first := usecase.Rank("report", views)
		second := usecase.Rank("report", views)
		assert.Equal(t, first, second)
	})
}

func TestSearchService(t *testing.T) {
	t.Parallel()
	repo := &repoStub{}
	store := usecase.NewStoreService(repo)
	_, _, err := store.Store(context.Background(),
		domain.BuildDocument(sampleLesson("Invoice Automation"), []string{"Automation"}),
		usecase.Provenance{})
	require.NoError(t, err)

	svc := usecase.NewSearchService(repo)
	got, err := svc.Search(context.Background(), "invoice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Invoice Automation", got[0].Document.Title)
	assert.Positive(t, got[0].Score)

	none, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, none)
}
