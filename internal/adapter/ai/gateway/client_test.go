package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplifai/lesson-service/internal/adapter/ai/gateway"
	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/domain"
)

const lessonJSON = `{"title":"Automated Review Pipeline Built With Managed AI Gateway","quickSummary":"sum","problem":"p","solution":"s","impact":"i","tags":["Automation"],"difficulty":"Advanced","timeToImplement":"1-2 days"}`

func testCfg(baseURL string) config.Config {
	return config.Config{
		AppEnv:        "test",
		GatewayAPIKey: "key",
		GatewayBaseURL: baseURL,
		GatewayModel:  "claude-3-haiku",
	}
}

func chatBody(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return b
}

func TestGenerateLesson_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatBody("```json\n" + lessonJSON + "\n```"))
	}))
	defer srv.Close()

	c := gateway.New(testCfg(srv.URL))
	sl, tags, err := c.GenerateLesson(context.Background(), "narrative")
	require.NoError(t, err)
	assert.Equal(t, "Automated Review Pipeline Built With Managed AI Gateway", sl.Title)
	assert.Equal(t, domain.DifficultyAdvanced, sl.Difficulty)
	assert.Equal(t, []string{"Automation"}, tags)
}

func TestGenerateLesson_MissingKeyFailsFast(t *testing.T) {
	t.Parallel()
	cfg := testCfg("http://unreachable.invalid")
	cfg.GatewayAPIKey = ""
	c := gateway.New(cfg)
	_, _, err := c.GenerateLesson(context.Background(), "narrative")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCredentialMissing))
}

func TestGenerateLesson_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := gateway.New(testCfg(srv.URL))
	_, _, err := c.GenerateLesson(context.Background(), "narrative")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeneration))
	assert.Equal(t, 1, calls)
}

func TestGenerateLesson_ServerErrorRetried(t *testing.T) {
	t.Parallel()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(chatBody(lessonJSON))
	}))
	defer srv.Close()

	c := gateway.New(testCfg(srv.URL))
	sl, _, err := c.GenerateLesson(context.Background(), "narrative")
	require.NoError(t, err)
	assert.NotEmpty(t, sl.Title)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestGenerateLesson_UnparseableContent(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(chatBody("sorry, I cannot produce that"))
	}))
	defer srv.Close()

	c := gateway.New(testCfg(srv.URL))
	_, _, err := c.GenerateLesson(context.Background(), "narrative")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeneration))
}
