package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplifai/lesson-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(50), cfg.MaxFileMB)
	assert.Equal(t, int64(200), cfg.MaxTotalUploadMB)
	assert.Equal(t, 50000, cfg.MaxContentChars)
	assert.True(t, cfg.IsDev())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_FILE_MB", "25")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, int64(25), cfg.MaxFileMB)
}

func TestAnthropicConfigured(t *testing.T) {
	cfg := config.Config{AnthropicAPIKey: "sk-ant-abc123"}
	assert.True(t, cfg.AnthropicConfigured())
	cfg.AnthropicAPIKey = "your_anthropic_api_key_here"
	assert.False(t, cfg.AnthropicConfigured())
	cfg.AnthropicAPIKey = ""
	assert.False(t, cfg.AnthropicConfigured())
}

func TestMaxFileBytes_TextVsBinary(t *testing.T) {
	cfg := config.Config{MaxFileMB: 50, MaxTextFileMB: 10}
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileBytes("text/plain"))
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileBytes("text/markdown"))
	assert.Equal(t, int64(50*1024*1024), cfg.MaxFileBytes("application/pdf"))
}

func TestGetAIBackoffConfig_TestEnvShortens(t *testing.T) {
	cfg := config.Config{AppEnv: "test", AIBackoffMaxElapsedTime: 90 * time.Second}
	maxElapsed, _, _, _ := cfg.GetAIBackoffConfig()
	assert.Less(t, maxElapsed, 10*time.Second)
}
