// Package anthropic implements the secondary generation backend against the
// Anthropic messages API, activated only when a validly-formatted API key is
// configured.
package anthropic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amplifai/lesson-service/internal/adapter/ai"
	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/domain"
)

// Client calls the Anthropic /messages endpoint.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs an Anthropic client.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Name identifies this backend in fallback transition logs.
func (c *Client) Name() string { return "anthropic" }

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// GenerateLesson fails fast with ErrCredentialMissing when no valid key is
// configured so the orchestrator moves on without a network round trip.
func (c *Client) GenerateLesson(ctx domain.Context, rawText string) (domain.StructuredLesson, []string, error) {
	if !c.cfg.AnthropicConfigured() {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: ANTHROPIC_API_KEY absent or malformed", domain.ErrCredentialMissing)
	}

	userPrompt := ai.LessonInstruction + "\n\nContent to analyze:\n\n" + rawText
	body, _ := json.Marshal(map[string]any{
		"model":      c.cfg.AnthropicModel,
		"max_tokens": ai.MaxCompletionTokens,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
	})

	var out messagesResponse
	op := func() error {
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AnthropicBaseURL+"/messages", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("x-api-key", c.cfg.AnthropicAPIKey)
		req.Header.Set("anthropic-version", c.cfg.AnthropicVersion)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(req)
		observability.AIRequestsTotal.WithLabelValues("anthropic", "messages").Inc()
		observability.AIRequestDuration.WithLabelValues("anthropic", "messages").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("anthropic rate limited", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			slog.Warn("anthropic 4xx", slog.Int("status", resp.StatusCode))
			return backoff.Permanent(fmt.Errorf("messages status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Error("anthropic non-2xx", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("messages status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(respBody, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode messages response: %w", err))
		}
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime, expo.InitialInterval, expo.MaxInterval, expo.Multiplier = c.cfg.GetAIBackoffConfig()
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: anthropic: %v", domain.ErrGeneration, err)
	}

	var text string
	for _, block := range out.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: anthropic returned no text content", domain.ErrGeneration)
	}
	return ai.ParseLessonResponse(text)
}
