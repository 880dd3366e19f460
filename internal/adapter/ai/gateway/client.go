// Package gateway implements the primary generation backend against the
// managed, OpenAI-compatible chat-completions gateway.
package gateway

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
	"github.com/amplifai/lesson-service/internal/adapter/ai/tokencount"
	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/domain"
)

// Client calls the managed gateway's /chat/completions endpoint.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a gateway client with an OTEL-instrumented transport.
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
func (c *Client) Name() string { return "gateway" }

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateLesson sends the fixed instruction template plus the truncated
// narrative and parses the reply into the lesson shape.
func (c *Client) GenerateLesson(ctx domain.Context, rawText string) (domain.StructuredLesson, []string, error) {
	if c.cfg.GatewayAPIKey == "" {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: GATEWAY_API_KEY not set", domain.ErrCredentialMissing)
	}

	userPrompt := ai.LessonInstruction + "\n\nContent to analyze:\n\n" + rawText
	body, _ := json.Marshal(map[string]any{
		"model":       c.cfg.GatewayModel,
		"temperature": 0.2,
		"max_tokens":  ai.MaxCompletionTokens,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
	})

	slog.Debug("calling generation gateway",
		slog.String("model", c.cfg.GatewayModel),
		slog.Int("prompt_tokens", tokencount.EstimatePromptTokens(userPrompt, c.cfg.GatewayModel)))

	var out chatResponse
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayBaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.GatewayAPIKey)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(req)
		observability.AIRequestsTotal.WithLabelValues("gateway", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("gateway", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("gateway rate limited", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			slog.Warn("gateway 4xx",
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet(respBody, 512)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Error("gateway non-2xx",
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet(respBody, 512)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(respBody, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode chat response: %w", err))
		}
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime, expo.InitialInterval, expo.MaxInterval, expo.Multiplier = c.cfg.GetAIBackoffConfig()
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: gateway: %v", domain.ErrGeneration, err)
	}
	if len(out.Choices) == 0 {
		return domain.StructuredLesson{}, nil, fmt.Errorf("%w: gateway returned no choices", domain.ErrGeneration)
	}
	return ai.ParseLessonResponse(out.Choices[0].Message.Content)
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
