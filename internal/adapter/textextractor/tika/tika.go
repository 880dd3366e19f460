// Package tika provides Apache Tika integration for text extraction.
//
// It extracts text content from PDF, Word, and PowerPoint documents via the
// Tika server's PUT /tika endpoint; plain text and markdown pass through
// locally with sanitation only.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/pkg/textx"
)

// Media types routed to the Tika server. Everything else either passes
// through (text/*) or is unsupported.
var tikaTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/vnd.ms-powerpoint": {},
}

// Supported reports whether the extractor can handle the media type.
func Supported(mediaType string) bool {
	if isPassthrough(mediaType) {
		return true
	}
	_, ok := tikaTypes[normalize(mediaType)]
	return ok
}

func isPassthrough(mediaType string) bool {
	mt := normalize(mediaType)
	return mt == "text/plain" || mt == "text/markdown"
}

func normalize(mediaType string) string {
	mt := strings.ToLower(mediaType)
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// It performs PUT /tika with Accept: text/plain to retrieve extracted text.
// See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Extract returns best-effort plain text for a single uploaded document.
func (c *Client) Extract(ctx context.Context, fileName, mediaType string, data []byte) (string, error) {
	mt := normalize(mediaType)
	if isPassthrough(mt) {
		observability.ExtractionsTotal.WithLabelValues(mt, "ok").Inc()
		return textx.SanitizeText(string(data)), nil
	}
	if _, ok := tikaTypes[mt]; !ok {
		observability.ExtractionsTotal.WithLabelValues(mt, "unsupported").Inc()
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, mt, fileName)
	}

	u := c.baseURL
	if u == "" {
		u = "http://localhost:9998"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", mt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.ExtractionsTotal.WithLabelValues(mt, "error").Inc()
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ExtractionsTotal.WithLabelValues(mt, "error").Inc()
		return "", fmt.Errorf("tika status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.ExtractionsTotal.WithLabelValues(mt, "error").Inc()
		return "", err
	}
	observability.ExtractionsTotal.WithLabelValues(mt, "ok").Inc()
	// Sanitize control characters and collapse all whitespace to single spaces
	fields := strings.Fields(textx.SanitizeText(string(b)))
	return strings.Join(fields, " "), nil
}
