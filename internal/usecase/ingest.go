// Package usecase contains application business logic orchestration.
//
// Services here depend only on domain ports; adapters are injected by the
// composition root.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/pkg/textx"
)

// FileInput is one uploaded document before extraction.
type FileInput struct {
	Name      string
	MediaType string
	Size      int64
	Data      []byte
}

// IngestService turns raw uploads or pasted narrative into a single bounded
// text blob ready for generation.
type IngestService struct {
	Extractor domain.TextExtractor
	Cfg       config.Config
}

// NewIngestService wires the ingest service.
func NewIngestService(ex domain.TextExtractor, cfg config.Config) IngestService {
	return IngestService{Extractor: ex, Cfg: cfg}
}

// FromText validates pasted narrative text and bounds it.
func (s IngestService) FromText(_ domain.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: text", domain.ErrEmptyInput)
	}
	return textx.Truncate(textx.SanitizeText(trimmed), s.Cfg.MaxContentChars), nil
}

// FromFiles extracts text from each uploaded file and combines the results.
//
// Extraction is best-effort per file: a failing file contributes an error
// marker block instead of aborting the batch. Only when every file fails does
// the call return an error. Size ceilings are checked before any extraction
// work happens.
func (s IngestService) FromFiles(ctx domain.Context, files []FileInput) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no files", domain.ErrEmptyInput)
	}
	if len(files) > s.Cfg.MaxFilesPerUpload {
		return "", fmt.Errorf("%w: at most %d files per upload", domain.ErrInvalidArgument, s.Cfg.MaxFilesPerUpload)
	}

	var total int64
	for _, f := range files {
		limit := s.Cfg.MaxFileBytes(f.MediaType)
		if f.Size > limit {
			return "", fmt.Errorf("%w: %s exceeds %dMB limit", domain.ErrPayloadTooLarge, f.Name, limit/(1024*1024))
		}
		total += f.Size
	}
	if total > s.Cfg.MaxTotalBytes() {
		return "", fmt.Errorf("%w: combined upload exceeds %dMB limit", domain.ErrPayloadTooLarge, s.Cfg.MaxTotalUploadMB)
	}

	var (
		blocks      []string
		okCount     int
		unsupported int
		firstErr    error
	)
	for _, f := range files {
		text, err := s.Extractor.Extract(ctx, f.Name, f.MediaType, f.Data)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if errors.Is(err, domain.ErrUnsupportedType) {
				unsupported++
			}
			slog.Warn("file extraction failed", slog.String("file", f.Name), slog.String("media_type", f.MediaType), slog.Any("error", err))
			blocks = append(blocks, fmt.Sprintf("=== %s (error) ===\n[could not extract text from this file]", f.Name))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			slog.Warn("file produced no text", slog.String("file", f.Name))
			blocks = append(blocks, fmt.Sprintf("=== %s (error) ===\n[file contained no extractable text]", f.Name))
			continue
		}
		okCount++
		blocks = append(blocks, fmt.Sprintf("=== %s ===\n%s", f.Name, text))
	}

	if okCount == 0 {
		if unsupported == len(files) {
			return "", fmt.Errorf("%w: no supported files in upload", domain.ErrUnsupportedType)
		}
		if firstErr == nil {
			return "", fmt.Errorf("%w: no file contained extractable text", domain.ErrEmptyInput)
		}
		return "", fmt.Errorf("op=ingest.from_files: no file yielded text: %w", firstErr)
	}

	combined := strings.Join(blocks, "\n\n")
	return textx.Truncate(combined, s.Cfg.MaxContentChars), nil
}
