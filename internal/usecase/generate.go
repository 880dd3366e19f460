package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amplifai/lesson-service/internal/adapter/observability"
	"github.com/amplifai/lesson-service/internal/domain"
)

// fallbackState models the generation chain as an explicit machine. Each
// backend is attempted at most once, in order; the offline backend is the
// terminal state and never fails.
type fallbackState int

const (
	stateTryPrimary fallbackState = iota
	stateTrySecondary
	stateUseOffline
)

func (s fallbackState) String() string {
	switch s {
	case stateTryPrimary:
		return "primary"
	case stateTrySecondary:
		return "secondary"
	default:
		return "offline"
	}
}

// GenerateService runs the structured lesson generation fallback chain.
// Backends are injected in priority order by the composition root.
type GenerateService struct {
	Primary   domain.GenerationBackend
	Secondary domain.GenerationBackend
	Offline   domain.GenerationBackend
}

// NewGenerateService wires the generation chain.
func NewGenerateService(primary, secondary, offline domain.GenerationBackend) GenerateService {
	return GenerateService{Primary: primary, Secondary: secondary, Offline: offline}
}

// GenerateResult carries the structured lesson, suggested tags and the name of
// the backend that produced them.
type GenerateResult struct {
	Lesson  domain.StructuredLesson
	Tags    []string
	Backend string
}

// Generate walks the chain until a backend succeeds. Transitions are logged
// and counted; callers never see partial results from a failed backend.
func (s GenerateService) Generate(ctx domain.Context, rawText string) (GenerateResult, error) {
	var errs []error
	for state := stateTryPrimary; ; state++ {
		backend := s.backendFor(state)
		if backend == nil {
			if state == stateUseOffline {
				break
			}
			continue
		}
		sl, tags, err := backend.GenerateLesson(ctx, rawText)
		if err == nil {
			slog.Info("lesson generated", slog.String("backend", backend.Name()))
			return GenerateResult{Lesson: sl, Tags: tags, Backend: backend.Name()}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		if state == stateUseOffline {
			break
		}
		reason := failureClass(err)
		slog.Warn("generation backend failed, falling back",
			slog.String("backend", backend.Name()),
			slog.String("reason", reason),
			slog.Any("error", err))
		observability.FallbackTransitionsTotal.WithLabelValues(backend.Name(), reason).Inc()
	}
	return GenerateResult{}, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, errors.Join(errs...))
}

func (s GenerateService) backendFor(state fallbackState) domain.GenerationBackend {
	switch state {
	case stateTryPrimary:
		return s.Primary
	case stateTrySecondary:
		return s.Secondary
	default:
		return s.Offline
	}
}

func failureClass(err error) string {
	switch {
	case errors.Is(err, domain.ErrCredentialMissing):
		return "credential_missing"
	case errors.Is(err, domain.ErrGeneration):
		return "generation_error"
	default:
		return "transport"
	}
}
