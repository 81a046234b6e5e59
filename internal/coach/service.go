package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds coach service settings.
type Config struct {
	Model             string
	MaxStruggleLength int
	GenerationTimeout time.Duration
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.MaxStruggleLength <= 0 {
		return errors.New("max struggle length must be > 0")
	}
	if c.GenerationTimeout < 0 {
		return errors.New("generation timeout cannot be negative")
	}
	return nil
}

// Service validates submissions and asks the generator for a battle plan.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	gen       Generator
	sanitizer *Sanitizer
	model     string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService creates a new coach service.
func NewService(gen Generator, cfg Config, logger *slog.Logger) (*Service, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		gen:       gen,
		sanitizer: NewSanitizer(cfg.MaxStruggleLength),
		model:     cfg.Model,
		timeout:   cfg.GenerationTimeout,
		logger:    logger,
	}, nil
}

// MaxStruggleLength returns the accepted struggle length in runes.
func (s *Service) MaxStruggleLength() int {
	return s.sanitizer.MaxLength()
}

// SubmitStruggle validates the request and, when it is acceptable, returns
// the generated battle plan. Every failure is reported through the Result.
func (s *Service) SubmitStruggle(ctx context.Context, req StrategyRequest) Result {
	struggle, msg, err := s.sanitizer.Check(req.Struggle)
	if err != nil {
		s.logger.DebugContext(ctx, "struggle rejected", "reason", msg)
		return validationResult(msg, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, s.model, BuildPrompt(struggle))
	if err != nil {
		s.logger.WarnContext(ctx, "battle plan generation failed",
			"model", s.model,
			"duration", time.Since(start),
			"error", err,
		)
		return generationResult(err)
	}

	if strings.TrimSpace(text) == "" {
		s.logger.WarnContext(ctx, "battle plan generation returned no text", "model", s.model)
		return generationResult(ErrEmptyResponse)
	}

	s.logger.InfoContext(ctx, "battle plan generated",
		"model", s.model,
		"duration", time.Since(start),
		"plan_chars", len(text),
	)
	return planResult(text)
}
