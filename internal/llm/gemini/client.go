// Package gemini implements coach.Generator on top of the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/ashureev/battleplan/internal/coach"
)

// Config holds configuration for the Gemini generator.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("gemini API key is required")
	}
	return nil
}

// Generator implements coach.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
}

var _ coach.Generator = (*Generator)(nil)

// NewGenerator creates a new Gemini generator.
func NewGenerator(ctx context.Context, config Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{client: client}, nil
}

// Generate sends prompt to model and returns the response text. The reply is
// treated as opaque text; an empty reply yields coach.ErrEmptyResponse.
func (g *Generator) Generate(ctx context.Context, model, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		slog.DebugContext(ctx, "gemini API call failed", "model", model, "error", err)
		return "", err
	}

	text := result.Text()
	if text == "" {
		if len(result.Candidates) > 0 && result.Candidates[0].FinishReason != "" {
			return "", fmt.Errorf("%w (finish reason %s)", coach.ErrEmptyResponse, result.Candidates[0].FinishReason)
		}
		return "", coach.ErrEmptyResponse
	}
	return text, nil
}
