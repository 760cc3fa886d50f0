// Package dispatch contains the concrete analysis collaborator that the
// admission controller's queue drain hands requests to.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/steveyegge/mentor/internal/types"
)

const (
	// ModelDefault is the model used for mentor analysis
	ModelDefault = "claude-sonnet-4-5-20250929"

	// defaultTimeout bounds a single analysis call
	defaultTimeout = 60 * time.Second
)

// GetModel returns the analysis model, checking MENTOR_MODEL env var first
func GetModel() string {
	if model := os.Getenv("MENTOR_MODEL"); model != "" {
		return model
	}
	return ModelDefault
}

// AnthropicDispatcher sends drained analysis requests to the Anthropic
// Messages API and returns the mentor feedback text.
type AnthropicDispatcher struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// Config holds dispatcher configuration
type Config struct {
	APIKey  string        // Anthropic API key (if empty, reads ANTHROPIC_API_KEY)
	Model   string        // Model to use (default: ModelDefault)
	Timeout time.Duration // Per-call timeout (default: 60s)
}

// NewAnthropicDispatcher creates a dispatcher backed by the Anthropic API
func NewAnthropicDispatcher(cfg Config) (*AnthropicDispatcher, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetModel()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicDispatcher{
		client:  &client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Analyze sends the change to the model and returns its feedback.
func (d *AnthropicDispatcher) Analyze(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	prompt := buildPrompt(req)

	resp, err := d.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(d.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return &types.AnalysisResult{
		Summary:      text,
		Model:        d.model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

// buildPrompt produces a minimal mentor prompt for the change. Heavier
// prompt construction belongs to the editor integration, not this core.
func buildPrompt(req *types.AnalysisRequest) string {
	return fmt.Sprintf(`You are a code mentor reviewing a developer's in-progress edit.

File: %s
Language: %s
Change kind: %s (%d lines)
Priority: %s

Current content:
%s

Give one short, actionable piece of feedback on the most important issue in this change. If nothing is wrong, say so in one sentence.`,
		req.Change.FilePath,
		req.Change.Language,
		req.Change.Kind,
		req.Change.LinesChanged,
		req.Priority,
		req.Change.Content)
}
