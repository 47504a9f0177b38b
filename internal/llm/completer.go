// Package llm provides the text-generation capability used for quotation
// extraction and RFP composition. Backends are selected by configuration;
// callers only see the Completer interface.
package llm

import (
	"context"
	"fmt"
	"strings"

	"rfpdesk/internal/config"
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewCompleter builds the backend named by cfg.LLMProvider.
func NewCompleter(ctx context.Context, cfg config.Config) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "gemini":
		return NewGeminiCompleter(ctx, cfg)
	case "mistral":
		return NewMistralCompleter(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}
