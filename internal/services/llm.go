// Package services holds the text-generation providers that back the
// encounter generator.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/verdant-hollow/internal/config"
	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/encounter"
)

// Sampling shared by every provider. Encounters are short, so a small
// token budget keeps replies to a scene and its choices.
const (
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 300

	defaultTimeout = 60 * time.Second
)

// LLMService is a text-generation provider.
type LLMService interface {
	// Chat sends one conversation and returns the model's reply.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Name identifies the provider and model for health reports.
	Name() string

	Close() error
}

var (
	_ encounter.LLM = (LLMService)(nil)
	_ LLMService    = (*OpenAIService)(nil)
	_ LLMService    = (*AnthropicService)(nil)
	_ LLMService    = (*GeminiService)(nil)
	_ LLMService    = (*MockLLMAPI)(nil)
)

// NewFromConfig builds the configured provider. It returns nil, nil when
// no provider is enabled so callers run on local encounters alone.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	if !cfg.LLMEnabled() {
		if cfg.LLMProvider != config.ProviderNone {
			logger.Warn("No API key for LLM provider, using local encounters", "provider", cfg.LLMProvider)
		}
		return nil, nil
	}

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, logger), nil
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, logger), nil
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
