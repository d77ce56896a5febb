package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// defaultModels are used when the configured model names belong to another provider
var defaultModels = map[string]ModelSet{
	"gemini":    {Standard: "gemini-2.5-flash", Deep: "gemini-2.5-pro"},
	"openai":    {Standard: "gpt-4o-mini", Deep: "gpt-4o"},
	"anthropic": {Standard: "claude-sonnet-4-5", Deep: "claude-opus-4-1"},
}

// NewProvider creates a generation provider based on configuration.
// The returned client is owned by the caller and passed into an Invoker.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch normalizeProvider(config.Provider) {
	case "gemini":
		return NewGeminiProvider(ctx, config)

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic":
		return NewAnthropicProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai, anthropic)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  normalizeProvider(cfg.Provider),
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	}
}

// ModelsFromConfig returns the model variants for the configured provider,
// replacing names that obviously belong to a different provider
func ModelsFromConfig(cfg model.LLMConfig) ModelSet {
	provider := normalizeProvider(cfg.Provider)
	defaults := defaultModels[provider]

	set := ModelSet{Standard: cfg.StandardModel, Deep: cfg.DeepModel}
	if set.Standard == "" || !belongsTo(provider, set.Standard) {
		set.Standard = defaults.Standard
	}
	if set.Deep == "" || !belongsTo(provider, set.Deep) {
		set.Deep = defaults.Deep
	}
	return set
}

func normalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "", "google":
		return "gemini"
	case "claude":
		return "anthropic"
	default:
		return p
	}
}

// belongsTo reports false only for names carrying another provider's prefix,
// so custom or fine-tuned model names pass through
func belongsTo(provider, modelName string) bool {
	prefixes := map[string][]string{
		"gemini":    {"gemini-"},
		"openai":    {"gpt-", "o1", "o3", "o4"},
		"anthropic": {"claude-"},
	}

	for p, list := range prefixes {
		for _, prefix := range list {
			if strings.HasPrefix(modelName, prefix) {
				return p == provider
			}
		}
	}
	return true
}
