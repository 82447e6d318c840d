package llm

import (
	"fmt"

	"github.com/sant0-9/reportgenie/internal/config"
	"github.com/sant0-9/reportgenie/internal/errs"
)

// NewProvider creates a provider from config, wrapped with the configured rate
// limit and retry policy. Retries counts attempts after the first and each
// attempt waits for a rate-limit token.
func NewProvider(cfg *config.Config) (Provider, error) {
	p, err := newBaseProvider(cfg)
	if err != nil {
		return nil, err
	}

	return decorate(p, cfg), nil
}

// decorate applies the rate limit beneath the retry policy so every attempt
// waits for its own token. retries counts extra attempts after the first.
func decorate(p Provider, cfg *config.Config) Provider {
	p = NewLimited(PerMinute(cfg.RateLimit), p)
	return NewRetrying(p, cfg.Retries+1)
}

func newBaseProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, missingKey("gemini")
		}
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, missingKey("openai")
		}
		if cfg.BaseURL != "" {
			return newOpenAICompatible("openai", cfg.BaseURL, cfg.APIKey, cfg.Model), nil
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil

	case "anthropic":
		if cfg.APIKey == "" {
			return nil, missingKey("anthropic")
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil

	case "groq":
		if cfg.APIKey == "" {
			return nil, missingKey("groq")
		}
		return NewGroqProvider(cfg.APIKey, cfg.Model), nil

	case "openrouter":
		if cfg.APIKey == "" {
			return nil, missingKey("openrouter")
		}
		return NewOpenRouterProvider(cfg.APIKey, cfg.Model), nil

	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil

	case "custom":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires base_url")
		}
		return NewCustomProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil

	case "offline":
		return NewOfflineProvider(), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func missingKey(provider string) error {
	return errs.New(errs.KindMissingCredential, fmt.Sprintf("%s requires an API key", provider))
}
