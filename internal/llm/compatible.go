package llm

import "strings"

// OpenAI-compatible endpoints. Each is an OpenAIProvider with its own base URL.

func NewGroqProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return newOpenAICompatible("groq", "https://api.groq.com/openai/v1", apiKey, model)
}

func NewOpenRouterProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "meta-llama/llama-3.1-70b-instruct"
	}
	return newOpenAICompatible("openrouter", "https://openrouter.ai/api/v1", apiKey, model)
}

// NewOllamaProvider uses Ollama's OpenAI-compatible /v1 API
func NewOllamaProvider(host, model string) *OpenAIProvider {
	if host == "" {
		host = "http://localhost:11434"
	}
	host = strings.TrimRight(host, "/")
	if !strings.HasSuffix(host, "/v1") {
		host += "/v1"
	}
	// Ollama ignores the key but the client always sends one.
	return newOpenAICompatible("ollama", host, "ollama", model)
}

func NewCustomProvider(baseURL, apiKey, model string) *OpenAIProvider {
	return newOpenAICompatible("custom", baseURL, apiKey, model)
}
