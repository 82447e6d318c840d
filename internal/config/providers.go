package config

type ProviderInfo struct {
	ID           string
	Name         string
	Description  string
	NeedsAPIKey  bool
	EnvVars      []string
	SignupURL    string
	Models       []string
	DefaultModel string
}

var Providers = []ProviderInfo{
	{
		ID:           "gemini",
		Name:         "Google Gemini",
		Description:  "Fast, generous free tier",
		NeedsAPIKey:  true,
		EnvVars:      []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		SignupURL:    "https://aistudio.google.com/app/apikey",
		Models:       []string{"gemini-1.5-flash", "gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
		DefaultModel: "gemini-1.5-flash",
	},
	{
		ID:           "openai",
		Name:         "OpenAI",
		Description:  "GPT-4o, most capable",
		NeedsAPIKey:  true,
		EnvVars:      []string{"OPENAI_API_KEY"},
		SignupURL:    "https://platform.openai.com/api-keys",
		Models:       []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1-mini"},
		DefaultModel: "gpt-4o-mini",
	},
	{
		ID:           "anthropic",
		Name:         "Anthropic",
		Description:  "Claude, great writing",
		NeedsAPIKey:  true,
		EnvVars:      []string{"ANTHROPIC_API_KEY"},
		SignupURL:    "https://console.anthropic.com/",
		Models:       []string{"claude-3-5-haiku-latest", "claude-3-5-sonnet-latest"},
		DefaultModel: "claude-3-5-haiku-latest",
	},
	{
		ID:           "groq",
		Name:         "Groq",
		Description:  "Very fast, cheap",
		NeedsAPIKey:  true,
		EnvVars:      []string{"GROQ_API_KEY"},
		SignupURL:    "https://console.groq.com/keys",
		Models:       []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
		DefaultModel: "llama-3.3-70b-versatile",
	},
	{
		ID:           "openrouter",
		Name:         "OpenRouter",
		Description:  "Access all models",
		NeedsAPIKey:  true,
		EnvVars:      []string{"OPENROUTER_API_KEY"},
		SignupURL:    "https://openrouter.ai/keys",
		Models:       []string{"google/gemini-flash-1.5", "openai/gpt-4o", "meta-llama/llama-3.1-70b-instruct"},
		DefaultModel: "meta-llama/llama-3.1-70b-instruct",
	},
	{
		ID:           "ollama",
		Name:         "Ollama",
		Description:  "Local, free, private",
		NeedsAPIKey:  false,
		Models:       []string{"llama3.1:8b", "qwen2.5:7b", "mistral:7b"},
		DefaultModel: "llama3.1:8b",
	},
	{
		ID:           "custom",
		Name:         "Custom",
		Description:  "Any OpenAI-compatible endpoint",
		NeedsAPIKey:  false,
		EnvVars:      []string{"OPENAI_API_KEY"},
		DefaultModel: "",
	},
	{
		ID:           "offline",
		Name:         "Offline",
		Description:  "No model, local Markdown formatting",
		NeedsAPIKey:  false,
		DefaultModel: "offline",
	},
}

func GetProvider(id string) *ProviderInfo {
	for _, p := range Providers {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
