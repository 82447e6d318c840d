package pipeline

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Stats summarizes an input for display before generation
type Stats struct {
	Words      int
	Tokens     int
	Sections   int
	Paragraphs int
	Estimate   time.Duration
}

// Analyze counts the words, paragraphs and header-like lines of text
func Analyze(text string) Stats {
	st := Stats{
		Words:  len(strings.Fields(text)),
		Tokens: EstimateTokens(text),
	}

	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		st.Paragraphs++

		first, _, _ := strings.Cut(block, "\n")
		if isHeaderLine(first) {
			st.Sections++
		}
	}

	st.Estimate = EstimateDuration(text)
	return st
}

// isHeaderLine matches markdown headers and short lines ending in a colon or
// written in capitals
func isHeaderLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	if utf8.RuneCountInString(line) > 60 {
		return false
	}
	if strings.HasSuffix(line, ":") {
		return true
	}
	return strings.ToUpper(line) == line && strings.ToLower(line) != line
}

// EstimateTokens estimates token count (rough: 4 chars per token)
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

const (
	baseLatency     = 2 * time.Second
	tokensPerSecond = 60
)

// EstimateDuration guesses how long generation takes for text. Output is
// assumed to be about one and a half times the input once markup is added.
func EstimateDuration(text string) time.Duration {
	out := float64(EstimateTokens(text)) * 1.5
	d := baseLatency + time.Duration(out/tokensPerSecond*float64(time.Second))
	return d.Round(time.Second)
}

// ContextLimit returns the context window size for a model
func ContextLimit(model string) int {
	model = strings.ToLower(model)

	switch {
	case strings.Contains(model, "gemini"):
		return 1000000
	case strings.Contains(model, "claude"):
		return 200000
	case strings.Contains(model, "gpt-4o"), strings.Contains(model, "gpt-4.1"),
		strings.Contains(model, "gpt-4-turbo"), strings.Contains(model, "gpt-5"):
		return 128000
	case strings.Contains(model, "gpt-4"):
		return 8000
	case strings.Contains(model, "llama-3"), strings.Contains(model, "llama3"):
		return 128000
	case strings.Contains(model, "mixtral"):
		return 32000
	default:
		return 8000
	}
}
