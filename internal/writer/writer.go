package writer

import (
	"context"

	"github.com/sant0-9/reportgenie/internal/llm"
	"github.com/sant0-9/reportgenie/internal/prompts"
)

// Writer sends instructions to the model and returns its raw output
type Writer struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
	stream      bool
}

// Option configures a Writer
type Option func(*Writer)

func WithMaxTokens(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.maxTokens = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(w *Writer) {
		w.temperature = t
	}
}

// WithStreaming makes Write use the streaming API
func WithStreaming(stream bool) Option {
	return func(w *Writer) {
		w.stream = stream
	}
}

// NewWriter creates a new writer
func NewWriter(provider llm.Provider, model string, options ...Option) *Writer {
	w := &Writer{
		provider:    provider,
		model:       model,
		maxTokens:   llm.DefaultMaxTokens,
		temperature: llm.DefaultTemperature,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Provider returns the underlying provider
func (w *Writer) Provider() llm.Provider {
	return w.provider
}

// Model returns the model name sent with each request
func (w *Writer) Model() string {
	return w.model
}

// Streaming reports whether Write streams
func (w *Writer) Streaming() bool {
	return w.stream
}

// Write returns the model's complete output for ins. When streaming, onChunk
// sees every fragment in order and the result is their concatenation.
func (w *Writer) Write(ctx context.Context, ins prompts.Instruction, onChunk func(string)) (string, error) {
	req := w.request(ins)

	if !w.stream {
		resp, err := w.provider.Complete(ctx, req)
		if err != nil {
			return "", err
		}
		if onChunk != nil && resp.Content != "" {
			onChunk(resp.Content)
		}
		return resp.Content, nil
	}

	events, err := w.provider.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	return llm.Collect(ctx, events, onChunk)
}

// Stream starts a streaming generation for ins
func (w *Writer) Stream(ctx context.Context, ins prompts.Instruction) (<-chan llm.StreamEvent, error) {
	return w.provider.Stream(ctx, w.request(ins))
}

// The instruction is sent as a single user turn so the verbatim input stays the
// last thing the model reads.
func (w *Writer) request(ins prompts.Instruction) *llm.CompletionRequest {
	return &llm.CompletionRequest{
		Model: w.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: ins.String()},
		},
		MaxTokens:   w.maxTokens,
		Temperature: w.temperature,
	}
}
