package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	model  string
	client anthropic.Client
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	options := []option.RequestOption{
		option.WithBaseURL("https://api.anthropic.com/"),
		option.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		options = append(options, option.WithAPIKey(apiKey))
	}

	return &AnthropicProvider{
		model:  model,
		client: anthropic.NewClient(options...),
	}
}

func (a *AnthropicProvider) Name() string {
	return "anthropic"
}

func (a *AnthropicProvider) Ping(ctx context.Context) error {
	if _, err := a.client.Models.Get(ctx, a.model, anthropic.ModelGetParams{}); err != nil {
		return fmt.Errorf("cannot connect to Anthropic API: %w", err)
	}
	return nil
}

func (a *AnthropicProvider) params(req *CompletionRequest) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = a.model
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	system, rest := splitMessages(req.Messages)

	var messages []anthropic.MessageParam
	for _, m := range rest {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

func (a *AnthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	msg, err := a.client.Messages.New(ctx, a.params(req))
	if err != nil {
		return nil, fmt.Errorf("Anthropic request failed: %w", err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:      content.String(),
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

func (a *AnthropicProvider) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	stream := a.client.Messages.NewStreaming(ctx, a.params(req))
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("Anthropic request failed: %w", err)
	}

	events := make(chan StreamEvent)

	go func() {
		defer close(events)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()

			switch event := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := event.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
					if !send(ctx, events, StreamEvent{Chunk: delta.Text}) {
						return
					}
				}
			case anthropic.MessageStopEvent:
				send(ctx, events, StreamEvent{Done: true})
				return
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, events, StreamEvent{Error: fmt.Errorf("Anthropic stream failed: %w", err)})
			return
		}

		send(ctx, events, StreamEvent{Done: true})
	}()

	return events, nil
}
