package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openAIBaseURL = "https://api.openai.com/v1/"

// OpenAIProvider talks to OpenAI and any endpoint that speaks the same
// chat completions API (Groq, OpenRouter, Ollama, self-hosted servers).
type OpenAIProvider struct {
	name   string
	model  string
	client openai.Client
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newOpenAICompatible("openai", openAIBaseURL, apiKey, model)
}

func newOpenAICompatible(name, baseURL, apiKey, model string) *OpenAIProvider {
	options := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		options = append(options, option.WithAPIKey(apiKey))
	}

	return &OpenAIProvider{
		name:   name,
		model:  model,
		client: openai.NewClient(options...),
	}
}

func (o *OpenAIProvider) Name() string {
	return o.name
}

func (o *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := o.client.Models.List(ctx); err != nil {
		return fmt.Errorf("cannot connect to %s: %w", o.name, err)
	}
	return nil
}

func (o *OpenAIProvider) params(req *CompletionRequest) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = o.model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}

func (o *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	resp, err := o.client.Chat.Completions.New(ctx, o.params(req))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", o.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", o.name)
	}

	return &CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		FinishReason: resp.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (o *OpenAIProvider) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(req))
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("%s request failed: %w", o.name, err)
	}

	events := make(chan StreamEvent)

	go func() {
		defer close(events)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !send(ctx, events, StreamEvent{Chunk: text}) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, events, StreamEvent{Error: fmt.Errorf("%s stream failed: %w", o.name, err)})
			return
		}

		send(ctx, events, StreamEvent{Done: true})
	}()

	return events, nil
}
