package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider uses the Gemini API through the Google Gen AI SDK
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider(apiKey, model, baseURL string) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) newClient(ctx context.Context) (*genai.Client, error) {
	config := &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,

		HTTPClient: g.client,
	}
	if g.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	return genai.NewClient(ctx, config)
}

func (g *GeminiProvider) Ping(ctx context.Context) error {
	client, err := g.newClient(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("cannot connect to Gemini API: %w", err)
	}
	return nil
}

func (g *GeminiProvider) request(req *CompletionRequest) (string, []*genai.Content, *genai.GenerateContentConfig) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	system, rest := splitMessages(req.Messages)

	var contents []*genai.Content
	for _, m := range rest {
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	return model, contents, config
}

func (g *GeminiProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	client, err := g.newClient(ctx)
	if err != nil {
		return nil, err
	}

	model, contents, config := g.request(req)

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	out := &CompletionResponse{
		Content: resp.Text(),
		Model:   resp.ModelVersion,
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return out, nil
}

func (g *GeminiProvider) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	client, err := g.newClient(ctx)
	if err != nil {
		return nil, err
	}

	model, contents, config := g.request(req)

	events := make(chan StreamEvent)

	go func() {
		defer close(events)

		var usage *Usage

		for resp, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				send(ctx, events, StreamEvent{Error: fmt.Errorf("Gemini stream failed: %w", err)})
				return
			}

			if u := resp.UsageMetadata; u != nil {
				usage = &Usage{
					PromptTokens:     int(u.PromptTokenCount),
					CompletionTokens: int(u.CandidatesTokenCount),
					TotalTokens:      int(u.TotalTokenCount),
				}
			}

			if text := resp.Text(); text != "" {
				if !send(ctx, events, StreamEvent{Chunk: text}) {
					return
				}
			}
		}

		send(ctx, events, StreamEvent{Done: true, Usage: usage})
	}()

	return events, nil
}
