package synth

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// OpenAIProvider serves the reasoning side of the capability through the
// OpenAI chat API. The image API has no seed control, so Synthesize is
// refused rather than silently breaking reproducibility; pair this provider
// with a seeded image backend via NewSplitProvider.
type OpenAIProvider struct {
	Model  string
	client *openai.Client
}

func NewOpenAIProvider(model, apiKey, baseURL string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{Model: model, client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) ID() string {
	return "openai:" + p.Model
}

func (p *OpenAIProvider) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &synth.ReasonResponse{Text: resp.Choices[0].Message.Content, Model: p.Model}, nil
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
	return nil, fmt.Errorf("openai image API has no seed control; use a seeded synthesis backend")
}

// SplitProvider routes synthesis and reasoning to different backends, for
// setups that pair a local diffusion server with a hosted chat model.
type SplitProvider struct {
	images   synth.Provider
	reasoner synth.Provider
}

func NewSplitProvider(images, reasoner synth.Provider) *SplitProvider {
	return &SplitProvider{images: images, reasoner: reasoner}
}

func (p *SplitProvider) ID() string {
	return p.images.ID() + "+" + p.reasoner.ID()
}

func (p *SplitProvider) Synthesize(ctx context.Context, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
	return p.images.Synthesize(ctx, req)
}

func (p *SplitProvider) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	return p.reasoner.Reason(ctx, req)
}
