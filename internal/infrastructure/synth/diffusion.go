package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

const defaultDiffusionURL = "http://localhost:7860"

// DiffusionProvider talks to a self-hosted diffusion server that exposes a
// seeded txt2img/img2img endpoint plus a small text reasoning endpoint.
type DiffusionProvider struct {
	Model      string
	baseURL    string       // For testing - defaults to a local server
	httpClient *http.Client // For testing - defaults to http.DefaultClient
}

func NewDiffusionProvider(model, baseURL string) *DiffusionProvider {
	if model == "" {
		model = "sdxl-arch"
	}
	if baseURL == "" {
		baseURL = defaultDiffusionURL
	}
	return &DiffusionProvider{Model: model, baseURL: baseURL}
}

// NewDiffusionProviderWithClient creates a provider with a custom HTTP client (for testing).
func NewDiffusionProviderWithClient(model, baseURL string, client *http.Client) *DiffusionProvider {
	p := NewDiffusionProvider(model, baseURL)
	p.httpClient = client
	return p
}

func (p *DiffusionProvider) ID() string {
	return "diffusion:" + p.Model
}

type diffusionSynthRequest struct {
	Model          string  `json:"model"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	InitImage      string  `json:"init_image,omitempty"`
	Strength       float64 `json:"strength,omitempty"`
}

type diffusionSynthResponse struct {
	Image string `json:"image"`
	Seed  int64  `json:"seed"`
}

type diffusionReasonRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

type diffusionReasonResponse struct {
	Text string `json:"text"`
}

func (p *DiffusionProvider) Synthesize(ctx context.Context, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
	body, err := json.Marshal(diffusionSynthRequest{
		Model:          p.Model,
		Prompt:         req.Instruction,
		NegativePrompt: req.Exclusion,
		Seed:           req.Seed,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		GuidanceScale:  req.Guidance,
		InitImage:      req.ReferenceImage,
		Strength:       req.Strength,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var out diffusionSynthResponse
	if err := p.post(ctx, "/v1/synthesize", body, &out); err != nil {
		return nil, err
	}
	if out.Image == "" {
		return nil, fmt.Errorf("diffusion server returned no image")
	}

	return &synth.SynthesisResult{
		ImageRef:     out.Image,
		SeedUsed:     out.Seed,
		Width:        req.Width,
		Height:       req.Height,
		StrengthUsed: req.Strength,
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func (p *DiffusionProvider) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	body, err := json.Marshal(diffusionReasonRequest{
		Model:  p.Model,
		System: req.System,
		Prompt: req.Prompt,
	})
	if err != nil {
		return nil, err
	}

	var out diffusionReasonResponse
	if err := p.post(ctx, "/v1/reason", body, &out); err != nil {
		return nil, err
	}
	return &synth.ReasonResponse{Text: out.Text, Model: p.Model}, nil
}

func (p *DiffusionProvider) post(ctx context.Context, path string, body []byte, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("diffusion server returned status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
