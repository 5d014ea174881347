package synth

import (
	"fmt"
	"os"

	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// ProviderSettings selects and configures the generative backend.
type ProviderSettings struct {
	Provider string
	Model    string
	BaseURL  string
	Reasoner string // optional chat backend for drift explanations
	ImageDir string // where locally rendered images land (mock provider)
}

// NewProvider builds the configured vendor client.
func NewProvider(s ProviderSettings) (synth.Provider, error) {
	base, err := newBackend(s.Provider, s)
	if err != nil {
		return nil, err
	}
	if s.Reasoner != "" && s.Reasoner != s.Provider {
		reasoner, err := newBackend(s.Reasoner, s)
		if err != nil {
			return nil, err
		}
		return NewSplitProvider(base, reasoner), nil
	}
	return base, nil
}

func newBackend(name string, s ProviderSettings) (synth.Provider, error) {
	switch name {
	case "diffusion", "":
		return NewDiffusionProvider(s.Model, s.BaseURL), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(s.Model, apiKey, s.BaseURL), nil
	case "mock":
		dir := s.ImageDir
		if dir == "" {
			dir = os.TempDir()
		}
		return NewMockProvider(dir), nil
	default:
		return nil, fmt.Errorf("unsupported synthesis provider: %s", name)
	}
}

// GetDefaultProvider applies environment overrides before construction.
func GetDefaultProvider(s ProviderSettings) (synth.Provider, error) {
	if v := os.Getenv("SHEETWRIGHT_PROVIDER"); v != "" {
		s.Provider = v
	}
	if v := os.Getenv("SHEETWRIGHT_MODEL"); v != "" {
		s.Model = v
	}
	return NewProvider(s)
}
