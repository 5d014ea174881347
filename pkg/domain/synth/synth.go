package synth

import "context"

// Vendor interface constants. Dimensions are snapped before any call leaves
// the adapter; strength is clamped to the safe band and the value actually
// used is always reported back.
const (
	DimensionMultiple = 16
	MinStrength       = 0.08
	MaxStrength       = 0.22
)

// DefaultModifyStrength is the policy default applied when a modification
// request carries no strength hint.
const DefaultModifyStrength = 0.15

// Preset bundles the fixed step/guidance values for one pipeline mode.
type Preset struct {
	Steps    int     `json:"steps" yaml:"steps"`
	Guidance float64 `json:"guidance" yaml:"guidance"`
}

// Generation uses a higher fidelity preset than modification.
var (
	GeneratePreset = Preset{Steps: 40, Guidance: 7.5}
	ModifyPreset   = Preset{Steps: 28, Guidance: 5.0}
)

// ReasonRequest is a text-in request against the reasoning capability.
type ReasonRequest struct {
	System string
	Prompt string
}

// ReasonResponse carries the reasoning output.
type ReasonResponse struct {
	Text  string
	Model string
}

// SynthesisRequest is a prompt-in/image-out request. Seed nil means
// vendor-chosen; the seed actually used is always reported back. A non-empty
// ReferenceImage makes the call an image-conditioned modification.
type SynthesisRequest struct {
	Instruction    string
	Exclusion      string
	Seed           *int64
	Width          int
	Height         int
	Steps          int
	Guidance       float64
	ReferenceImage string
	Strength       float64
}

// Conditioned reports whether the request is an image-conditioned
// modification.
func (r SynthesisRequest) Conditioned() bool {
	return r.ReferenceImage != ""
}

// SynthesisResult is the canonical result shape every vendor response maps
// to. Width, Height and StrengthUsed echo the values actually sent, never
// silently substituted ones.
type SynthesisResult struct {
	ImageRef     string
	SeedUsed     int64
	Width        int
	Height       int
	StrengthUsed float64
	LatencyMs    int64
}

// Provider abstracts the external generative capability: reason
// (text-in/text-out) and synthesize (prompt-in/image-out).
type Provider interface {
	ID() string
	Reason(ctx context.Context, req ReasonRequest) (*ReasonResponse, error)
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
}

// SnapDimension snaps a dimension to the nearest valid vendor multiple,
// never below one multiple.
func SnapDimension(v int) int {
	snapped := (v + DimensionMultiple/2) / DimensionMultiple * DimensionMultiple
	if snapped < DimensionMultiple {
		return DimensionMultiple
	}
	return snapped
}

// ClampStrength clamps a strength hint to the safe band.
func ClampStrength(v float64) float64 {
	if v < MinStrength {
		return MinStrength
	}
	if v > MaxStrength {
		return MaxStrength
	}
	return v
}
