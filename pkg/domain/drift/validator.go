package drift

import (
	"image"
	"math"

	"github.com/google/uuid"

	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
	"github.com/atelierworks/sheetwright/pkg/domain/spec"
)

// Specification drift category weights. They sum to 1.
const (
	WeightDimensions   = 0.25
	WeightMaterials    = 0.25
	WeightMassing      = 0.20
	WeightStyle        = 0.15
	WeightCompleteness = 0.15
)

// Thresholds are the documented decision defaults. Uniform across sheet
// kinds; there is no per-request override of the acceptance floor.
type Thresholds struct {
	AcceptCanvas float64 `yaml:"accept_canvas"` // >= accept
	RetryCanvas  float64 `yaml:"retry_canvas"`  // >= retry, below reject
	RegionFloor  float64 `yaml:"region_floor"`  // untouched regions
	// TargetFloor bounds the targeted region from below so a modification
	// cannot replace the panel wholesale.
	TargetFloor float64 `yaml:"target_floor"`
	// Specification drift past SpecRetry forces a retry even when pixels
	// agree; past SpecReject the candidate is rejected outright.
	SpecRetry  float64 `yaml:"spec_retry"`
	SpecReject float64 `yaml:"spec_reject"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AcceptCanvas: 0.92,
		RetryCanvas:  0.85,
		RegionFloor:  0.95,
		TargetFloor:  0.40,
		SpecRetry:    0.10,
		SpecReject:   0.25,
	}
}

// Validator scores candidates against baselines. Pure math; it never touches
// the network or the clock.
type Validator struct {
	thresholds Thresholds
}

// NewValidator creates a Validator. Zero thresholds fall back to defaults.
func NewValidator(t Thresholds) *Validator {
	if t.AcceptCanvas == 0 {
		t = DefaultThresholds()
	}
	return &Validator{thresholds: t}
}

// Thresholds returns the active decision thresholds.
func (v *Validator) Thresholds() Thresholds {
	return v.thresholds
}

// Input carries one candidate to score. CandidateSpec is nil when the
// modification does not claim to change the specification, which is the
// common case.
type Input struct {
	Baseline       *artifact.BaselineArtifact
	CandidateSpec  *spec.DesignSpecification
	BaselineImage  image.Image
	CandidateImage image.Image
	TargetRegion   string
	Attempt        int
	Strength       float64
}

// Validate computes specification and image drift for one candidate and
// renders a decision.
func (v *Validator) Validate(in Input) *artifact.DriftReport {
	report := &artifact.DriftReport{
		ID:       uuid.NewString(),
		Attempt:  in.Attempt,
		Strength: in.Strength,
	}

	report.SpecDrift = v.SpecDrift(&in.Baseline.Specification, in.CandidateSpec, &in.Baseline.Layout)
	report.CanvasSimilarity, report.Regions = v.imageDrift(in)
	report.Decision = v.Decide(report)
	return report
}

// Decide applies the documented thresholds to a scored report.
func (v *Validator) Decide(report *artifact.DriftReport) artifact.Decision {
	t := v.thresholds

	if report.SpecDrift > t.SpecReject {
		return artifact.DecisionReject
	}
	if report.CanvasSimilarity < t.RetryCanvas {
		return artifact.DecisionReject
	}
	if report.CanvasSimilarity < t.AcceptCanvas {
		return artifact.DecisionRetry
	}
	if report.SpecDrift > t.SpecRetry {
		return artifact.DecisionRetry
	}
	for _, r := range report.Regions {
		if !r.Passed {
			return artifact.DecisionRetry
		}
	}
	return artifact.DecisionAccept
}

// SpecDrift is the weighted field-by-field comparison between the baseline
// specification and the one implied by the modification. Nil candidate means
// the modification claims no specification change and scores zero.
func (v *Validator) SpecDrift(baseline, candidate *spec.DesignSpecification, baselineLayout *layout.Layout) float64 {
	if candidate == nil {
		return 0
	}

	score := WeightDimensions*dimensionDrift(baseline, candidate) +
		WeightMaterials*materialDrift(baseline.Materials, candidate.Materials) +
		WeightMassing*massingDrift(&baseline.Structure, &candidate.Structure) +
		WeightStyle*styleDrift(baseline.StyleWeights, candidate.StyleWeights) +
		WeightCompleteness*completenessDrift(baseline, candidate, baselineLayout)
	return clamp01(score)
}

func dimensionDrift(a, b *spec.DesignSpecification) float64 {
	if a.Envelope.Floors != b.Envelope.Floors {
		return 1
	}
	d := relDiff(a.Envelope.Length, b.Envelope.Length) +
		relDiff(a.Envelope.Width, b.Envelope.Width) +
		relDiff(a.Envelope.Height, b.Envelope.Height)
	return clamp01(d / 3)
}

func materialDrift(a, b []spec.Material) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := func(ms []spec.Material) map[spec.Material]bool {
		out := make(map[spec.Material]bool, len(ms))
		for _, m := range ms {
			out[m] = true
		}
		return out
	}
	sa, sb := set(a), set(b)
	union, inter := 0, 0
	for m := range sa {
		union++
		if sb[m] {
			inter++
		}
	}
	for m := range sb {
		if !sa[m] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return 1 - float64(inter)/float64(union)
}

func massingDrift(a, b *spec.Structure) float64 {
	d := 0.0
	if a.System != b.System {
		d += 0.5
	}
	if a.RoofForm != b.RoofForm {
		d += 0.3
	}
	d += 0.2 * relDiff(a.RoofPitch, b.RoofPitch)
	return clamp01(d)
}

func styleDrift(a, b spec.StyleWeights) float64 {
	return clamp01(math.Abs(a.Local - b.Local))
}

// completenessDrift measures whether the candidate still demands every
// region the baseline layout requires: a candidate whose shape would select
// a different layout variant loses required regions.
func completenessDrift(a, b *spec.DesignSpecification, baselineLayout *layout.Layout) float64 {
	if baselineLayout == nil {
		return 0
	}
	candLayout, err := layout.GetLayout(baselineLayout.Kind, b)
	if err != nil {
		return 1
	}
	required := baselineLayout.RegionIDs()
	if len(required) == 0 {
		return 0
	}
	present := make(map[string]bool, len(candLayout.Regions))
	for _, id := range candLayout.RegionIDs() {
		present[id] = true
	}
	missing := 0
	for _, id := range required {
		if !present[id] {
			missing++
		}
	}
	return float64(missing) / float64(len(required))
}

func (v *Validator) imageDrift(in Input) (float64, []artifact.RegionScore) {
	if in.BaselineImage == nil || in.CandidateImage == nil {
		return 0, nil
	}

	a := newGrayPlane(in.BaselineImage)
	b := newGrayPlane(in.CandidateImage)

	canvas := ssimPlanes(a, b, image.Rect(0, 0, min(a.w, b.w), min(a.h, b.h)))

	pixelRegions := layout.ComputePixelRegions(&in.Baseline.Layout, min(a.w, b.w), min(a.h, b.h))
	scores := make([]artifact.RegionScore, 0, len(pixelRegions))
	for _, pr := range pixelRegions {
		rect := image.Rect(pr.Rect.X, pr.Rect.Y, pr.Rect.X+pr.Rect.W, pr.Rect.Y+pr.Rect.H)
		sim := ssimPlanes(a, b, rect)

		targeted := pr.ID == in.TargetRegion
		floor := v.thresholds.RegionFloor
		if targeted {
			floor = v.thresholds.TargetFloor
		}
		scores = append(scores, artifact.RegionScore{
			RegionID:   pr.ID,
			Similarity: sim,
			Targeted:   targeted,
			Floor:      floor,
			Passed:     sim >= floor,
		})
	}
	return canvas, scores
}

func relDiff(a, b float64) float64 {
	base := math.Max(math.Abs(a), math.Abs(b))
	if base == 0 {
		return 0
	}
	return clamp01(math.Abs(a-b) / base)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
