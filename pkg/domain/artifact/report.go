package artifact

// Decision is the drift validator's verdict on one candidate.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionRetry  Decision = "retry"
	DecisionReject Decision = "reject"
)

// RegionScore is the measured similarity for a single layout region.
type RegionScore struct {
	RegionID   string  `json:"region_id" yaml:"region_id"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	// Targeted regions are exempt from the similarity floor but still bounded
	// above so a modification cannot replace the panel wholesale.
	Targeted bool    `json:"targeted" yaml:"targeted"`
	Floor    float64 `json:"floor" yaml:"floor"`
	Passed   bool    `json:"passed" yaml:"passed"`
}

// DriftReport is the output of validating one candidate against a baseline.
// Never persisted on its own; embedded in the modification result.
type DriftReport struct {
	ID string `json:"id" yaml:"id"`
	// SpecDrift is 0 when candidate and baseline specifications agree exactly.
	SpecDrift float64 `json:"spec_drift" yaml:"spec_drift"`
	// CanvasSimilarity is 1 when the full canvases are identical.
	CanvasSimilarity float64       `json:"canvas_similarity" yaml:"canvas_similarity"`
	Regions          []RegionScore `json:"regions" yaml:"regions"`
	Decision         Decision      `json:"decision" yaml:"decision"`
	Attempt          int           `json:"attempt" yaml:"attempt"`
	Strength         float64       `json:"strength" yaml:"strength"`
}

// FailedRegions returns the untargeted regions that scored under the floor.
func (r *DriftReport) FailedRegions() []RegionScore {
	var out []RegionScore
	for _, s := range r.Regions {
		if !s.Passed {
			out = append(out, s)
		}
	}
	return out
}
