package artifact

import (
	"fmt"

	"github.com/atelierworks/sheetwright/pkg/domain"
)

// Toggle names a common modification operation. Closed enumeration; free-form
// intent goes in the change description instead.
type Toggle string

const (
	ToggleSwapMaterial   Toggle = "swap-material"
	ToggleAdjustOpenings Toggle = "adjust-openings"
	ToggleRelight        Toggle = "relight"
	ToggleAnnotate       Toggle = "annotate"
	ToggleLandscaping    Toggle = "landscaping"
)

var knownToggles = map[Toggle]bool{
	ToggleSwapMaterial:   true,
	ToggleAdjustOpenings: true,
	ToggleRelight:        true,
	ToggleAnnotate:       true,
	ToggleLandscaping:    true,
}

// ModificationRequest is a user-scoped delta against an existing baseline.
// Consumed once and discarded; it has no identity of its own.
type ModificationRequest struct {
	DesignID     string   `json:"design_id" yaml:"design_id"`
	SheetID      string   `json:"sheet_id" yaml:"sheet_id"`
	Change       string   `json:"change" yaml:"change"`
	Toggles      []Toggle `json:"toggles,omitempty" yaml:"toggles,omitempty"`
	TargetRegion string   `json:"target_region,omitempty" yaml:"target_region,omitempty"`
	// Strength is an explicit hint in 0.0-1.0; nil lets policy choose the
	// default. The adapter clamps it into the safe band either way.
	Strength *float64 `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// Validate checks the request for structural integrity.
func (r *ModificationRequest) Validate() []error {
	var errs []error
	if err := domain.ValidateID("design", r.DesignID); err != nil {
		errs = append(errs, err)
	}
	if err := domain.ValidateID("sheet", r.SheetID); err != nil {
		errs = append(errs, err)
	}
	if r.Change == "" && len(r.Toggles) == 0 {
		errs = append(errs, fmt.Errorf("a change description or at least one toggle is required"))
	}
	for _, tg := range r.Toggles {
		if !knownToggles[tg] {
			errs = append(errs, fmt.Errorf("unknown toggle: %q", tg))
		}
	}
	if r.Strength != nil && (*r.Strength < 0 || *r.Strength > 1) {
		errs = append(errs, fmt.Errorf("strength hint must be within 0.0-1.0, got %g", *r.Strength))
	}
	return errs
}
