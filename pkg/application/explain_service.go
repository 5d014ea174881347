package application

import (
	"context"
	"fmt"

	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// ExplainService turns a drift report into a plain-language explanation via
// the provider's reasoning capability.
type ExplainService struct {
	provider synth.Provider
}

func NewExplainService(provider synth.Provider) *ExplainService {
	return &ExplainService{provider: provider}
}

// ExplainDrift asks the reasoning backend to interpret a drift report and
// suggest how to rephrase the modification.
func (s *ExplainService) ExplainDrift(ctx context.Context, report *artifact.DriftReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no drift report to explain")
	}
	if report.Decision == artifact.DecisionAccept {
		return "The modification stayed within bounds; no unintended drift was detected.", nil
	}

	outcome := "rejected"
	if report.Decision == artifact.DecisionRetry {
		outcome = "sent back for retry"
	}
	prompt := fmt.Sprintf("A requested change to an architectural sheet was %s by drift validation.\n\n"+
		"Canvas similarity to the baseline: %.3f (accept requires >= 0.92)\n"+
		"Specification drift score: %.3f\n"+
		"Attempt: %d at strength %.2f\n",
		outcome, report.CanvasSimilarity, report.SpecDrift, report.Attempt, report.Strength)

	if failed := report.FailedRegions(); len(failed) > 0 {
		prompt += "Panels that changed more than allowed:\n"
		for _, r := range failed {
			prompt += fmt.Sprintf("- %s: similarity %.3f (floor %.2f)\n", r.RegionID, r.Similarity, r.Floor)
		}
	}
	prompt += "\nExplain in two or three sentences what likely went wrong and how to rephrase the change so it stays within bounds."

	resp, err := s.provider.Reason(ctx, synth.ReasonRequest{
		System: "You are an architectural visualization assistant. You help designers make targeted sheet modifications that preserve the rest of the drawing.",
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("drift explanation failed: %w", err)
	}
	return resp.Text, nil
}
