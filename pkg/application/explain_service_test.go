package application

import (
	"context"
	"strings"
	"testing"

	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

type recordingReasoner struct {
	fakeProvider
	prompt string
}

func (r *recordingReasoner) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	r.prompt = req.Prompt
	return &synth.ReasonResponse{Text: "the change spilled into the elevation panel"}, nil
}

func TestExplainDriftIncludesFailedRegions(t *testing.T) {
	provider := &recordingReasoner{}
	svc := NewExplainService(provider)

	report := &artifact.DriftReport{
		ID:               "r1",
		CanvasSimilarity: 0.88,
		Decision:         artifact.DecisionRetry,
		Attempt:          2,
		Strength:         0.08,
		Regions: []artifact.RegionScore{
			{RegionID: "elevation-north", Similarity: 0.81, Floor: 0.95, Passed: false},
			{RegionID: "title-block", Similarity: 0.99, Floor: 0.95, Passed: true},
		},
	}

	text, err := svc.ExplainDrift(context.Background(), report)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if text == "" {
		t.Fatal("empty explanation")
	}
	if !strings.Contains(provider.prompt, "sent back for retry") {
		t.Errorf("retry decision phrased wrong in prompt: %q", provider.prompt)
	}
	if !strings.Contains(provider.prompt, "elevation-north") {
		t.Error("failed region missing from reasoning prompt")
	}
	if strings.Contains(provider.prompt, "title-block") {
		t.Error("passing region should not be listed as failed")
	}
}

func TestExplainDriftAcceptShortCircuits(t *testing.T) {
	provider := &recordingReasoner{}
	svc := NewExplainService(provider)

	text, err := svc.ExplainDrift(context.Background(), &artifact.DriftReport{Decision: artifact.DecisionAccept})
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if text == "" || provider.prompt != "" {
		t.Error("accept decisions should not call the reasoning backend")
	}
}
