package application

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/drift"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
	"github.com/atelierworks/sheetwright/pkg/storage"
)

// fakeImages maps refs to pre-rendered test sheets.
type fakeImages map[string]image.Image

func (f fakeImages) Read(ref string) (image.Image, error) {
	img, ok := f[ref]
	if !ok {
		return nil, fmt.Errorf("unknown image ref: %s", ref)
	}
	return img, nil
}

// seedBaseline generates version 1 so modification tests start from a real
// persisted artifact.
func seedBaseline(t *testing.T, repo *storage.BaselineRepository) *artifact.BaselineArtifact {
	t.Helper()
	provider := &fakeProvider{respond: func(call int, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
		res, _ := echoSeed(call, req)
		res.ImageRef = "baseline.png"
		return res, nil
	}}
	gen := NewGenerateService(provider, repo)
	seed := int64(42)
	art, err := gen.Generate(context.Background(), GenerateRequest{
		DesignID: "d1", SheetID: "s1",
		Kind: layout.KindPresentation, RawSpec: rawSheetSpec(), Seed: &seed,
	})
	if err != nil {
		t.Fatalf("seed baseline: %v", err)
	}
	return art
}

func modifyService(provider synth.Provider, repo *storage.BaselineRepository, images fakeImages) *ModifyService {
	return NewModifyService(provider, repo, images, drift.NewValidator(drift.DefaultThresholds()))
}

func TestModifyAcceptWritesNextVersion(t *testing.T) {
	repo := storage.NewBaselineRepository(storage.NewMemoryStore())
	baseline := seedBaseline(t, repo)

	provider := &fakeProvider{respond: func(call int, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
		res, _ := echoSeed(call, req)
		res.ImageRef = "candidate.png"
		return res, nil
	}}
	images := fakeImages{
		"baseline.png":  flatImage(128),
		"candidate.png": flatImage(128), // candidate within bounds
	}
	svc := modifyService(provider, repo, images)

	res, err := svc.Modify(context.Background(), artifact.ModificationRequest{
		DesignID: "d1", SheetID: "s1",
		Change: "swap cladding to charred timber",
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if res.Artifact.Version != 2 {
		t.Errorf("want version 2, got %d", res.Artifact.Version)
	}
	if res.Artifact.Seed != baseline.Seed {
		t.Errorf("seed changed across modification: %d != %d", res.Artifact.Seed, baseline.Seed)
	}
	if res.Report.Decision != artifact.DecisionAccept {
		t.Errorf("want accept, got %s", res.Report.Decision)
	}

	sent := provider.requests[0]
	if sent.Seed == nil || *sent.Seed != baseline.Seed {
		t.Errorf("baseline seed not reused: %+v", sent.Seed)
	}
	if sent.ReferenceImage != "baseline.png" {
		t.Errorf("synthesis not conditioned on baseline image: %q", sent.ReferenceImage)
	}
	if sent.Strength != synth.DefaultModifyStrength {
		t.Errorf("want default strength %.2f, got %.2f", synth.DefaultModifyStrength, sent.Strength)
	}
}

func TestModifyMissingBaselineFailsBeforeSynthesis(t *testing.T) {
	repo := storage.NewBaselineRepository(storage.NewMemoryStore())
	provider := &fakeProvider{respond: echoSeed}
	svc := modifyService(provider, repo, fakeImages{})

	_, err := svc.Modify(context.Background(), artifact.ModificationRequest{
		DesignID: "d1", SheetID: "missing",
		Change: "anything",
	})
	if !errors.Is(err, domain.ErrBaselineNotFound) {
		t.Fatalf("want baseline not found, got %v", err)
	}
	if provider.calls() != 0 {
		t.Error("provider called despite missing baseline")
	}
}

func TestModifyRetriesWithReducedStrength(t *testing.T) {
	repo := storage.NewBaselineRepository(storage.NewMemoryStore())
	seedBaseline(t, repo)

	provider := &fakeProvider{respond: func(call int, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
		res, _ := echoSeed(call, req)
		res.ImageRef = fmt.Sprintf("candidate-%d.png", call)
		return res, nil
	}}
	images := fakeImages{
		"baseline.png":    flatImage(128),
		"candidate-0.png": flatImage(76),  // similarity in the retry band
		"candidate-1.png": flatImage(128), // retry lands within bounds
	}
	svc := modifyService(provider, repo, images)

	res, err := svc.Modify(context.Background(), artifact.ModificationRequest{
		DesignID: "d1", SheetID: "s1",
		Change: "relight the perspective at dusk",
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if provider.calls() != 2 {
		t.Fatalf("want 2 synthesis calls, got %d", provider.calls())
	}

	first, second := provider.requests[0], provider.requests[1]
	want := synth.DefaultModifyStrength * RetryStrengthFactor
	if second.Strength >= first.Strength {
		t.Errorf("retry strength did not shrink: %.3f -> %.3f", first.Strength, second.Strength)
	}
	if diff := second.Strength - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("want retry strength %.3f, got %.3f", want, second.Strength)
	}
	if first.Seed == nil || second.Seed == nil || *first.Seed != *second.Seed {
		t.Error("seed changed between attempts")
	}
	if res.Report.Attempt != 1 {
		t.Errorf("want accepting attempt 1, got %d", res.Report.Attempt)
	}
	if res.Artifact.Version != 2 {
		t.Errorf("want version 2, got %d", res.Artifact.Version)
	}
}

func TestModifyRejectWritesNothing(t *testing.T) {
	repo := storage.NewBaselineRepository(storage.NewMemoryStore())
	seedBaseline(t, repo)

	provider := &fakeProvider{respond: func(call int, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
		res, _ := echoSeed(call, req)
		res.ImageRef = "candidate.png"
		return res, nil
	}}
	images := fakeImages{
		"baseline.png":  flatImage(128),
		"candidate.png": flatImage(60), // far outside bounds
	}
	svc := modifyService(provider, repo, images)

	_, err := svc.Modify(context.Background(), artifact.ModificationRequest{
		DesignID: "d1", SheetID: "s1",
		Change: "rebuild the whole sheet in brutalist style",
	})
	if !errors.Is(err, domain.ErrDriftExceeded) {
		t.Fatalf("want drift exceeded, got %v", err)
	}
	var exceeded *drift.ExceededError
	if !errors.As(err, &exceeded) || exceeded.Report == nil {
		t.Fatalf("error does not carry the final report: %v", err)
	}
	if exceeded.Report.Decision != artifact.DecisionReject {
		t.Errorf("want reject decision, got %s", exceeded.Report.Decision)
	}
	if provider.calls() != 1 {
		t.Errorf("reject should not retry, got %d calls", provider.calls())
	}

	versions, err := repo.ListVersions(context.Background(), "d1", "s1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("rejected modification wrote a version: %d versions", len(versions))
	}
}

func TestModifyExhaustsRetriesThenFails(t *testing.T) {
	repo := storage.NewBaselineRepository(storage.NewMemoryStore())
	seedBaseline(t, repo)

	provider := &fakeProvider{respond: func(call int, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
		res, _ := echoSeed(call, req)
		res.ImageRef = "candidate.png"
		return res, nil
	}}
	images := fakeImages{
		"baseline.png":  flatImage(128),
		"candidate.png": flatImage(76), // every attempt lands in the retry band
	}
	svc := modifyService(provider, repo, images)

	hint := 0.12
	_, err := svc.Modify(context.Background(), artifact.ModificationRequest{
		DesignID: "d1", SheetID: "s1",
		Change:   "adjust opening rhythm on the north elevation",
		Strength: &hint,
	})
	if !errors.Is(err, domain.ErrDriftExceeded) {
		t.Fatalf("want drift exceeded, got %v", err)
	}
	if provider.calls() != MaxRetries+1 {
		t.Fatalf("want %d attempts, got %d", MaxRetries+1, provider.calls())
	}

	// 0.12 -> 0.084 -> floored at the safe minimum.
	last := provider.requests[MaxRetries]
	if last.Strength != synth.MinStrength {
		t.Errorf("strength not floored: got %.3f, want %.3f", last.Strength, synth.MinStrength)
	}

	versions, _ := repo.ListVersions(context.Background(), "d1", "s1")
	if len(versions) != 1 {
		t.Errorf("exhausted run wrote a version: %d versions", len(versions))
	}
}

func TestModifyValidatesRequest(t *testing.T) {
	repo := storage.NewBaselineRepository(storage.NewMemoryStore())
	provider := &fakeProvider{respond: echoSeed}
	svc := modifyService(provider, repo, fakeImages{})

	_, err := svc.Modify(context.Background(), artifact.ModificationRequest{
		DesignID: "d1", SheetID: "s1",
		// no change text and no toggles
	})
	if !errors.Is(err, domain.ErrInvalidSpecification) {
		t.Fatalf("want validation error, got %v", err)
	}
}
