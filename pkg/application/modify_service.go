package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/drift"
	"github.com/atelierworks/sheetwright/pkg/domain/prompt"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
	"github.com/atelierworks/sheetwright/pkg/storage"
)

// Retry policy for drift-bounded modification.
const (
	// MaxRetries is the number of re-synthesis attempts after the first.
	MaxRetries = 2
	// RetryStrengthFactor shrinks the strength on each retry.
	RetryStrengthFactor = 0.7
)

// ModifyService applies a bounded modification to an existing baseline:
// restate the baseline's consistency block, synthesize conditioned on the
// baseline image with the baseline seed, validate drift, and either persist
// the next version or retry with reduced strength.
type ModifyService struct {
	provider  synth.Provider
	repo      *storage.BaselineRepository
	images    ImageReader
	validator *drift.Validator
	now       func() time.Time
}

func NewModifyService(provider synth.Provider, repo *storage.BaselineRepository, images ImageReader, validator *drift.Validator) *ModifyService {
	if validator == nil {
		validator = drift.NewValidator(drift.DefaultThresholds())
	}
	return &ModifyService{
		provider:  provider,
		repo:      repo,
		images:    images,
		validator: validator,
		now:       time.Now,
	}
}

// ModifyResult pairs the persisted artifact with the drift report that
// admitted it.
type ModifyResult struct {
	Artifact *artifact.BaselineArtifact
	Report   *artifact.DriftReport
}

// Modify runs the modification pipeline. The baseline seed is reused for
// every attempt; only the strength moves, down by RetryStrengthFactor per
// retry and never below the safe minimum. A rejected or retries-exhausted
// run returns drift.ExceededError carrying the final report and writes
// nothing.
func (s *ModifyService) Modify(ctx context.Context, req artifact.ModificationRequest) (*ModifyResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if errs := req.Validate(); len(errs) > 0 {
		violations := make([]string, len(errs))
		for i, e := range errs {
			violations[i] = e.Error()
		}
		return nil, &domain.ValidationError{Violations: violations}
	}

	run, err := newModifyRun(uuid.NewString())
	if err != nil {
		return nil, err
	}

	unlock := s.repo.LockSheet(req.DesignID, req.SheetID)
	defer unlock()

	baseline, err := s.repo.Get(ctx, req.DesignID, req.SheetID)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		// Fail before any synthesis call; the vendor budget is not spent on
		// requests that cannot be validated.
		return nil, fmt.Errorf("%w: design %s sheet %s", domain.ErrBaselineNotFound, req.DesignID, req.SheetID)
	}
	if err := run.advance("loaded"); err != nil {
		return nil, err
	}

	baselineImage, err := s.images.Read(baseline.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("read baseline image: %w", err)
	}

	strength := synth.DefaultModifyStrength
	if req.Strength != nil {
		strength = *req.Strength
	}
	strength = synth.ClampStrength(strength)

	var report *artifact.DriftReport
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		p, err := prompt.Build(prompt.BuildInput{
			Specification: &baseline.Specification,
			Layout:        &baseline.Layout,
			Mode:          prompt.ModeModify,
			Seed:          baseline.Seed,
			Timestamp:     s.now(),
			PriorArtifact: baseline,
			Change:        req.Change,
			Toggles:       req.Toggles,
			TargetRegion:  req.TargetRegion,
			Strength:      strength,
		})
		if err != nil {
			return nil, err
		}
		if err := run.advance("built"); err != nil {
			return nil, err
		}

		seed := baseline.Seed
		result, err := s.provider.Synthesize(ctx, synth.SynthesisRequest{
			Instruction:    p.Instruction,
			Exclusion:      p.Exclusion,
			Seed:           &seed,
			Width:          p.Params.Width,
			Height:         p.Params.Height,
			Steps:          p.Params.Steps,
			Guidance:       p.Params.Guidance,
			ReferenceImage: baseline.ImageRef,
			Strength:       strength,
		})
		if err != nil {
			return nil, err
		}
		if err := run.advance("synthesized"); err != nil {
			return nil, err
		}

		candidateImage, err := s.images.Read(result.ImageRef)
		if err != nil {
			return nil, fmt.Errorf("read candidate image: %w", err)
		}

		report = s.validator.Validate(drift.Input{
			Baseline:       baseline,
			BaselineImage:  baselineImage,
			CandidateImage: candidateImage,
			TargetRegion:   req.TargetRegion,
			Attempt:        attempt,
			Strength:       result.StrengthUsed,
		})

		switch report.Decision {
		case artifact.DecisionAccept:
			if err := run.advance("accept"); err != nil {
				return nil, err
			}
			return s.persist(ctx, baseline, result, report)

		case artifact.DecisionRetry:
			if attempt == MaxRetries {
				if err := run.advance("reject"); err != nil {
					return nil, err
				}
				return nil, &drift.ExceededError{Report: report}
			}
			if err := run.advance("retry"); err != nil {
				return nil, err
			}
			strength *= RetryStrengthFactor
			if strength < synth.MinStrength {
				strength = synth.MinStrength
			}
			if err := run.advance("resume"); err != nil {
				return nil, err
			}

		case artifact.DecisionReject:
			if err := run.advance("reject"); err != nil {
				return nil, err
			}
			return nil, &drift.ExceededError{Report: report}

		default:
			return nil, fmt.Errorf("unknown drift decision: %q", report.Decision)
		}
	}
	return nil, &drift.ExceededError{Report: report}
}

// persist writes the accepted candidate as the next immutable version.
func (s *ModifyService) persist(ctx context.Context, baseline *artifact.BaselineArtifact, result *synth.SynthesisResult, report *artifact.DriftReport) (*ModifyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	version, err := s.repo.NextVersion(ctx, baseline.DesignID, baseline.SheetID)
	if err != nil {
		return nil, err
	}

	next := baseline.Clone()
	next.Version = version
	next.ImageRef = result.ImageRef
	next.CapturedAt = s.now()
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, err
	}
	return &ModifyResult{Artifact: next, Report: report}, nil
}
