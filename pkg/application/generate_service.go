package application

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
	"github.com/atelierworks/sheetwright/pkg/domain/prompt"
	"github.com/atelierworks/sheetwright/pkg/domain/spec"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
	"github.com/atelierworks/sheetwright/pkg/storage"
)

// GenerateService runs the first-generation pipeline: normalize the raw
// specification, resolve the sheet layout, build the prompt, synthesize and
// persist the result as a new baseline version. The first generation of a
// sheet is never drift-checked; there is nothing to compare against.
type GenerateService struct {
	provider synth.Provider
	repo     *storage.BaselineRepository
	seeds    func() int64
	now      func() time.Time
}

func NewGenerateService(provider synth.Provider, repo *storage.BaselineRepository) *GenerateService {
	return &GenerateService{
		provider: provider,
		repo:     repo,
		seeds:    rand.Int64,
		now:      time.Now,
	}
}

// GenerateRequest describes one sheet to generate. Seed nil means the
// service draws one; either way the seed used is recorded on the artifact.
type GenerateRequest struct {
	DesignID string
	SheetID  string
	Kind     layout.SheetKind
	RawSpec  map[string]any
	Seed     *int64
}

// Generate produces and persists a new baseline version for the sheet.
// A cancelled context never causes a write.
func (s *GenerateService) Generate(ctx context.Context, req GenerateRequest) (*artifact.BaselineArtifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var violations []string
	if err := domain.ValidateID("design", req.DesignID); err != nil {
		violations = append(violations, err.Error())
	}
	if err := domain.ValidateID("sheet", req.SheetID); err != nil {
		violations = append(violations, err.Error())
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	if err := spec.CheckShape(req.RawSpec); err != nil {
		return nil, err
	}
	specification, err := spec.Normalize(req.RawSpec)
	if err != nil {
		return nil, err
	}

	lay, err := layout.GetLayout(req.Kind, specification)
	if err != nil {
		return nil, err
	}

	// The seed is drawn exactly once, here. The adapter verifies the vendor
	// echoed it back; it never invents one.
	seed := s.seeds()
	if req.Seed != nil {
		seed = *req.Seed
	}

	p, err := prompt.Build(prompt.BuildInput{
		Specification: specification,
		Layout:        lay,
		Mode:          prompt.ModeGenerate,
		Seed:          seed,
		Timestamp:     s.now(),
	})
	if err != nil {
		return nil, err
	}

	result, err := s.provider.Synthesize(ctx, synth.SynthesisRequest{
		Instruction: p.Instruction,
		Exclusion:   p.Exclusion,
		Seed:        &seed,
		Width:       p.Params.Width,
		Height:      p.Params.Height,
		Steps:       p.Params.Steps,
		Guidance:    p.Params.Guidance,
	})
	if err != nil {
		return nil, err
	}

	unlock := s.repo.LockSheet(req.DesignID, req.SheetID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	version, err := s.repo.NextVersion(ctx, req.DesignID, req.SheetID)
	if err != nil {
		return nil, err
	}

	art := &artifact.BaselineArtifact{
		DesignID:      req.DesignID,
		SheetID:       req.SheetID,
		Version:       version,
		ImageRef:      result.ImageRef,
		Specification: *specification,
		Layout:        *lay,
		Seed:          result.SeedUsed,
		BasePrompt:    p.Instruction,
		SpecHash:      specification.Hash(),
		LayoutHash:    lay.Hash(),
		CapturedAt:    s.now(),
	}
	if err := s.repo.Save(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}
