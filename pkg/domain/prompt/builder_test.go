package prompt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
	"github.com/atelierworks/sheetwright/pkg/domain/spec"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

func testSpec(t *testing.T) *spec.DesignSpecification {
	t.Helper()
	s, err := spec.Normalize(map[string]any{
		"length": 15.0, "width": 10.0, "height": 7.0, "floors": 2,
		"openings":     map[string]any{"N": 4, "S": 3, "E": 2, "W": 2, "total": 11},
		"styleWeights": map[string]any{"local": 0.9, "portfolio": 0.1},
		"materials": []any{
			map[string]any{"category": "walls", "name": "brick", "color": "red"},
		},
		"metadata": map[string]any{"project": "hillside house"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testInput(t *testing.T) BuildInput {
	t.Helper()
	s := testSpec(t)
	l, err := layout.GetLayout(layout.KindPresentation, s)
	if err != nil {
		t.Fatal(err)
	}
	return BuildInput{
		Specification: s,
		Layout:        l,
		Mode:          ModeGenerate,
		Seed:          42,
		Timestamp:     time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuild_GenerateDeterministic(t *testing.T) {
	in := testInput(t)

	a, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}

	if a.Instruction != b.Instruction || a.Exclusion != b.Exclusion || a.Params != b.Params {
		t.Error("identical inputs must yield byte-identical prompts")
	}
}

func TestBuild_GenerateEnumeratesRegions(t *testing.T) {
	in := testInput(t)
	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range in.Layout.RegionIDs() {
		if !strings.Contains(p.Instruction, id) {
			t.Errorf("instruction missing region %q", id)
		}
	}
	for _, fact := range []string{"north 4", "south 3", "east 2", "west 2", "total 11", "15m long", "2 floor(s)", "brick", "90% local"} {
		if !strings.Contains(p.Instruction, fact) {
			t.Errorf("consistency block missing fact %q", fact)
		}
	}
	if !strings.Contains(p.Instruction, "seed 42") {
		t.Error("title block should carry the seed")
	}
	if !strings.Contains(p.Instruction, "2026-03-14") {
		t.Error("title block should use the passed timestamp, not the clock")
	}
}

func TestBuild_GenerateParams(t *testing.T) {
	p, err := Build(testInput(t))
	if err != nil {
		t.Fatal(err)
	}
	if p.Params.Seed != 42 {
		t.Errorf("expected seed 42, got %d", p.Params.Seed)
	}
	if p.Params.Steps != synth.GeneratePreset.Steps || p.Params.Guidance != synth.GeneratePreset.Guidance {
		t.Error("generate mode must use the generation preset")
	}
	if p.Params.Width != layout.CanvasWidth || p.Params.Height != layout.CanvasHeight {
		t.Error("params must carry the layout canvas dimensions")
	}
}

func TestBuild_ModifyRequiresPriorArtifact(t *testing.T) {
	in := testInput(t)
	in.Mode = ModeModify
	in.PriorArtifact = nil

	_, err := Build(in)
	if !errors.Is(err, domain.ErrConsistencyBlockMissing) {
		t.Fatalf("expected ErrConsistencyBlockMissing, got %v", err)
	}
}

func TestBuild_ModifyRestatesBaselineFacts(t *testing.T) {
	in := testInput(t)
	baseline := &artifact.BaselineArtifact{
		DesignID:      "d1",
		SheetID:       "s1",
		Version:       1,
		Specification: *in.Specification,
		Layout:        *in.Layout,
		Seed:          42,
	}

	in.Mode = ModeModify
	in.PriorArtifact = baseline
	in.Change = "swap brick for larch cladding"
	in.Toggles = []artifact.Toggle{artifact.ToggleSwapMaterial}
	in.TargetRegion = "perspective"
	in.Strength = 0.15

	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}

	// The consistency block equals the one derivable from the baseline's
	// stored specification, regardless of the request contents.
	if !strings.Contains(p.Instruction, ConsistencyBlock(&baseline.Specification)) {
		t.Error("modify instruction must restate the baseline consistency block verbatim")
	}
	if !strings.Contains(p.Instruction, "swap brick for larch cladding") {
		t.Error("modify instruction must carry the requested delta")
	}
	if !strings.Contains(p.Instruction, "panel perspective only") {
		t.Error("modify instruction must scope to the target region")
	}
	if p.Params.Steps != synth.ModifyPreset.Steps {
		t.Error("modify mode must use the modification preset")
	}
	if p.Params.Strength != 0.15 {
		t.Errorf("expected strength 0.15, got %g", p.Params.Strength)
	}
}

func TestExclusionText_StableAndWeighted(t *testing.T) {
	a := ExclusionText()
	b := ExclusionText()
	if a != b {
		t.Error("exclusion text must be static")
	}
	for _, want := range []string{"wrong number of windows", "shifted or rearranged", ":1.5)", ":1.0)"} {
		if !strings.Contains(a, want) {
			t.Errorf("exclusion text missing %q: %s", want, a)
		}
	}
}
