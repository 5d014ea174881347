package prompt

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
	"github.com/atelierworks/sheetwright/pkg/domain/spec"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// Mode selects which instruction shape the builder emits.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeModify   Mode = "modify"
)

// Params is the parameter bundle accompanying an instruction. Values come
// from the per-mode presets; nothing here is ever randomized.
type Params struct {
	Seed     int64   `json:"seed" yaml:"seed"`
	Width    int     `json:"width" yaml:"width"`
	Height   int     `json:"height" yaml:"height"`
	Steps    int     `json:"steps" yaml:"steps"`
	Guidance float64 `json:"guidance" yaml:"guidance"`
	Strength float64 `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// Prompt is the builder output: instruction text, exclusion text and the
// parameter bundle. Identical inputs always yield byte-identical output.
type Prompt struct {
	Instruction string `json:"instruction" yaml:"instruction"`
	Exclusion   string `json:"exclusion" yaml:"exclusion"`
	Params      Params `json:"params" yaml:"params"`
}

// BuildInput carries everything the builder may look at. No clock: the
// timestamp is passed explicitly and used only for title-block display text.
type BuildInput struct {
	Specification *spec.DesignSpecification
	Layout        *layout.Layout
	Mode          Mode
	Seed          int64
	Timestamp     time.Time

	// Modify-mode fields.
	PriorArtifact *artifact.BaselineArtifact
	Change        string
	Toggles       []artifact.Toggle
	TargetRegion  string
	Strength      float64
}

// Build is a pure function from its input to a Prompt. In modify mode the
// consistency block is restated verbatim from the specification stored in the
// prior artifact, never recomputed from the new request.
func Build(in BuildInput) (*Prompt, error) {
	switch in.Mode {
	case ModeGenerate:
		return buildGenerate(in)
	case ModeModify:
		return buildModify(in)
	default:
		return nil, fmt.Errorf("unknown prompt mode: %q", in.Mode)
	}
}

func buildGenerate(in BuildInput) (*Prompt, error) {
	if in.Specification == nil || in.Layout == nil {
		return nil, fmt.Errorf("generate mode requires a specification and a layout")
	}

	var b strings.Builder
	b.WriteString("Architectural presentation sheet, composed of fixed panels on a single canvas.\n\n")
	b.WriteString("Panels:\n")
	for _, r := range in.Layout.Regions {
		b.WriteString("- ")
		b.WriteString(regionInstruction(r, in))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(ConsistencyBlock(in.Specification))

	return &Prompt{
		Instruction: b.String(),
		Exclusion:   ExclusionText(),
		Params: Params{
			Seed:     in.Seed,
			Width:    in.Layout.CanvasWidth,
			Height:   in.Layout.CanvasHeight,
			Steps:    synth.GeneratePreset.Steps,
			Guidance: synth.GeneratePreset.Guidance,
		},
	}, nil
}

func buildModify(in BuildInput) (*Prompt, error) {
	if in.PriorArtifact == nil {
		return nil, domain.ErrConsistencyBlockMissing
	}

	var b strings.Builder
	b.WriteString(ConsistencyBlock(&in.PriorArtifact.Specification))
	b.WriteString("\nRequested change")
	if in.TargetRegion != "" {
		fmt.Fprintf(&b, " (panel %s only)", in.TargetRegion)
	}
	b.WriteString(":\n")
	if in.Change != "" {
		fmt.Fprintf(&b, "- %s\n", in.Change)
	}
	for _, tg := range in.Toggles {
		fmt.Fprintf(&b, "- apply operation: %s\n", tg)
	}
	b.WriteString("Leave every other panel exactly as in the reference image.\n")

	return &Prompt{
		Instruction: b.String(),
		Exclusion:   ExclusionText(),
		Params: Params{
			Seed:     in.Seed,
			Width:    in.PriorArtifact.Layout.CanvasWidth,
			Height:   in.PriorArtifact.Layout.CanvasHeight,
			Steps:    synth.ModifyPreset.Steps,
			Guidance: synth.ModifyPreset.Guidance,
			Strength: in.Strength,
		},
	}, nil
}

func regionInstruction(r layout.Region, in BuildInput) string {
	s := in.Specification
	switch r.Type {
	case layout.RegionPlan:
		floor := "ground floor"
		if r.ID == "plan-upper" {
			floor = "upper floor"
		}
		return fmt.Sprintf("%s: %s plan at %gm x %gm footprint, wall openings per the locked counts, room labels, north arrow, scale bar", r.ID, floor, s.Envelope.Length, s.Envelope.Width)
	case layout.RegionElevation:
		orientation := strings.TrimPrefix(r.ID, "elevation-")
		return fmt.Sprintf("%s: %s elevation, %gm ridge height, %s roof, openings per the locked %s count", r.ID, orientation, s.Envelope.Height, s.Structure.RoofForm, orientation)
	case layout.RegionSection:
		return fmt.Sprintf("%s: cross section showing %d floor(s), %s structure, %s roof at %g degrees", r.ID, s.Envelope.Floors, s.Structure.System, s.Structure.RoofForm, s.Structure.RoofPitch)
	case layout.RegionPerspective:
		return fmt.Sprintf("%s: exterior perspective render, materials per the locked list, style weighting %s", r.ID, styleText(s.StyleWeights))
	case layout.RegionDataPanel:
		return fmt.Sprintf("%s: schedule table of areas, openings and materials; plain tabular linework, no imagery", r.ID)
	case layout.RegionTitleBlock:
		return fmt.Sprintf("%s: title strip reading %s", r.ID, titleBlockText(in))
	case layout.RegionSiteContext:
		return fmt.Sprintf("%s: reserved blank panel for the site snapshot; flat neutral fill, no generated content", r.ID)
	default:
		return fmt.Sprintf("%s: untyped panel, leave neutral", r.ID)
	}
}

// titleBlockText renders the title-block facts line. The timestamp comes from
// the caller so repeated builds with the same input stay byte-identical.
func titleBlockText(in BuildInput) string {
	s := in.Specification
	project := s.Metadata["project"]
	if project == "" {
		project = "unnamed design"
	}
	return fmt.Sprintf("'%s | %s sheet | 1:100 | %s | seed %d | %.0f sqm'",
		project, in.Layout.Kind, in.Timestamp.Format("2006-01-02"), in.Seed, s.Envelope.FloorArea())
}

// ConsistencyBlock renders the machine-checkable list of locked facts from a
// specification. Every numeric and categorical fact downstream content must
// agree with appears here, in a fixed order.
func ConsistencyBlock(s *spec.DesignSpecification) string {
	var b strings.Builder
	b.WriteString("Locked facts (every panel must agree):\n")
	fmt.Fprintf(&b, "- envelope: %gm long, %gm wide, %gm high, %d floor(s)\n",
		s.Envelope.Length, s.Envelope.Width, s.Envelope.Height, s.Envelope.Floors)
	fmt.Fprintf(&b, "- openings: north %d, south %d, east %d, west %d, total %d\n",
		s.Openings.North, s.Openings.South, s.Openings.East, s.Openings.West, s.Openings.Total)
	fmt.Fprintf(&b, "- structure: %s, %s roof, %g degree pitch\n",
		s.Structure.System, s.Structure.RoofForm, s.Structure.RoofPitch)

	mats := make([]spec.Material, len(s.Materials))
	copy(mats, s.Materials)
	sort.Slice(mats, func(i, j int) bool {
		if mats[i].Category != mats[j].Category {
			return mats[i].Category < mats[j].Category
		}
		return mats[i].Name < mats[j].Name
	})
	for _, m := range mats {
		fmt.Fprintf(&b, "- material (%s): %s, %s, applied to %s\n", m.Category, m.Name, m.Color, m.Region)
	}

	fmt.Fprintf(&b, "- style weighting: %s\n", styleText(s.StyleWeights))
	return b.String()
}

func styleText(w spec.StyleWeights) string {
	return fmt.Sprintf("%.0f%% local vernacular / %.0f%% portfolio", w.Local*100, w.Portfolio*100)
}
