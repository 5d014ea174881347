package layout

import (
	"fmt"

	"github.com/atelierworks/sheetwright/pkg/domain/spec"
)

// SheetKind selects which static sheet template a design renders onto.
type SheetKind string

const (
	// KindPresentation is the client-facing composite: large plan, perspective,
	// one elevation, one section, title block.
	KindPresentation SheetKind = "presentation"
	// KindTechnical is the drawing-set composite: plan, paired elevations,
	// section and a data panel of schedules.
	KindTechnical SheetKind = "technical"
	// KindSite is the context composite: site snapshot beside plan and
	// perspective panels.
	KindSite SheetKind = "site"
)

// Canvas proportions follow the A1 landscape template the compositor prints
// to; both axes are multiples of 16 so synthesis needs no snapping.
const (
	CanvasWidth  = 1344
	CanvasHeight = 960
)

// GetLayout returns the fixed layout for a sheet kind. Specification values
// select a static variant only (a second floor adds the upper-plan region);
// they never perturb coordinates.
func GetLayout(kind SheetKind, s *spec.DesignSpecification) (*Layout, error) {
	multiFloor := s != nil && s.Envelope.Floors >= 2

	var regions []Region
	switch kind {
	case KindPresentation:
		regions = presentationRegions(multiFloor)
	case KindTechnical:
		regions = technicalRegions(multiFloor)
	case KindSite:
		regions = siteRegions()
	default:
		return nil, fmt.Errorf("unknown sheet kind: %q", kind)
	}

	return &Layout{
		Kind:         kind,
		CanvasWidth:  CanvasWidth,
		CanvasHeight: CanvasHeight,
		Regions:      regions,
	}, nil
}

// Kinds returns every registered sheet kind.
func Kinds() []SheetKind {
	return []SheetKind{KindPresentation, KindTechnical, KindSite}
}

// titleBlock is shared by every template: a full-width strip along the
// bottom edge.
func titleBlock() Region {
	return Region{ID: "title-block", Type: RegionTitleBlock, Rect: FracRect{X: 0.02, Y: 0.86, W: 0.96, H: 0.12}}
}

func presentationRegions(multiFloor bool) []Region {
	var plans []Region
	if multiFloor {
		plans = []Region{
			{ID: "plan-ground", Type: RegionPlan, Rect: FracRect{X: 0.02, Y: 0.02, W: 0.55, H: 0.40}},
			{ID: "plan-upper", Type: RegionPlan, Rect: FracRect{X: 0.02, Y: 0.44, W: 0.55, H: 0.40}},
		}
	} else {
		plans = []Region{
			{ID: "plan-ground", Type: RegionPlan, Rect: FracRect{X: 0.02, Y: 0.02, W: 0.55, H: 0.82}},
		}
	}

	return append(plans,
		Region{ID: "perspective", Type: RegionPerspective, Rect: FracRect{X: 0.59, Y: 0.02, W: 0.39, H: 0.34}},
		Region{ID: "elevation-north", Type: RegionElevation, Rect: FracRect{X: 0.59, Y: 0.38, W: 0.39, H: 0.22}},
		Region{ID: "section-a", Type: RegionSection, Rect: FracRect{X: 0.59, Y: 0.62, W: 0.39, H: 0.22}},
		titleBlock(),
	)
}

func technicalRegions(multiFloor bool) []Region {
	var plans []Region
	if multiFloor {
		plans = []Region{
			{ID: "plan-ground", Type: RegionPlan, Rect: FracRect{X: 0.02, Y: 0.02, W: 0.46, H: 0.26}},
			{ID: "plan-upper", Type: RegionPlan, Rect: FracRect{X: 0.02, Y: 0.30, W: 0.46, H: 0.27}},
		}
	} else {
		plans = []Region{
			{ID: "plan-ground", Type: RegionPlan, Rect: FracRect{X: 0.02, Y: 0.02, W: 0.46, H: 0.55}},
		}
	}

	return append(plans,
		Region{ID: "elevation-north", Type: RegionElevation, Rect: FracRect{X: 0.50, Y: 0.02, W: 0.48, H: 0.26}},
		Region{ID: "elevation-south", Type: RegionElevation, Rect: FracRect{X: 0.50, Y: 0.30, W: 0.48, H: 0.27}},
		Region{ID: "section-a", Type: RegionSection, Rect: FracRect{X: 0.02, Y: 0.59, W: 0.46, H: 0.25}},
		Region{ID: "data-panel", Type: RegionDataPanel, Rect: FracRect{X: 0.50, Y: 0.59, W: 0.48, H: 0.25}},
		titleBlock(),
	)
}

func siteRegions() []Region {
	return []Region{
		{ID: "site-context", Type: RegionSiteContext, Rect: FracRect{X: 0.02, Y: 0.02, W: 0.60, H: 0.82}},
		{ID: "plan-ground", Type: RegionPlan, Rect: FracRect{X: 0.64, Y: 0.02, W: 0.34, H: 0.40}},
		{ID: "perspective", Type: RegionPerspective, Rect: FracRect{X: 0.64, Y: 0.44, W: 0.34, H: 0.40}},
		titleBlock(),
	}
}
