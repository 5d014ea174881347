package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// RegionType is the closed set of panel kinds a sheet region can hold.
type RegionType string

const (
	RegionPlan        RegionType = "plan"
	RegionElevation   RegionType = "elevation"
	RegionSection     RegionType = "section"
	RegionPerspective RegionType = "perspective"
	RegionDataPanel   RegionType = "data-panel"
	RegionTitleBlock  RegionType = "title-block"
	RegionSiteContext RegionType = "site-context"
)

// OverlapTolerance is the largest fractional intersection area two regions of
// the same layout may share.
const OverlapTolerance = 0.005

// FracRect is a rectangle in fractional canvas coordinates (0..1 of width and
// height). Pixels are resolved only at render time.
type FracRect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Intersection returns the overlapping fractional area of two rects.
func (r FracRect) Intersection(other FracRect) float64 {
	w := math.Min(r.X+r.W, other.X+other.W) - math.Max(r.X, other.X)
	h := math.Min(r.Y+r.H, other.Y+other.H) - math.Max(r.Y, other.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Region is a named rectangle on the sheet canvas.
type Region struct {
	ID   string     `json:"id" yaml:"id"`
	Type RegionType `json:"type" yaml:"type"`
	Rect FracRect   `json:"rect" yaml:"rect"`
}

// Layout is the fixed set of named regions for one sheet kind. Static
// configuration, immutable at runtime.
type Layout struct {
	Kind         SheetKind `json:"kind" yaml:"kind"`
	CanvasWidth  int       `json:"canvas_width" yaml:"canvas_width"`
	CanvasHeight int       `json:"canvas_height" yaml:"canvas_height"`
	Regions      []Region  `json:"regions" yaml:"regions"`
}

// Region returns the region with the given identifier.
func (l *Layout) Region(id string) (Region, bool) {
	for _, r := range l.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// RegionIDs returns the identifiers in declaration order.
func (l *Layout) RegionIDs() []string {
	ids := make([]string, len(l.Regions))
	for i, r := range l.Regions {
		ids[i] = r.ID
	}
	return ids
}

// Hash returns a deterministic content hash of the layout.
func (l *Layout) Hash() string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s:%d:%d|", l.Kind, l.CanvasWidth, l.CanvasHeight)
	for _, r := range l.Regions {
		_, _ = fmt.Fprintf(h, "%s:%s:%.6f:%.6f:%.6f:%.6f|", r.ID, r.Type, r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks region rects stay on canvas and no pair overlaps by more
// than the tolerance.
func (l *Layout) Validate() []error {
	var errs []error
	seen := make(map[string]bool, len(l.Regions))
	for _, r := range l.Regions {
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("duplicate region ID: %s", r.ID))
		}
		seen[r.ID] = true
		if r.Rect.X < 0 || r.Rect.Y < 0 || r.Rect.X+r.Rect.W > 1 || r.Rect.Y+r.Rect.H > 1 {
			errs = append(errs, fmt.Errorf("region %s extends beyond canvas", r.ID))
		}
		if r.Rect.W <= 0 || r.Rect.H <= 0 {
			errs = append(errs, fmt.Errorf("region %s has non-positive extent", r.ID))
		}
	}
	for i := 0; i < len(l.Regions); i++ {
		for j := i + 1; j < len(l.Regions); j++ {
			a, b := l.Regions[i], l.Regions[j]
			if area := a.Rect.Intersection(b.Rect); area > OverlapTolerance {
				errs = append(errs, fmt.Errorf("regions %s and %s overlap by %.4f", a.ID, b.ID, area))
			}
		}
	}
	return errs
}

// PixelRect is a resolved integer rectangle in canvas pixels.
type PixelRect struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// PixelRegion pairs a region identifier with its resolved pixel rectangle.
type PixelRegion struct {
	ID   string     `json:"id" yaml:"id"`
	Type RegionType `json:"type" yaml:"type"`
	Rect PixelRect  `json:"rect" yaml:"rect"`
}

// roundHalfUp resolves a fractional coordinate deterministically; 0.5 always
// rounds up so repeated calls yield identical pixels.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ComputePixelRegions resolves the layout's fractional rectangles against a
// concrete canvas size.
func ComputePixelRegions(l *Layout, width, height int) []PixelRegion {
	out := make([]PixelRegion, len(l.Regions))
	for i, r := range l.Regions {
		out[i] = PixelRegion{
			ID:   r.ID,
			Type: r.Type,
			Rect: PixelRect{
				X: roundHalfUp(r.Rect.X * float64(width)),
				Y: roundHalfUp(r.Rect.Y * float64(height)),
				W: roundHalfUp(r.Rect.W * float64(width)),
				H: roundHalfUp(r.Rect.H * float64(height)),
			},
		}
	}
	return out
}
