package spec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// WeightTolerance is the allowed deviation of the style-weight sum from 1.0.
const WeightTolerance = 1e-6

// Envelope describes the dimensional envelope of the design in metres.
type Envelope struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Floors int     `json:"floors" yaml:"floors"`
}

// FloorArea returns the footprint area multiplied by the floor count.
func (e Envelope) FloorArea() float64 {
	return e.Length * e.Width * float64(e.Floors)
}

// Material is a single entry of the per-category material list.
type Material struct {
	Category string `json:"category" yaml:"category"`
	Name     string `json:"name" yaml:"name"`
	Color    string `json:"color" yaml:"color"`
	Region   string `json:"region" yaml:"region"` // region of application, e.g. "walls"
}

// Structure describes the structural system and roof form.
type Structure struct {
	System    string  `json:"system" yaml:"system"`
	RoofForm  string  `json:"roof_form" yaml:"roof_form"`
	RoofPitch float64 `json:"roof_pitch" yaml:"roof_pitch"` // degrees
}

// Openings holds the per-orientation opening counts. Exactly four
// orientations; Total must equal their sum.
type Openings struct {
	North int `json:"north" yaml:"north"`
	South int `json:"south" yaml:"south"`
	East  int `json:"east" yaml:"east"`
	West  int `json:"west" yaml:"west"`
	Total int `json:"total" yaml:"total"`
}

// Sum returns the sum of the four per-orientation counts.
func (o Openings) Sum() int {
	return o.North + o.South + o.East + o.West
}

// StyleWeights is the local/portfolio weighting pair. The two weights sum to
// 1.0 within WeightTolerance.
type StyleWeights struct {
	Local     float64 `json:"local" yaml:"local"`
	Portfolio float64 `json:"portfolio" yaml:"portfolio"`
}

// DesignSpecification is the canonical, content-addressable description of a
// design. Values are constructed once by Normalize and never mutated in
// place; a changed specification is a new value with a new hash.
type DesignSpecification struct {
	Envelope     Envelope          `json:"envelope" yaml:"envelope"`
	Materials    []Material        `json:"materials" yaml:"materials"`
	Structure    Structure         `json:"structure" yaml:"structure"`
	Openings     Openings          `json:"openings" yaml:"openings"`
	StyleWeights StyleWeights      `json:"style_weights" yaml:"style_weights"`
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
}

// Hash returns a deterministic content hash of the specification. Materials
// and metadata are hashed in sorted order so field arrangement in the input
// never changes the digest.
func (s *DesignSpecification) Hash() string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "env:%g:%g:%g:%d|", s.Envelope.Length, s.Envelope.Width, s.Envelope.Height, s.Envelope.Floors)
	_, _ = fmt.Fprintf(h, "struct:%s:%s:%g|", s.Structure.System, s.Structure.RoofForm, s.Structure.RoofPitch)
	_, _ = fmt.Fprintf(h, "open:%d:%d:%d:%d:%d|", s.Openings.North, s.Openings.South, s.Openings.East, s.Openings.West, s.Openings.Total)
	_, _ = fmt.Fprintf(h, "style:%.9f:%.9f|", s.StyleWeights.Local, s.StyleWeights.Portfolio)

	mats := make([]Material, len(s.Materials))
	copy(mats, s.Materials)
	sort.Slice(mats, func(i, j int) bool {
		if mats[i].Category != mats[j].Category {
			return mats[i].Category < mats[j].Category
		}
		return mats[i].Name < mats[j].Name
	})
	for _, m := range mats {
		_, _ = fmt.Fprintf(h, "mat:%s:%s:%s:%s|", m.Category, m.Name, m.Color, m.Region)
	}

	keys := make([]string, 0, len(s.Metadata))
	for k := range s.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(h, "meta:%s:%s|", k, s.Metadata[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks every invariant and returns all violations, not just the
// first.
func (s *DesignSpecification) Validate() []error {
	var errs []error

	checkFinite := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be finite", name))
		} else if v < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %g", name, v))
		}
	}

	checkFinite("envelope.length", s.Envelope.Length)
	checkFinite("envelope.width", s.Envelope.Width)
	checkFinite("envelope.height", s.Envelope.Height)
	checkFinite("structure.roof_pitch", s.Structure.RoofPitch)
	if s.Envelope.Floors < 1 {
		errs = append(errs, fmt.Errorf("envelope.floors must be at least 1, got %d", s.Envelope.Floors))
	}

	orientations := []struct {
		name  string
		count int
	}{
		{"openings.north", s.Openings.North},
		{"openings.south", s.Openings.South},
		{"openings.east", s.Openings.East},
		{"openings.west", s.Openings.West},
		{"openings.total", s.Openings.Total},
	}
	for _, o := range orientations {
		if o.count < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", o.name, o.count))
		}
	}
	if s.Openings.Sum() != s.Openings.Total {
		errs = append(errs, fmt.Errorf("openings.total is %d but per-orientation counts sum to %d", s.Openings.Total, s.Openings.Sum()))
	}

	checkFinite("style_weights.local", s.StyleWeights.Local)
	checkFinite("style_weights.portfolio", s.StyleWeights.Portfolio)
	sum := s.StyleWeights.Local + s.StyleWeights.Portfolio
	if math.Abs(sum-1.0) > WeightTolerance {
		errs = append(errs, fmt.Errorf("style weights must sum to 1.0, got %g", sum))
	}

	for i, m := range s.Materials {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("materials[%d] missing name", i))
		}
		if m.Category == "" {
			errs = append(errs, fmt.Errorf("materials[%d] missing category", i))
		}
	}

	return errs
}

// Equal reports whether two specifications carry the same canonical content.
func (s *DesignSpecification) Equal(other *DesignSpecification) bool {
	if other == nil {
		return false
	}
	return s.Hash() == other.Hash()
}
