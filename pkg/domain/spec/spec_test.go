package spec

import (
	"errors"
	"strings"
	"testing"

	"github.com/atelierworks/sheetwright/pkg/domain"
)

func scenarioRaw() map[string]any {
	return map[string]any{
		"length": 15.0,
		"width":  10.0,
		"height": 7.0,
		"floors": 2,
		"openings": map[string]any{
			"N": 4, "S": 3, "E": 2, "W": 2, "total": 11,
		},
		"styleWeights": map[string]any{
			"local": 0.9, "portfolio": 0.1,
		},
	}
}

func TestNormalize_Defaults(t *testing.T) {
	s, err := Normalize(map[string]any{
		"length": 12.0, "width": 8.0, "height": 6.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Envelope.Floors != DefaultFloors {
		t.Errorf("expected default floors %d, got %d", DefaultFloors, s.Envelope.Floors)
	}
	if s.StyleWeights.Local != 0.5 || s.StyleWeights.Portfolio != 0.5 {
		t.Errorf("expected default style weights 0.5/0.5, got %v", s.StyleWeights)
	}
	if s.Structure.RoofForm != DefaultRoofForm {
		t.Errorf("expected default roof form %q, got %q", DefaultRoofForm, s.Structure.RoofForm)
	}
	if s.Metadata == nil {
		t.Error("expected non-nil metadata map")
	}
}

func TestNormalize_OpeningTotalDerived(t *testing.T) {
	s, err := Normalize(map[string]any{
		"length": 10.0, "width": 10.0, "height": 5.0,
		"openings": map[string]any{"north": 2, "south": 1, "east": 1, "west": 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Openings.Total != 4 {
		t.Errorf("expected derived total 4, got %d", s.Openings.Total)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := Normalize(scenarioRaw())
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	second, err := Normalize(first.ToMap())
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("normalize is not idempotent: %s != %s", first.Hash(), second.Hash())
	}
}

func TestNormalize_CollectsAllViolations(t *testing.T) {
	_, err := Normalize(map[string]any{
		"length": -3.0,
		"width":  -1.0,
		"height": 5.0,
		"openings": map[string]any{
			"north": 2, "south": 2, "east": 0, "west": 0, "total": 9,
		},
		"styleWeights": map[string]any{"local": 0.8, "portfolio": 0.8},
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !errors.Is(err, domain.ErrInvalidSpecification) {
		t.Fatalf("expected ErrInvalidSpecification, got %v", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Violations) < 4 {
		t.Errorf("expected every violation reported, got %d: %v", len(verr.Violations), verr.Violations)
	}

	msg := err.Error()
	for _, want := range []string{"envelope.length", "envelope.width", "openings.total", "style weights"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected violation mentioning %q in %q", want, msg)
		}
	}
}

func TestHash_IgnoresFieldArrangement(t *testing.T) {
	a := &DesignSpecification{
		Envelope: Envelope{Length: 10, Width: 8, Height: 6, Floors: 1},
		Materials: []Material{
			{Category: "walls", Name: "brick", Color: "red", Region: "exterior"},
			{Category: "roof", Name: "slate", Color: "grey", Region: "roof"},
		},
		StyleWeights: StyleWeights{Local: 0.5, Portfolio: 0.5},
		Metadata:     map[string]string{"site": "north slope", "client": "ab"},
	}
	b := &DesignSpecification{
		Envelope: a.Envelope,
		Materials: []Material{
			{Category: "roof", Name: "slate", Color: "grey", Region: "roof"},
			{Category: "walls", Name: "brick", Color: "red", Region: "exterior"},
		},
		StyleWeights: a.StyleWeights,
		Metadata:     map[string]string{"client": "ab", "site": "north slope"},
	}

	if a.Hash() != b.Hash() {
		t.Error("hash should not depend on material or metadata ordering")
	}
}

func TestHash_ChangesWithContent(t *testing.T) {
	s, err := Normalize(scenarioRaw())
	if err != nil {
		t.Fatal(err)
	}

	raw := scenarioRaw()
	raw["length"] = 16.0
	changed, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	if s.Hash() == changed.Hash() {
		t.Error("expected different hash after changing length")
	}
}

func TestStyleWeights_Complement(t *testing.T) {
	s, err := Normalize(map[string]any{
		"length": 10.0, "width": 10.0, "height": 4.0,
		"styleWeights": map[string]any{"local": 0.7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := s.StyleWeights.Portfolio - 0.3; diff > WeightTolerance || diff < -WeightTolerance {
		t.Errorf("expected complement 0.3, got %g", s.StyleWeights.Portfolio)
	}
	if sum := s.StyleWeights.Local + s.StyleWeights.Portfolio; sum != 1 {
		t.Errorf("weights not rescaled to an exact sum of 1, got %g", sum)
	}
}

func TestValidate_FloorsAndOpenings(t *testing.T) {
	s := &DesignSpecification{
		Envelope:     Envelope{Length: 1, Width: 1, Height: 1, Floors: 0},
		Openings:     Openings{North: -1, Total: 3},
		StyleWeights: StyleWeights{Local: 1},
	}
	errs := s.Validate()
	if len(errs) < 3 {
		t.Errorf("expected at least 3 violations, got %d: %v", len(errs), errs)
	}
}
