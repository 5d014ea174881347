package spec

import (
	"errors"
	"testing"

	"github.com/atelierworks/sheetwright/pkg/domain"
)

func TestCheckShapeAcceptsNestedAndFlat(t *testing.T) {
	nested := map[string]any{
		"envelope": map[string]any{"length": 15.0, "width": 10.0, "height": 7.0, "floors": 2},
		"openings": map[string]any{"north": 4},
	}
	if err := CheckShape(nested); err != nil {
		t.Errorf("nested shape rejected: %v", err)
	}
	if err := CheckShape(scenarioRaw()); err != nil {
		t.Errorf("flat shape rejected: %v", err)
	}
}

func TestCheckShapeRejectsWrongTypes(t *testing.T) {
	raw := map[string]any{
		"envelope":  "big",
		"materials": "timber",
	}
	err := CheckShape(raw)
	if !errors.Is(err, domain.ErrInvalidSpecification) {
		t.Fatalf("want invalid specification, got %v", err)
	}
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("want typed validation error, got %T", err)
	}
	if len(validation.Violations) < 2 {
		t.Errorf("want every shape violation listed, got %v", validation.Violations)
	}
}
