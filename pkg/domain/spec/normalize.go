package spec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atelierworks/sheetwright/pkg/domain"
)

// Documented defaults applied during normalization.
const (
	DefaultFloors      = 1
	DefaultRoofForm    = "gable"
	DefaultRoofPitch   = 35.0
	DefaultSystem      = "timber frame"
	DefaultColor       = "natural"
	DefaultApplyRegion = "exterior"
)

// Normalize coerces an arbitrary loosely-typed object into a canonical
// DesignSpecification. Missing fields receive documented defaults; every
// violated invariant is reported, not just the first. Normalization is
// idempotent: feeding the output's map form back in yields an equal value.
func Normalize(raw map[string]any) (*DesignSpecification, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	s := &DesignSpecification{
		Envelope:     normalizeEnvelope(raw),
		Materials:    normalizeMaterials(raw),
		Structure:    normalizeStructure(raw),
		Openings:     normalizeOpenings(raw),
		StyleWeights: normalizeStyleWeights(raw),
		Metadata:     normalizeMetadata(raw),
	}

	if errs := s.Validate(); len(errs) > 0 {
		violations := make([]string, len(errs))
		for i, e := range errs {
			violations[i] = e.Error()
		}
		return nil, &domain.ValidationError{Violations: violations}
	}

	return s, nil
}

// ToMap renders the canonical map form of the specification. Normalizing the
// result yields a value equal to the receiver.
func (s *DesignSpecification) ToMap() map[string]any {
	materials := make([]any, 0, len(s.Materials))
	for _, m := range s.Materials {
		materials = append(materials, map[string]any{
			"category": m.Category,
			"name":     m.Name,
			"color":    m.Color,
			"region":   m.Region,
		})
	}

	metadata := map[string]any{}
	for k, v := range s.Metadata {
		metadata[k] = v
	}

	return map[string]any{
		"envelope": map[string]any{
			"length": s.Envelope.Length,
			"width":  s.Envelope.Width,
			"height": s.Envelope.Height,
			"floors": s.Envelope.Floors,
		},
		"materials": materials,
		"structure": map[string]any{
			"system":     s.Structure.System,
			"roof_form":  s.Structure.RoofForm,
			"roof_pitch": s.Structure.RoofPitch,
		},
		"openings": map[string]any{
			"north": s.Openings.North,
			"south": s.Openings.South,
			"east":  s.Openings.East,
			"west":  s.Openings.West,
			"total": s.Openings.Total,
		},
		"style_weights": map[string]any{
			"local":     s.StyleWeights.Local,
			"portfolio": s.StyleWeights.Portfolio,
		},
		"metadata": metadata,
	}
}

func normalizeEnvelope(raw map[string]any) Envelope {
	src := subMap(raw, "envelope")
	if src == nil {
		src = raw // flat shape: length/width/height/floors at top level
	}

	env := Envelope{
		Length: floatField(src, 0, "length"),
		Width:  floatField(src, 0, "width"),
		Height: floatField(src, 0, "height"),
		Floors: intField(src, DefaultFloors, "floors", "floor_count", "floorCount"),
	}
	return env
}

func normalizeMaterials(raw map[string]any) []Material {
	list, ok := raw["materials"].([]any)
	if !ok {
		return nil
	}

	out := make([]Material, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		mat := Material{
			Category: stringField(m, "", "category"),
			Name:     stringField(m, "", "name"),
			Color:    stringField(m, DefaultColor, "color", "colour"),
			Region:   stringField(m, DefaultApplyRegion, "region"),
		}
		out = append(out, mat)
	}
	return out
}

func normalizeStructure(raw map[string]any) Structure {
	src := subMap(raw, "structure")
	roof := subMap(raw, "roof")

	st := Structure{
		System:    DefaultSystem,
		RoofForm:  DefaultRoofForm,
		RoofPitch: DefaultRoofPitch,
	}
	if src != nil {
		st.System = stringField(src, DefaultSystem, "system")
		st.RoofForm = stringField(src, DefaultRoofForm, "roof_form", "roofForm", "roof")
		st.RoofPitch = floatField(src, DefaultRoofPitch, "roof_pitch", "roofPitch", "pitch")
	}
	if roof != nil {
		st.RoofForm = stringField(roof, st.RoofForm, "form", "type")
		st.RoofPitch = floatField(roof, st.RoofPitch, "pitch")
	}
	return st
}

func normalizeOpenings(raw map[string]any) Openings {
	src := subMap(raw, "openings")
	if src == nil {
		return Openings{}
	}

	o := Openings{
		North: intField(src, 0, "north", "N", "n"),
		South: intField(src, 0, "south", "S", "s"),
		East:  intField(src, 0, "east", "E", "e"),
		West:  intField(src, 0, "west", "W", "w"),
	}
	if v, ok := lookup(src, "total"); ok {
		if t, ok := toInt(v); ok {
			o.Total = t
			return o
		}
	}
	// Missing total defaults to the per-orientation sum.
	o.Total = o.Sum()
	return o
}

func normalizeStyleWeights(raw map[string]any) StyleWeights {
	src := subMap(raw, "style_weights", "styleWeights", "styleWeighting")
	if src == nil {
		return StyleWeights{Local: 0.5, Portfolio: 0.5}
	}

	local, hasLocal := lookupFloat(src, "local")
	portfolio, hasPortfolio := lookupFloat(src, "portfolio")

	switch {
	case !hasLocal && !hasPortfolio:
		return StyleWeights{Local: 0.5, Portfolio: 0.5}
	case hasLocal && !hasPortfolio:
		portfolio = 1.0 - local
	case !hasLocal && hasPortfolio:
		local = 1.0 - portfolio
	}

	// Rescale exact when the pair is within tolerance so repeated
	// normalization is stable. Pairs outside tolerance are left for Validate.
	sum := local + portfolio
	if sum > 0 && math.Abs(sum-1.0) <= WeightTolerance {
		local /= sum
		portfolio /= sum
	}
	return StyleWeights{Local: local, Portfolio: portfolio}
}

func normalizeMetadata(raw map[string]any) map[string]string {
	out := map[string]string{}
	src := subMap(raw, "metadata")
	if src == nil {
		return out
	}
	for k, v := range src {
		switch t := v.(type) {
		case string:
			out[k] = t
		case bool:
			out[k] = strconv.FormatBool(t)
		case int:
			out[k] = strconv.Itoa(t)
		case int64:
			out[k] = strconv.FormatInt(t, 10)
		case float64:
			out[k] = strconv.FormatFloat(t, 'g', -1, 64)
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}

func subMap(raw map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func lookupFloat(m map[string]any, keys ...string) (float64, bool) {
	v, ok := lookup(m, keys...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func floatField(m map[string]any, def float64, keys ...string) float64 {
	if v, ok := lookupFloat(m, keys...); ok {
		return v
	}
	return def
}

func intField(m map[string]any, def int, keys ...string) int {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	if i, ok := toInt(v); ok {
		return i
	}
	return def
}

func stringField(m map[string]any, def string, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
		return 0, false
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	default:
		return 0, false
	}
}
