package synth

import "testing"

func TestSnapDimension(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 16},
		{1, 16},
		{8, 16},
		{16, 16},
		{23, 16},
		{24, 32},
		{1344, 1344},
		{1337, 1344},
		{1330, 1328},
	}
	for _, c := range cases {
		if got := SnapDimension(c.in); got != c.want {
			t.Errorf("SnapDimension(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClampStrength(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.0, MinStrength},
		{0.05, MinStrength},
		{0.08, 0.08},
		{0.15, 0.15},
		{0.22, 0.22},
		{0.5, MaxStrength},
		{1.0, MaxStrength},
	}
	for _, c := range cases {
		if got := ClampStrength(c.in); got != c.want {
			t.Errorf("ClampStrength(%g) = %g, want %g", c.in, got, c.want)
		}
	}
}

func TestPresets(t *testing.T) {
	if GeneratePreset.Steps <= ModifyPreset.Steps {
		t.Error("generation should use a higher fidelity preset than modification")
	}
	if DefaultModifyStrength < MinStrength || DefaultModifyStrength > MaxStrength {
		t.Error("default modify strength must sit inside the safe band")
	}
}
