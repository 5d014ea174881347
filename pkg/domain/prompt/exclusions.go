package prompt

import (
	"fmt"
	"strings"
)

// exclusionEntry weights one known failure mode of the generative model.
// Static configuration; weights are never computed.
type exclusionEntry struct {
	FailureMode string
	Text        string
	Weight      float64
}

// exclusionTable lists the failure modes observed across generation runs,
// heaviest first. Order and weights are fixed so the emitted exclusion text
// is stable.
var exclusionTable = []exclusionEntry{
	{"wrong-opening-count", "wrong number of windows or doors", 1.5},
	{"layout-shifted", "shifted or rearranged panel layout", 1.4},
	{"new-structure", "additional buildings or structures", 1.4},
	{"extra-floors", "extra storeys", 1.3},
	{"wrong-materials", "substituted facade materials", 1.3},
	{"garbled-text", "garbled or illegible annotation text", 1.2},
	{"photo-artifacts", "photographic borders, watermarks, signatures", 1.1},
	{"people-vehicles", "people, vehicles", 1.0},
}

// ExclusionText renders the fixed weighted exclusion string.
func ExclusionText() string {
	parts := make([]string, len(exclusionTable))
	for i, e := range exclusionTable {
		parts[i] = fmt.Sprintf("(%s:%.1f)", e.Text, e.Weight)
	}
	return strings.Join(parts, ", ")
}
