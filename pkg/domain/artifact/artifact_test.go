package artifact

import (
	"strings"
	"testing"

	"github.com/atelierworks/sheetwright/pkg/domain/spec"
)

func TestVersionKeyFormat(t *testing.T) {
	key := VersionKey("villa-k", "sheet-a", 3)
	if key != "design/villa-k/sheet/sheet-a/v000003" {
		t.Errorf("unexpected key: %s", key)
	}
	if !strings.HasPrefix(key, KeyPrefix("villa-k", "sheet-a")) {
		t.Error("key does not share the listing prefix")
	}
}

func TestVersionKeysSortInVersionOrder(t *testing.T) {
	// Zero-padded versions must sort lexically so prefix scans return
	// versions oldest-first.
	if VersionKey("d", "s", 9) >= VersionKey("d", "s", 10) {
		t.Error("v9 does not sort before v10")
	}
	if VersionKey("d", "s", 99) >= VersionKey("d", "s", 100) {
		t.Error("v99 does not sort before v100")
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	a := &BaselineArtifact{DesignID: "d", SheetID: "s", Version: 1, ImageRef: "a.png", Seed: 42}
	same := &BaselineArtifact{DesignID: "d", SheetID: "s", Version: 1, ImageRef: "a.png", Seed: 42}
	if a.Fingerprint() != same.Fingerprint() {
		t.Error("identical artifacts have different fingerprints")
	}

	changed := same.Clone()
	changed.ImageRef = "b.png"
	if a.Fingerprint() == changed.Fingerprint() {
		t.Error("content change did not move the fingerprint")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := &BaselineArtifact{
		DesignID: "d", SheetID: "s", Version: 1,
		Specification: spec.DesignSpecification{
			Materials: []spec.Material{{Category: "cladding", Name: "timber"}},
			Metadata:  map[string]string{"project": "villa"},
		},
	}
	c := a.Clone()
	c.Specification.Materials[0].Name = "brick"
	c.Specification.Metadata["project"] = "tower"

	if a.Specification.Materials[0].Name != "timber" {
		t.Error("clone shares the materials slice")
	}
	if a.Specification.Metadata["project"] != "villa" {
		t.Error("clone shares the metadata map")
	}
}

func TestModificationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ModificationRequest
		wantErr string
	}{
		{
			name: "valid with change text",
			req:  ModificationRequest{DesignID: "d1", SheetID: "s1", Change: "swap cladding"},
		},
		{
			name: "valid with toggle only",
			req:  ModificationRequest{DesignID: "d1", SheetID: "s1", Toggles: []Toggle{ToggleRelight}},
		},
		{
			name:    "missing change and toggles",
			req:     ModificationRequest{DesignID: "d1", SheetID: "s1"},
			wantErr: "change description",
		},
		{
			name:    "unknown toggle",
			req:     ModificationRequest{DesignID: "d1", SheetID: "s1", Toggles: []Toggle{"repaint"}},
			wantErr: "unknown toggle",
		},
		{
			name:    "unsafe design id",
			req:     ModificationRequest{DesignID: "d1/evil", SheetID: "s1", Change: "x"},
			wantErr: "design ID",
		},
		{
			name: "strength out of range",
			req: ModificationRequest{DesignID: "d1", SheetID: "s1", Change: "x",
				Strength: func() *float64 { v := 1.5; return &v }()},
			wantErr: "strength",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error containing %q in %v", tt.wantErr, errs)
			}
		})
	}
}
