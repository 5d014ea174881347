package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atelierworks/sheetwright/pkg/domain/layout"
	"github.com/atelierworks/sheetwright/pkg/domain/spec"
)

// BaselineArtifact is the immutable bundle the whole pipeline is built to
// protect. Written exactly once per successful generate; superseded, never
// mutated, by versions written on successful modify.
type BaselineArtifact struct {
	DesignID      string                   `json:"design_id" yaml:"design_id"`
	SheetID       string                   `json:"sheet_id" yaml:"sheet_id"`
	Version       int                      `json:"version" yaml:"version"`
	ImageRef      string                   `json:"image_ref" yaml:"image_ref"`
	Specification spec.DesignSpecification `json:"specification" yaml:"specification"`
	Layout        layout.Layout            `json:"layout" yaml:"layout"`
	Seed          int64                    `json:"seed" yaml:"seed"`
	BasePrompt    string                   `json:"base_prompt" yaml:"base_prompt"`
	SpecHash      string                   `json:"spec_hash" yaml:"spec_hash"`
	LayoutHash    string                   `json:"layout_hash" yaml:"layout_hash"`
	CapturedAt    time.Time                `json:"captured_at" yaml:"captured_at"`
}

// Key returns the storage key for this artifact version.
func (a *BaselineArtifact) Key() string {
	return VersionKey(a.DesignID, a.SheetID, a.Version)
}

// VersionKey derives the storage key for a specific version of a sheet.
func VersionKey(designID, sheetID string, version int) string {
	return fmt.Sprintf("%sv%06d", KeyPrefix(designID, sheetID), version)
}

// KeyPrefix derives the key prefix shared by all versions of a sheet.
func KeyPrefix(designID, sheetID string) string {
	return fmt.Sprintf("design/%s/sheet/%s/", designID, sheetID)
}

// Fingerprint returns a content digest used to detect conflicting writes to
// the same key.
func (a *BaselineArtifact) Fingerprint() string {
	data, err := json.Marshal(a)
	if err != nil {
		// Marshalling a value type of plain fields cannot fail in practice;
		// degrade to an empty fingerprint rather than panic.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy so callers can never reach the stored value.
func (a *BaselineArtifact) Clone() *BaselineArtifact {
	out := *a
	out.Specification.Materials = append([]spec.Material(nil), a.Specification.Materials...)
	out.Specification.Metadata = make(map[string]string, len(a.Specification.Metadata))
	for k, v := range a.Specification.Metadata {
		out.Specification.Metadata[k] = v
	}
	out.Layout.Regions = append([]layout.Region(nil), a.Layout.Regions...)
	return &out
}
