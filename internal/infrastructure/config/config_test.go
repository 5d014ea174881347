package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "diffusion" {
		t.Errorf("unexpected default provider: %s", cfg.Provider)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("unexpected default store: %s", cfg.Store.Backend)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	want := Default()
	want.Provider = "mock"
	want.Model = "sdxl-arch"
	want.RateIntervalSeconds = 2
	want.Thresholds = &ThresholdConfig{AcceptCanvas: 0.9}

	if err := Save(root, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Provider != "mock" || got.Model != "sdxl-arch" || got.RateIntervalSeconds != 2 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Thresholds == nil || got.Thresholds.AcceptCanvas != 0.9 {
		t.Errorf("threshold override lost: %+v", got.Thresholds)
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"../evil.yaml", filepath.Join("..", "..", "x"), "/abs.yaml"} {
		if _, err := resolvePath(root, name); err == nil {
			t.Errorf("traversal not rejected: %q", name)
		}
	}
}
