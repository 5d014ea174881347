package synth

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// MockProvider renders deterministic placeholder sheets to local PNG files.
// The same instruction and seed always produce byte-identical output, which
// makes it usable for offline runs and pipeline tests.
type MockProvider struct {
	Dir string
}

func NewMockProvider(dir string) *MockProvider {
	return &MockProvider{Dir: dir}
}

func (p *MockProvider) ID() string {
	return "mock"
}

func (p *MockProvider) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	return &synth.ReasonResponse{
		Text:  "mock analysis: " + firstLine(req.Prompt),
		Model: "mock",
	}, nil
}

func (p *MockProvider) Synthesize(ctx context.Context, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
	started := time.Now()

	seed := pseudoSeed(req.Instruction)
	if req.Seed != nil {
		seed = *req.Seed
	}
	shade := uint8(seed%192 + 32)

	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	if req.Conditioned() {
		base, err := loadPNG(req.ReferenceImage)
		if err != nil {
			return nil, fmt.Errorf("read reference image: %w", err)
		}
		blendToward(img, base, shade, req.Strength)
	} else {
		fill(img, shade)
	}

	sum := sha256.Sum256([]byte(req.Instruction))
	name := fmt.Sprintf("mock-%d-%x.png", seed, sum[:6])
	ref := filepath.Join(p.Dir, name)
	if err := writePNG(ref, img); err != nil {
		return nil, err
	}

	return &synth.SynthesisResult{
		ImageRef:     ref,
		SeedUsed:     seed,
		Width:        req.Width,
		Height:       req.Height,
		StrengthUsed: req.Strength,
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

// pseudoSeed derives a stable seed when the caller supplies none.
func pseudoSeed(instruction string) int64 {
	sum := sha256.Sum256([]byte(instruction))
	v := int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
	return v
}

func fill(img *image.RGBA, shade uint8) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, color.Gray{Y: shade})
		}
	}
}

// blendToward mixes the reference image with the target shade, weighted by
// strength, clamping to the output bounds.
func blendToward(dst *image.RGBA, src image.Image, shade uint8, strength float64) {
	b := dst.Bounds()
	sb := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var base float64
			if x < sb.Max.X && y < sb.Max.Y {
				r, g, bb, _ := src.At(x, y).RGBA()
				base = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bb)) / 257.0
			}
			v := base*(1-strength) + float64(shade)*strength
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			dst.Set(x, y, color.Gray{Y: uint8(v)})
		}
	}
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only handle
	img, _, err := image.Decode(f)
	return img, err
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close() //nolint:errcheck // encode error takes precedence
		return err
	}
	return f.Close()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
