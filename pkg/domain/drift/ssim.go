package drift

import (
	"image"
)

// SSIM constants for 8-bit luma (Wang et al. defaults).
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)

	// Block size for the structural comparison. Non-overlapping blocks keep
	// the score deterministic and cheap.
	ssimBlock = 8
)

// grayPlane is a decoded image reduced to a float64 luma plane.
type grayPlane struct {
	w, h int
	pix  []float64
}

func newGrayPlane(img image.Image) *grayPlane {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	p := &grayPlane{w: w, h: h, pix: make([]float64, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// BT.601 luma on 16-bit channel values, scaled to 0..255.
			p.pix[y*w+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
	}
	return p
}

func (p *grayPlane) at(x, y int) float64 {
	return p.pix[y*p.w+x]
}

// ssimPlanes computes the mean structural similarity of two luma planes over
// a rectangle, averaging non-overlapping blocks. 1 means identical.
func ssimPlanes(a, b *grayPlane, rect image.Rectangle) float64 {
	r := rect.Intersect(image.Rect(0, 0, min(a.w, b.w), min(a.h, b.h)))
	if r.Empty() {
		return 0
	}

	total, blocks := 0.0, 0
	for by := r.Min.Y; by < r.Max.Y; by += ssimBlock {
		for bx := r.Min.X; bx < r.Max.X; bx += ssimBlock {
			x1 := min(bx+ssimBlock, r.Max.X)
			y1 := min(by+ssimBlock, r.Max.Y)
			total += ssimBlockScore(a, b, bx, by, x1, y1)
			blocks++
		}
	}
	if blocks == 0 {
		return 0
	}
	return total / float64(blocks)
}

func ssimBlockScore(a, b *grayPlane, x0, y0, x1, y1 int) float64 {
	n := float64((x1 - x0) * (y1 - y0))
	if n == 0 {
		return 0
	}

	var sumA, sumB float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sumA += a.at(x, y)
			sumB += b.at(x, y)
		}
	}
	muA, muB := sumA/n, sumB/n

	var varA, varB, cov float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			da := a.at(x, y) - muA
			db := b.at(x, y) - muB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n
	varB /= n
	cov /= n

	num := (2*muA*muB + ssimC1) * (2*cov + ssimC2)
	den := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}
