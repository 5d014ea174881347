package application

import "image"

// ImageReader resolves an artifact image reference to pixel data for drift
// scoring. References are opaque strings; the infrastructure layer decides
// how to dereference them.
type ImageReader interface {
	Read(ref string) (image.Image, error)
}
