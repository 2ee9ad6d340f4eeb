// Package imaging holds the pure image analysis used by the tagging
// workflow: the darkness filter, capture-time extraction and perceptual
// fingerprints for duplicate detection.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/webp"
)

// DefaultBrightnessThreshold is the perceived-brightness cutoff below which a
// cat-flap image is too dark to tag. Tuned against night-time sample captures.
const DefaultBrightnessThreshold = 25.0

// Weights for perceived brightness, per http://alienryderflex.com/hsp.html:
// the degrees to which each primary affects human perception of brightness.
const (
	weightR = 0.299
	weightG = 0.587
	weightB = 0.114
)

// Brightness computes the perceived brightness of an image on a 0..255 scale:
// sqrt(0.299*r² + 0.587*g² + 0.114*b²) over the per-channel means.
func Brightness(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var sumR, sumG, sumB float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sumR += float64(r >> 8)
			sumG += float64(g >> 8)
			sumB += float64(b >> 8)
		}
	}

	n := float64(pixels)
	meanR := sumR / n
	meanG := sumG / n
	meanB := sumB / n

	return math.Sqrt(weightR*meanR*meanR + weightG*meanG*meanG + weightB*meanB*meanB)
}

// IsTooDark reports whether the encoded image is at or below the brightness
// threshold. An image that cannot be decoded is treated as too dark: it fails
// safe by exclusion instead of reaching the user or raising.
func IsTooDark(data []byte, threshold float64) bool {
	img, err := Decode(data)
	if err != nil {
		return true
	}
	return Brightness(img) <= threshold
}

// Decode decodes jpeg, png, gif or webp bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
