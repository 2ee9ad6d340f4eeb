package imaging

import (
	"image"

	"github.com/corona10/goimagehash"
)

// duplicateDistance is the maximum dHash Hamming distance below which two
// images are considered perceptually identical.
const duplicateDistance = 10

// Fingerprint is a perceptual hash of an image. The workflow keeps the
// fingerprint of the last tagged image and skips candidates that match it,
// so a stale listing or a double-captured frame is not re-presented.
type Fingerprint struct {
	hash *goimagehash.ImageHash
}

// FingerprintImage hashes a decoded image. Returns nil when hashing fails;
// a nil fingerprint never matches anything, so failures fail open and the
// candidate is still presented.
func FingerprintImage(img image.Image) *Fingerprint {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil
	}
	return &Fingerprint{hash: hash}
}

// Matches reports whether two fingerprints are perceptually identical.
func (f *Fingerprint) Matches(other *Fingerprint) bool {
	if f == nil || other == nil {
		return false
	}
	dist, err := f.hash.Distance(other.hash)
	if err != nil {
		return false
	}
	return dist < duplicateDistance
}
