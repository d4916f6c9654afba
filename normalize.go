package katana

import (
	"fmt"
	"math/bits"
)

// PaddedSize returns the side of the smallest power-of-two square holding an
// h×w image.
func PaddedSize(h, w int) int {
	n := max(h, w)
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// ceilLog2 returns ceil(log2(n)) for n >= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Pad zero-pads the bottom and right edges to the PaddedSize square.
func Pad(im *Image) (*Image, error) {
	if im == nil || im.H <= 0 || im.W <= 0 {
		return nil, ErrDegenerateImage
	}
	n := PaddedSize(im.H, im.W)
	return PadTo(im, n, n)
}

// Unpad crops the top-left h×w region, undoing Pad.
func Unpad(im *Image, h, w int) (*Image, error) {
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: unpad to %dx%d", ErrDegenerateImage, w, h)
	}
	return Crop(im, 0, 0, h, w)
}
