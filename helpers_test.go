package katana

import (
	"math"
	"math/rand/v2"
	"testing"
)

func constImage(h, w, c int, v float64) *Image {
	im := NewImage(h, w, c, UnitRange)
	for _, p := range im.Planes {
		p.Apply(func(_, _ int, _ float64) float64 { return v }, p)
	}
	return im
}

func randomImage(rng *rand.Rand, h, w, c int) *Image {
	im := NewImage(h, w, c, UnitRange)
	for _, p := range im.Planes {
		p.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, p)
	}
	return im
}

// maxAbsDiff returns the largest per-sample difference between two images.
func maxAbsDiff(t *testing.T, a, b *Image) float64 {
	t.Helper()
	if err := sameShape(a, b); err != nil {
		t.Fatalf("maxAbsDiff: %v", err)
	}
	worst := 0.0
	for c := range a.Planes {
		for y := range a.H {
			for x := range a.W {
				worst = math.Max(worst, math.Abs(a.At(y, x, c)-b.At(y, x, c)))
			}
		}
	}
	return worst
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}
