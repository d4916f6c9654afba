package katana

import "fmt"

// Epsilon keeps the multiply and screen inverses finite where the coarse
// level is 0 (multiply) or 1 (screen).
const Epsilon = 0.001

// inverseFunc returns the per-sample inverse for mode: given the upscaled
// coarse value a and the fine value b, the value that composites onto a to
// give b.
func inverseFunc(mode BlendMode) (func(a, b float64) float64, error) {
	switch mode {
	case Multiply:
		return func(a, b float64) float64 { return b / (a + Epsilon) }, nil
	case Screen:
		return func(a, b float64) float64 { return 1 - (1-b)/(1-a+Epsilon) }, nil
	case Darken:
		// min() has no inverse; 1 is the identity wherever a already equals b.
		return func(a, b float64) float64 {
			if a > b {
				return b
			}
			return 1
		}, nil
	case Lighten:
		return func(a, b float64) float64 {
			if b > a {
				return b
			}
			return 0
		}, nil
	case PlusLighter:
		return func(a, b float64) float64 { return b - a }, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidBlendMode, mode)
}

// Solve computes the inbetween layer that, composited onto the upscaled
// coarse level a under mode, reproduces the fine level b. The result is
// clamped to [0,1].
func Solve(a, b *Image, mode BlendMode) (*Image, error) {
	inv, err := inverseFunc(mode)
	if err != nil {
		return nil, err
	}
	out, err := zipPlanes(a, b, inv)
	if err != nil {
		return nil, fmt.Errorf("solve %v: %w", mode, err)
	}
	Clamp(out, 0, 1)
	out.Range = UnitRange
	return out, nil
}
