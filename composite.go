package katana

import "fmt"

// Stack is the finished decomposition handed to a renderer: layers in
// composition order, all sized Width×Height and sharing Mode.
type Stack struct {
	Layers []*Image
	Mode   BlendMode
	Width  int
	Height int
	// Seed that drove the shuffle.
	Seed uint64
}

// Composite blends the layers bottom -> top with the stack's mode.
func (s *Stack) Composite() (*Image, error) {
	return Composite(s.Layers, s.Mode)
}

// Composite blends layers in index order with mode, starting from layer 0.
func Composite(layers []*Image, mode BlendMode) (*Image, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlendMode, mode)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: empty layer stack", ErrDegenerateImage)
	}
	out := layers[0].Clone()
	for i, l := range layers[1:] {
		if err := sameShape(out, l); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		for c, p := range out.Planes {
			top := l.Planes[c]
			p.Apply(func(y, x int, v float64) float64 {
				return mode.Blend(v, top.At(y, x))
			}, p)
		}
	}
	return out, nil
}
