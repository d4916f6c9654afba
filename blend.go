package katana

import (
	"fmt"
	"strings"
)

// BlendMode is the pointwise compositing rule shared by pyramid
// construction, inverse solving and final rendering.
type BlendMode int

const (
	// Multiply composites as a*b.
	Multiply BlendMode = iota
	// Screen composites as 1-(1-a)(1-b).
	Screen
	// Darken composites as min(a, b).
	Darken
	// Lighten composites as max(a, b).
	Lighten
	// PlusLighter composites as min(1, a+b).
	PlusLighter
)

// BlendModes lists every supported mode in declaration order.
var BlendModes = []BlendMode{Multiply, Screen, Darken, Lighten, PlusLighter}

var blendModeNames = [...]string{
	Multiply:    "multiply",
	Screen:      "screen",
	Darken:      "darken",
	Lighten:     "lighten",
	PlusLighter: "plus-lighter",
}

// ParseBlendMode maps a CSS mix-blend-mode name to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range blendModeNames {
		if n == name {
			return BlendMode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBlendMode, s)
}

// Valid reports whether m is one of the supported modes.
func (m BlendMode) Valid() bool {
	return m >= Multiply && m <= PlusLighter
}

func (m BlendMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
	return blendModeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlendMode, int(m))
	}
	return []byte(blendModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(b []byte) error {
	v, err := ParseBlendMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// reducesWithMax reports whether pixellation keeps the brightest value of a
// chunk. Modes that can only darken need a bright base, the others a dark one.
func (m BlendMode) reducesWithMax() bool {
	switch m {
	case Multiply, Darken:
		return true
	default:
		return false
	}
}

// Blend composites a single channel value b onto a.
func (m BlendMode) Blend(a, b float64) float64 {
	switch m {
	case Multiply:
		return a * b
	case Screen:
		return 1 - (1-a)*(1-b)
	case Darken:
		return min(a, b)
	case Lighten:
		return max(a, b)
	case PlusLighter:
		return min(1, a+b)
	default:
		panic(fmt.Sprintf("katana: Blend with %v", m))
	}
}
