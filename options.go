package katana

import (
	"fmt"
	"image"
	"log/slog"
)

// MaxLayers is the layer count OptionsFromSize aims to stay under.
const MaxLayers = 12

type Options struct {
	// Blend mode shared by pyramid, inverse solve and rendering.
	Mode BlendMode
	// Number of random block swaps after decomposition. 0 disables shuffling.
	// The swaps leave the composite unchanged but scatter each layer's content.
	ShuffleCount int
	// Depth step between pyramid levels, in powers of two. 1 doubles the side
	// at every level; larger values give fewer layers with bigger jumps.
	LayerRatio int
	// Coarsest pyramid depth. 1 starts from a 2x2 level.
	MinDepth int
	// 0 runs every stage sequentially; > 0 bounds the worker count; < 0 uses GOMAXPROCS.
	Workers int
	// Shuffle seed. 0 draws a random seed per run.
	Seed uint64
	// Optional. nil logs nothing.
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Mode:         Screen,
		ShuffleCount: 20,
		LayerRatio:   1,
		MinDepth:     1,
	}
}

// OptionsFromSize raises LayerRatio so the pyramid of a size-sized image has
// at most MaxLayers levels, and scales ShuffleCount with the layer count.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	n := ceilLog2(PaddedSize(size.Y, size.X))
	for len(LODDepths(1<<n, opt.LayerRatio, opt.MinDepth)) > MaxLayers {
		opt.LayerRatio++
	}
	layers := len(LODDepths(1<<n, opt.LayerRatio, opt.MinDepth))
	opt.ShuffleCount = max(opt.ShuffleCount, layers*4)
	return opt
}

// Validate reports configuration errors before any computation starts.
func (o Options) Validate() error {
	if !o.Mode.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidBlendMode, o.Mode)
	}
	if o.ShuffleCount < 0 {
		return fmt.Errorf("katana: negative shuffle count %d", o.ShuffleCount)
	}
	if o.LayerRatio < 1 {
		return fmt.Errorf("katana: layer ratio %d is below 1", o.LayerRatio)
	}
	if o.MinDepth < 0 {
		return fmt.Errorf("katana: negative minimum depth %d", o.MinDepth)
	}
	return nil
}

func (o Options) executor() Executor {
	switch {
	case o.Workers == 0:
		return Sequential{}
	case o.Workers < 0:
		return Concurrent{}
	default:
		return Concurrent{Workers: o.Workers}
	}
}
