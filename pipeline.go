// Package katana splits an image into a stack of layers that reproduce it
// when composited with a single blend mode, then scatters blocks between the
// layers without changing the composite.
//
// Layers come from a pixellation pyramid: the coarsest level is kept as is and
// every finer level contributes the inbetween image that turns the previous
// level into it under the blend mode.
package katana

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

type Builder struct {
	opt Options
}

// NewBuilder validates opt and returns a Builder that can be reused for any
// number of images.
func NewBuilder(opt Options) (*Builder, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &Builder{opt: opt}, nil
}

// BuildLayers is shorthand for NewBuilder(opt) followed by Build.
func BuildLayers(ctx context.Context, im *Image, opt Options) (*Stack, error) {
	b, err := NewBuilder(opt)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, im)
}

// Build decomposes im into a layer stack. ByteRange input is rescaled to
// [0,1] first; the returned layers are always UnitRange at im's size.
// Cancellation is observed between stages and discards all partial work.
func (b *Builder) Build(ctx context.Context, im *Image) (*Stack, error) {
	if err := im.Validate(); err != nil {
		return nil, err
	}
	log := b.opt.logger()
	exec := b.opt.executor()
	mode := b.opt.Mode
	src := im.ToUnit()
	total := time.Now()

	if err := checkpoint(ctx, "pad"); err != nil {
		return nil, err
	}
	padded, err := Pad(src)
	if err != nil {
		return nil, err
	}
	side := padded.H

	if err := checkpoint(ctx, "pyramid"); err != nil {
		return nil, err
	}
	t := time.Now()
	lods, err := BuildLODs(ctx, padded, mode, b.opt.LayerRatio, b.opt.MinDepth, exec)
	if err != nil {
		return nil, err
	}
	log.Debug("katana: pyramid built", "levels", len(lods), "side", side, "elapsed", time.Since(t))

	var layers []*Image
	if len(lods) == 0 {
		layers = []*Image{src.Clone()}
	} else {
		if err := checkpoint(ctx, "solve"); err != nil {
			return nil, err
		}
		t = time.Now()
		if layers, err = solveInbetweens(ctx, lods, mode, exec); err != nil {
			return nil, err
		}
		log.Debug("katana: inbetweens solved", "layers", len(layers), "elapsed", time.Since(t))

		if err := checkpoint(ctx, "crop"); err != nil {
			return nil, err
		}
		t = time.Now()
		if err := cropLayers(ctx, layers, side, src.H, src.W, exec); err != nil {
			return nil, err
		}
		log.Debug("katana: layers cropped", "elapsed", time.Since(t))
	}

	if err := checkpoint(ctx, "shuffle"); err != nil {
		return nil, err
	}
	t = time.Now()
	seed := b.opt.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if b.opt.Workers == 0 {
		err = Shuffle(layers, b.opt.ShuffleCount, rng)
	} else {
		err = ShuffleParallel(ctx, layers, b.opt.ShuffleCount, rng, exec)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("katana: layers shuffled", "swaps", b.opt.ShuffleCount, "elapsed", time.Since(t))

	log.Info("katana: stack built",
		"mode", mode, "width", src.W, "height", src.H,
		"layers", len(layers), "elapsed", time.Since(total))
	return &Stack{Layers: layers, Mode: mode, Width: src.W, Height: src.H, Seed: seed}, nil
}

// solveInbetweens turns the LOD sequence into layers: the coarsest LOD
// followed by one inbetween per adjacent pair. Each inbetween depends only on
// two LODs, never on an earlier inbetween, so pairs run independently.
func solveInbetweens(ctx context.Context, lods []*Image, mode BlendMode, exec Executor) ([]*Image, error) {
	layers := make([]*Image, len(lods))
	err := exec.Run(ctx, len(lods), func(_ context.Context, i int) error {
		if i == 0 {
			layers[0] = lods[0].Clone()
			return nil
		}
		coarse, fine := lods[i-1], lods[i]
		if fine.H%coarse.H != 0 {
			return fmt.Errorf("%w: LOD %d side %d is not a multiple of %d", ErrShapeMismatch, i, fine.H, coarse.H)
		}
		inb, err := Solve(Upscale(coarse, fine.H/coarse.H), fine, mode)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		layers[i] = inb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return layers, nil
}

// cropLayers brings every layer up to the padded side and crops it back to
// the original h×w, in place.
func cropLayers(ctx context.Context, layers []*Image, side, h, w int, exec Executor) error {
	return exec.Run(ctx, len(layers), func(_ context.Context, i int) error {
		l := layers[i]
		if l.H != side {
			l = Upscale(l, side/l.H)
		}
		c, err := Unpad(l, h, w)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		layers[i] = c
		return nil
	})
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("katana: stopped before %s: %w", stage, err)
	}
	return nil
}
