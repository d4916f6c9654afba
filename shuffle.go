package katana

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Block is a rectangle in layer coordinates.
type Block struct {
	Y, X, H, W int
}

// swap exchanges one block between two layers.
type swap struct {
	a, b  int
	block Block
}

// SwapBlock exchanges the block between a and b. Both regions are copied out
// before either is written, so the exchange is a true swap.
func SwapBlock(a, b *Image, blk Block) error {
	if err := sameShape(a, b); err != nil {
		return err
	}
	if blk.Y < 0 || blk.X < 0 || blk.H <= 0 || blk.W <= 0 || blk.Y+blk.H > a.H || blk.X+blk.W > a.W {
		return fmt.Errorf("%w: block %+v outside %dx%d", ErrShapeMismatch, blk, a.W, a.H)
	}
	for c := range a.Planes {
		va := a.Planes[c].Slice(blk.Y, blk.Y+blk.H, blk.X, blk.X+blk.W).(*mat.Dense)
		vb := b.Planes[c].Slice(blk.Y, blk.Y+blk.H, blk.X, blk.X+blk.W).(*mat.Dense)
		fromA := mat.DenseCopyOf(va)
		fromB := mat.DenseCopyOf(vb)
		va.Copy(fromB)
		vb.Copy(fromA)
	}
	return nil
}

// randomBlock draws a quadrant-sized block whose top-left corner lies in
// [0, h/2) × [0, w/2). ok is false when a dimension is too small to split.
func randomBlock(rng *rand.Rand, h, w int) (blk Block, ok bool) {
	bh, bw := h/2, w/2
	if bh == 0 || bw == 0 {
		return Block{}, false
	}
	return Block{Y: rng.IntN(bh), X: rng.IntN(bw), H: bh, W: bw}, true
}

// randomPair draws two distinct indices in [0, n).
func randomPair(rng *rand.Rand, n int) (int, int) {
	a := rng.IntN(n)
	b := rng.IntN(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// Shuffle performs count random block swaps between distinct layers. The
// composite of the stack under any supported blend mode is unchanged.
func Shuffle(layers []*Image, count int, rng *rand.Rand) error {
	if count <= 0 || len(layers) < 2 {
		return nil
	}
	h, w := layers[0].H, layers[0].W
	for range count {
		blk, ok := randomBlock(rng, h, w)
		if !ok {
			return nil
		}
		a, b := randomPair(rng, len(layers))
		if err := SwapBlock(layers[a], layers[b], blk); err != nil {
			return fmt.Errorf("shuffle layers %d and %d: %w", a, b, err)
		}
	}
	return nil
}

// ShuffleParallel performs count block swaps in rounds. Each round matches
// the layer indices into disjoint pairs and swaps every pair concurrently; an
// odd index left over sits the round out. Random draws all happen before a
// round is dispatched, so a seeded rng gives reproducible results with any
// executor.
func ShuffleParallel(ctx context.Context, layers []*Image, count int, rng *rand.Rand, exec Executor) error {
	if count <= 0 || len(layers) < 2 {
		return nil
	}
	h, w := layers[0].H, layers[0].W
	for remaining := count; remaining > 0; {
		if err := ctx.Err(); err != nil {
			return err
		}
		perm := rng.Perm(len(layers))
		var round []swap
		for i := 0; i+1 < len(perm) && len(round) < remaining; i += 2 {
			blk, ok := randomBlock(rng, h, w)
			if !ok {
				return nil
			}
			round = append(round, swap{a: perm[i], b: perm[i+1], block: blk})
		}
		err := exec.Run(ctx, len(round), func(_ context.Context, i int) error {
			s := round[i]
			if err := SwapBlock(layers[s.a], layers[s.b], s.block); err != nil {
				return fmt.Errorf("shuffle layers %d and %d: %w", s.a, s.b, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		remaining -= len(round)
	}
	return nil
}
