package katana

import (
	"context"
	"fmt"
	"slices"
)

// Pixellate reduces a square image to a 2^depth × 2^depth grid, keeping the
// maximum of each chunk for Multiply and Darken and the minimum otherwise.
func Pixellate(im *Image, depth int, mode BlendMode) (*Image, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlendMode, mode)
	}
	side, square := im.Side()
	if !square {
		return nil, fmt.Errorf("%w: pixellate needs a square image, got %dx%d", ErrShapeMismatch, im.W, im.H)
	}
	if depth < 0 || depth >= 63 {
		return nil, fmt.Errorf("%w: depth %d", ErrShapeMismatch, depth)
	}
	d := 1 << depth
	if d > side || side%d != 0 {
		return nil, fmt.Errorf("%w: side %d is not divisible into %d chunks", ErrShapeMismatch, side, d)
	}
	return BlockReduce(im, side/d, mode.reducesWithMax())
}

// LODDepths returns the pyramid depths, coarse to fine, for a padded square
// of the given side. The finest depth is always ceil(log2(side)); coarser
// depths step down by ratio while they stay at or above minDepth.
func LODDepths(side, ratio, minDepth int) []int {
	ratio, minDepth = max(ratio, 1), max(minDepth, 0)
	var depths []int
	for d := ceilLog2(side); d >= minDepth; d -= ratio {
		depths = append(depths, d)
	}
	slices.Reverse(depths)
	return depths
}

// BuildLODs pixellates a padded square once per depth. Levels are
// independent of one another, so exec may build them in parallel.
func BuildLODs(ctx context.Context, padded *Image, mode BlendMode, ratio, minDepth int, exec Executor) ([]*Image, error) {
	side, square := padded.Side()
	if !square {
		return nil, fmt.Errorf("%w: LODs need a square image, got %dx%d", ErrShapeMismatch, padded.W, padded.H)
	}
	depths := LODDepths(side, ratio, minDepth)
	lods := make([]*Image, len(depths))
	err := exec.Run(ctx, len(depths), func(_ context.Context, i int) error {
		lod, err := Pixellate(padded, depths[i], mode)
		if err != nil {
			return fmt.Errorf("LOD depth %d: %w", depths[i], err)
		}
		lods[i] = lod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lods, nil
}
