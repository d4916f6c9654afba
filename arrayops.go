package katana

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ============ ARRAY OPS ============
//
// Thin plane-wise helpers over gonum. Every helper returns a new Image and
// leaves its inputs untouched.

// Upscale replicates every pixel into a factor×factor block.
func Upscale(im *Image, factor int) *Image {
	if factor == 1 {
		return im.Clone()
	}
	ones := onesMatrix(factor)
	return im.mapPlanes(func(p *mat.Dense) *mat.Dense {
		var d mat.Dense
		d.Kronecker(p, ones)
		return &d
	})
}

// Crop copies the h×w region whose top-left corner is at (y, x).
func Crop(im *Image, y, x, h, w int) (*Image, error) {
	if y < 0 || x < 0 || h <= 0 || w <= 0 || y+h > im.H || x+w > im.W {
		return nil, fmt.Errorf("%w: crop %dx%d at (%d,%d) from %dx%d",
			ErrShapeMismatch, w, h, x, y, im.W, im.H)
	}
	return im.mapPlanes(func(p *mat.Dense) *mat.Dense {
		return mat.DenseCopyOf(p.Slice(y, y+h, x, x+w))
	}), nil
}

// PadTo zero-extends the image on the bottom and right edges to h×w.
func PadTo(im *Image, h, w int) (*Image, error) {
	if h < im.H || w < im.W {
		return nil, fmt.Errorf("%w: pad %dx%d to %dx%d", ErrShapeMismatch, im.W, im.H, w, h)
	}
	return im.mapPlanes(func(p *mat.Dense) *mat.Dense {
		d := mat.NewDense(h, w, nil)
		d.Slice(0, im.H, 0, im.W).(*mat.Dense).Copy(p)
		return d
	}), nil
}

// BlockReduce collapses each chunk×chunk block of a plane to its max (or min).
func BlockReduce(im *Image, chunk int, useMax bool) (*Image, error) {
	if chunk <= 0 || im.H%chunk != 0 || im.W%chunk != 0 {
		return nil, fmt.Errorf("%w: %dx%d is not divisible into %d-pixel chunks",
			ErrShapeMismatch, im.W, im.H, chunk)
	}
	reduce := mat.Min
	if useMax {
		reduce = mat.Max
	}
	rows, cols := im.H/chunk, im.W/chunk
	return im.mapPlanes(func(p *mat.Dense) *mat.Dense {
		d := mat.NewDense(rows, cols, nil)
		for by := range rows {
			for bx := range cols {
				y, x := by*chunk, bx*chunk
				d.Set(by, bx, reduce(p.Slice(y, y+chunk, x, x+chunk)))
			}
		}
		return d
	}), nil
}

// Clamp limits every sample to [lo, hi] in place.
func Clamp(im *Image, lo, hi float64) {
	for _, p := range im.Planes {
		p.Apply(func(_, _ int, v float64) float64 {
			return max(lo, min(hi, v))
		}, p)
	}
}

// zipPlanes applies fn sample-wise to two same-shaped images.
func zipPlanes(a, b *Image, fn func(x, y float64) float64) (*Image, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	out := &Image{H: a.H, W: a.W, Range: a.Range, Planes: make([]*mat.Dense, len(a.Planes))}
	for c := range a.Planes {
		pb := b.Planes[c]
		var d mat.Dense
		d.Apply(func(i, j int, v float64) float64 {
			return fn(v, pb.At(i, j))
		}, a.Planes[c])
		out.Planes[c] = &d
	}
	return out, nil
}

func onesMatrix(n int) *mat.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = 1
	}
	return mat.NewDense(n, n, data)
}
