package katana

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/mat"
)

// ValueRange records which scale an Image's samples are on.
type ValueRange int

const (
	// UnitRange samples lie in [0,1].
	UnitRange ValueRange = iota
	// ByteRange samples lie in [0,255].
	ByteRange
)

func (r ValueRange) String() string {
	if r == ByteRange {
		return "0-255"
	}
	return "0-1"
}

// Image is a dense H×W×C array stored as one gonum plane per channel.
type Image struct {
	H, W   int
	Range  ValueRange
	Planes []*mat.Dense // len = channel count, each H×W
}

// NewImage allocates a zero-valued image. h, w and channels must be positive.
func NewImage(h, w, channels int, r ValueRange) *Image {
	planes := make([]*mat.Dense, channels)
	for c := range planes {
		planes[c] = mat.NewDense(h, w, nil)
	}
	return &Image{H: h, W: w, Range: r, Planes: planes}
}

// NewImageFromPix builds an image from interleaved samples, len(pix) = h*w*channels.
func NewImageFromPix(h, w, channels int, pix []float64, r ValueRange) (*Image, error) {
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDegenerateImage, w, h)
	}
	if len(pix) != h*w*channels {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrShapeMismatch, len(pix), w, h, channels)
	}
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	im := NewImage(h, w, channels, r)
	for y := range h {
		for x := range w {
			off := (y*w + x) * channels
			for c, p := range im.Planes {
				p.Set(y, x, pix[off+c])
			}
		}
	}
	return im, nil
}

// FromImage converts a decoded image into a ByteRange Image with three
// channels, or four when alpha is true.
func FromImage(src image.Image, alpha bool) *Image {
	bounds := src.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	channels := 3
	if alpha {
		channels = 4
	}
	if h == 0 || w == 0 {
		// Left for Validate to reject; gonum cannot allocate empty planes.
		return &Image{H: h, W: w, Range: ByteRange, Planes: make([]*mat.Dense, channels)}
	}
	im := NewImage(h, w, channels, ByteRange)
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			im.Planes[0].Set(y, x, float64(c.R))
			im.Planes[1].Set(y, x, float64(c.G))
			im.Planes[2].Set(y, x, float64(c.B))
			if alpha {
				im.Planes[3].Set(y, x, float64(c.A))
			}
		}
	}
	return im
}

// Channels returns the channel count.
func (im *Image) Channels() int { return len(im.Planes) }

// Side returns the side length of a square image and false otherwise.
func (im *Image) Side() (int, bool) { return im.H, im.H == im.W }

// At returns the sample at row y, column x, channel c.
func (im *Image) At(y, x, c int) float64 { return im.Planes[c].At(y, x) }

// Set stores the sample at row y, column x, channel c.
func (im *Image) Set(y, x, c int, v float64) { im.Planes[c].Set(y, x, v) }

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	return im.mapPlanes(func(p *mat.Dense) *mat.Dense {
		return mat.DenseCopyOf(p)
	})
}

// Validate reports degenerate dimensions and unsupported channel counts.
func (im *Image) Validate() error {
	if im == nil || im.H <= 0 || im.W <= 0 {
		return ErrDegenerateImage
	}
	if err := checkChannels(im.Channels()); err != nil {
		return err
	}
	for c, p := range im.Planes {
		if r, col := p.Dims(); r != im.H || col != im.W {
			return fmt.Errorf("%w: plane %d is %dx%d, image is %dx%d", ErrShapeMismatch, c, col, r, im.W, im.H)
		}
	}
	return nil
}

// ToUnit returns the image on the [0,1] scale, copying when rescaling is needed.
func (im *Image) ToUnit() *Image {
	if im.Range == UnitRange {
		return im
	}
	out := im.mapPlanes(func(p *mat.Dense) *mat.Dense {
		var d mat.Dense
		d.Scale(1.0/255, p)
		return &d
	})
	out.Range = UnitRange
	return out
}

// ToNRGBA renders the image to 8-bit. Single-channel images become gray and
// three-channel images get an opaque alpha channel.
func (im *Image) ToNRGBA() *image.NRGBA {
	scale := 255.0
	if im.Range == ByteRange {
		scale = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, im.W, im.H))
	to8 := func(v float64) uint8 {
		return uint8(max(0, min(255, v*scale+0.5)))
	}
	for y := range im.H {
		for x := range im.W {
			var px color.NRGBA
			switch im.Channels() {
			case 1:
				g := to8(im.At(y, x, 0))
				px = color.NRGBA{R: g, G: g, B: g, A: 255}
			default:
				px = color.NRGBA{R: to8(im.At(y, x, 0)), G: to8(im.At(y, x, 1)), B: to8(im.At(y, x, 2)), A: 255}
				if im.Channels() == 4 {
					px.A = to8(im.At(y, x, 3))
				}
			}
			out.SetNRGBA(x, y, px)
		}
	}
	return out
}

func (im *Image) mapPlanes(fn func(p *mat.Dense) *mat.Dense) *Image {
	out := &Image{Range: im.Range, Planes: make([]*mat.Dense, len(im.Planes))}
	for c, p := range im.Planes {
		out.Planes[c] = fn(p)
	}
	out.H, out.W = out.Planes[0].Dims()
	return out
}

func checkChannels(n int) error {
	switch n {
	case 1, 3, 4:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedChannelCount, n)
}

func sameShape(a, b *Image) error {
	if a.H != b.H || a.W != b.W || a.Channels() != b.Channels() {
		return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
			a.W, a.H, a.Channels(), b.W, b.H, b.Channels())
	}
	return nil
}
