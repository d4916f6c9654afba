package utils

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/setanarut/katana"
)

// ReadImage decodes a PNG or JPEG file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadImage reads path into a katana.Image. OpenEXR files keep their linear
// float samples (clamped to [0,1]); everything else is decoded to 0-255.
func LoadImage(path string, alpha bool) (*katana.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".exr") {
		img, err := exr.DecodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return FromEXR(img, alpha), nil
	}
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return katana.FromImage(img, alpha), nil
}

// FromEXR converts a float RGBA image to a UnitRange katana.Image.
func FromEXR(img *exr.RGBAImage, alpha bool) *katana.Image {
	b := img.Bounds()
	channels := 3
	if alpha {
		channels = 4
	}
	pix := make([]float64, 0, b.Dx()*b.Dy()*channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.RGBA(x, y)
			pix = append(pix, clamp01(r), clamp01(g), clamp01(bl))
			if alpha {
				pix = append(pix, clamp01(a))
			}
		}
	}
	im, err := katana.NewImageFromPix(b.Dy(), b.Dx(), channels, pix, katana.UnitRange)
	if err != nil {
		// Only an empty data window gets here; let Validate report it.
		return &katana.Image{H: b.Dy(), W: b.Dx(), Range: katana.UnitRange}
	}
	return im
}

// ToEXR converts a layer to float RGBA without 8-bit quantisation.
func ToEXR(im *katana.Image) *exr.RGBAImage {
	out := exr.NewRGBAImage(image.Rect(0, 0, im.W, im.H))
	scale := 1.0
	if im.Range == katana.ByteRange {
		scale = 1.0 / 255
	}
	for y := range im.H {
		for x := range im.W {
			sample := func(c int) float32 { return float32(im.At(y, x, c) * scale) }
			var r, g, b, a float32 = 0, 0, 0, 1
			switch im.Channels() {
			case 1:
				r = sample(0)
				g, b = r, r
			case 3:
				r, g, b = sample(0), sample(1), sample(2)
			case 4:
				r, g, b, a = sample(0), sample(1), sample(2), sample(3)
			}
			out.SetRGBA(x, y, r, g, b, a)
		}
	}
	return out
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func clamp01(v float32) float64 {
	return float64(max(0, min(1, v)))
}
