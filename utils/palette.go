package utils

import (
	"image"
	"log/slog"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/setanarut/katana"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// Tone is a representative image colour and the share of pixels it stands for.
type Tone struct {
	Col    colorful.Color
	Weight float64
}

// Luminance returns the relative luminance of a tone from linear RGB.
func (t Tone) Luminance() float64 {
	r, g, b := t.Col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// DominantTones returns up to k tones ordered by decreasing weight. The
// k-means method falls back to dominantcolor when clustering yields nothing.
func DominantTones(img image.Image, k int, method PaletteMethod) []Tone {
	if k <= 0 {
		return nil
	}
	var tones []Tone
	if method == PaletteMethodKMeans {
		tones = kmeansTones(img, k)
		if len(tones) == 0 {
			slog.Warn("palette: kmeans returned no clusters, falling back to dominantcolor")
		}
	}
	if len(tones) == 0 {
		for _, c := range dominantcolor.FindWeight(img, k) {
			col, _ := colorful.MakeColor(c.RGBA)
			tones = append(tones, Tone{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
		}
	}
	slices.SortFunc(tones, func(a, b Tone) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
	return tones
}

func kmeansTones(img image.Image, k int) []Tone {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample large images.
	const maxSamples = 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/maxSamples)) + 1
	}
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	k = min(k, len(dataset))
	if k == 0 {
		return nil
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return nil
	}
	tones := make([]Tone, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		tones = append(tones, Tone{Col: col, Weight: float64(len(c.Observations))})
	}
	return tones
}

// SuggestBlendMode picks a mode from the weighted luminance of the dominant
// tones. Bright images suit Multiply, whose pyramid keeps chunk maxima and
// whose inbetweens only darken; dark images suit Screen for the opposite
// reason.
func SuggestBlendMode(img image.Image, method PaletteMethod) katana.BlendMode {
	tones := DominantTones(img, 5, method)
	var sum, weight float64
	for _, t := range tones {
		sum += t.Luminance() * t.Weight
		weight += t.Weight
	}
	if weight > 0 && sum/weight >= 0.5 {
		return katana.Multiply
	}
	return katana.Screen
}
