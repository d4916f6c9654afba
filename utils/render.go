package utils

import (
	"fmt"
	"html/template"
	"image"
	"image/color"
	"io"
	"path/filepath"

	"github.com/mrjoshuak/go-openexr/exr"
	"golang.org/x/image/draw"

	"github.com/setanarut/katana"
)

// SaveLayers writes every layer as layer_NN.png into dir and returns the
// file names in stack order.
func SaveLayers(stack *katana.Stack, dir string) ([]string, error) {
	names := make([]string, len(stack.Layers))
	for i, l := range stack.Layers {
		names[i] = fmt.Sprintf("layer_%02d.png", i)
		if err := SaveImage(l.ToNRGBA(), filepath.Join(dir, names[i])); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// SaveLayersEXR writes every layer as a half-float layer_NN.exr into dir.
func SaveLayersEXR(stack *katana.Stack, dir string) ([]string, error) {
	names := make([]string, len(stack.Layers))
	for i, l := range stack.Layers {
		names[i] = fmt.Sprintf("layer_%02d.exr", i)
		if err := exr.EncodeFile(filepath.Join(dir, names[i]), ToEXR(l)); err != nil {
			return nil, fmt.Errorf("encode %s: %w", names[i], err)
		}
	}
	return names, nil
}

// ContactSheet lays out the layers left to right, each scaled with nearest
// neighbour sampling to fit a tileSize square, followed by their composite.
func ContactSheet(stack *katana.Stack, tileSize int) (*image.NRGBA, error) {
	if len(stack.Layers) == 0 {
		return nil, fmt.Errorf("empty layer stack")
	}
	if tileSize <= 0 {
		tileSize = 128
	}
	comp, err := stack.Composite()
	if err != nil {
		return nil, err
	}
	tiles := append([]*katana.Image{}, stack.Layers...)
	tiles = append(tiles, comp)

	sheet := image.NewNRGBA(image.Rect(0, 0, tileSize*len(tiles), tileSize))
	draw.Draw(sheet, sheet.Bounds(), &image.Uniform{C: color.NRGBA{A: 255}}, image.Point{}, draw.Src)

	scale := float64(tileSize) / float64(max(stack.Width, stack.Height))
	w := max(1, int(float64(stack.Width)*scale))
	h := max(1, int(float64(stack.Height)*scale))
	for i, t := range tiles {
		src := t.ToNRGBA()
		x0 := i*tileSize + (tileSize-w)/2
		y0 := (tileSize - h) / 2
		draw.NearestNeighbor.Scale(sheet, image.Rect(x0, y0, x0+w, y0+h), src, src.Bounds(), draw.Src, nil)
	}
	return sheet, nil
}

func SaveContactSheet(stack *katana.Stack, tileSize int, filename string) error {
	sheet, err := ContactSheet(stack, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(sheet, filename)
}

var katanaBoxTmpl = template.Must(template.New("box").Parse(
	`<div class="katana-box" style="position: relative; width: {{.Width}}px; height: {{.Height}}px">
{{- range .Sources}}
  <img class="katana-image" src="{{.}}" style="position: absolute; left: 0; top: 0; mix-blend-mode: {{$.Mode}}">
{{- end}}
</div>
`))

// WriteKatanaBox writes an HTML fragment that stacks the layer images at
// sources on top of each other with the stack's CSS mix-blend-mode, which
// lets a browser reproduce the original image.
func WriteKatanaBox(w io.Writer, stack *katana.Stack, sources []string) error {
	if len(sources) != len(stack.Layers) {
		return fmt.Errorf("%d sources for %d layers", len(sources), len(stack.Layers))
	}
	return katanaBoxTmpl.Execute(w, struct {
		Width, Height int
		Mode          string
		Sources       []string
	}{stack.Width, stack.Height, stack.Mode.String(), sources})
}
