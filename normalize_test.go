package katana

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		h, w int
		want int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{3, 1, 4},
		{4, 4, 4},
		{5, 8, 8},
		{9, 3, 16},
		{150, 321, 512},
		{1024, 1024, 1024},
	}
	for _, tt := range tests {
		if got := PaddedSize(tt.h, tt.w); got != tt.want {
			t.Errorf("PaddedSize(%d, %d) = %d, want %d", tt.h, tt.w, got, tt.want)
		}
	}
}

func TestPadUnpadIdentity(t *testing.T) {
	rng := newRand(7)
	for _, size := range [][3]int{{5, 7, 3}, {1, 1, 3}, {16, 16, 4}, {3, 11, 1}} {
		im := randomImage(rng, size[0], size[1], size[2])
		padded, err := Pad(im)
		if err != nil {
			t.Fatalf("Pad(%v): %v", size, err)
		}
		n := PaddedSize(im.H, im.W)
		if padded.H != n || padded.W != n {
			t.Fatalf("Pad(%v) is %dx%d, want %dx%d", size, padded.W, padded.H, n, n)
		}
		back, err := Unpad(padded, im.H, im.W)
		if err != nil {
			t.Fatalf("Unpad(%v): %v", size, err)
		}
		for c := range im.Planes {
			if !mat.Equal(im.Planes[c], back.Planes[c]) {
				t.Errorf("Pad/Unpad of %v changed channel %d", size, c)
			}
		}
	}
}

func TestPadFillsWithZeros(t *testing.T) {
	padded, err := Pad(constImage(3, 5, 3, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	for y := range padded.H {
		for x := range padded.W {
			want := 0.0
			if y < 3 && x < 5 {
				want = 0.5
			}
			if got := padded.At(y, x, 1); got != want {
				t.Fatalf("padded(%d,%d) = %v, want %v", y, x, got, want)
			}
		}
	}
}

func TestPadDegenerate(t *testing.T) {
	for _, im := range []*Image{nil, {H: 0, W: 4}, {H: 4, W: 0}} {
		if _, err := Pad(im); !errors.Is(err, ErrDegenerateImage) {
			t.Errorf("Pad(%v) error = %v, want ErrDegenerateImage", im, err)
		}
	}
	if _, err := Unpad(constImage(4, 4, 3, 0), 0, 2); !errors.Is(err, ErrDegenerateImage) {
		t.Errorf("Unpad to 2x0 error = %v, want ErrDegenerateImage", err)
	}
}
