package katana

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSwapBlockIsTrueSwap(t *testing.T) {
	a := constImage(4, 6, 3, 0.25)
	b := constImage(4, 6, 3, 0.75)
	blk := Block{Y: 1, X: 2, H: 2, W: 3}
	if err := SwapBlock(a, b, blk); err != nil {
		t.Fatal(err)
	}
	for y := range 4 {
		for x := range 6 {
			inside := y >= 1 && y < 3 && x >= 2 && x < 5
			wantA, wantB := 0.25, 0.75
			if inside {
				wantA, wantB = 0.75, 0.25
			}
			for c := range 3 {
				if got := a.At(y, x, c); got != wantA {
					t.Fatalf("a(%d,%d,%d) = %v, want %v", y, x, c, got, wantA)
				}
				if got := b.At(y, x, c); got != wantB {
					t.Fatalf("b(%d,%d,%d) = %v, want %v", y, x, c, got, wantB)
				}
			}
		}
	}
}

func TestSwapBlockOutOfBounds(t *testing.T) {
	a, b := constImage(4, 4, 3, 0), constImage(4, 4, 3, 1)
	if err := SwapBlock(a, b, Block{Y: 3, X: 0, H: 2, W: 2}); err == nil {
		t.Error("SwapBlock past the bottom edge succeeded")
	}
	if err := SwapBlock(a, constImage(2, 2, 3, 1), Block{H: 1, W: 1}); err == nil {
		t.Error("SwapBlock between differently sized layers succeeded")
	}
}

func TestRandomPairDistinct(t *testing.T) {
	rng := newRand(1)
	seen := map[[2]int]bool{}
	for range 2000 {
		a, b := randomPair(rng, 4)
		if a == b {
			t.Fatalf("randomPair returned %d twice", a)
		}
		if a < 0 || a >= 4 || b < 0 || b >= 4 {
			t.Fatalf("randomPair returned (%d, %d) outside [0,4)", a, b)
		}
		seen[[2]int{a, b}] = true
	}
	if len(seen) != 12 {
		t.Errorf("saw %d ordered pairs, want all 12", len(seen))
	}
}

func TestRandomBlockBounds(t *testing.T) {
	rng := newRand(2)
	for range 500 {
		blk, ok := randomBlock(rng, 7, 10)
		if !ok {
			t.Fatal("randomBlock(7, 10) not ok")
		}
		if blk.H != 3 || blk.W != 5 {
			t.Fatalf("block is %dx%d, want 5x3", blk.W, blk.H)
		}
		if blk.Y < 0 || blk.Y >= 3 || blk.X < 0 || blk.X >= 5 {
			t.Fatalf("block corner (%d,%d) outside [0,5)x[0,3)", blk.X, blk.Y)
		}
	}
	if _, ok := randomBlock(rng, 1, 10); ok {
		t.Error("randomBlock on a single row should not split")
	}
}

func shuffleFixture(t *testing.T, mode BlendMode) *Stack {
	t.Helper()
	opt := DefaultOptions()
	opt.Mode = mode
	opt.ShuffleCount = 0
	stack, err := BuildLayers(context.Background(), randomImage(newRand(21), 12, 10, 3), opt)
	if err != nil {
		t.Fatal(err)
	}
	return stack
}

func TestShuffleKeepsComposite(t *testing.T) {
	for _, mode := range BlendModes {
		t.Run(mode.String(), func(t *testing.T) {
			stack := shuffleFixture(t, mode)
			before, err := stack.Composite()
			if err != nil {
				t.Fatal(err)
			}
			original := cloneLayers(stack.Layers)

			if err := Shuffle(stack.Layers, 50, newRand(9)); err != nil {
				t.Fatal(err)
			}
			if !layersDiffer(original, stack.Layers) {
				t.Fatal("50 swaps left every layer untouched")
			}
			after, err := stack.Composite()
			if err != nil {
				t.Fatal(err)
			}
			if d := maxAbsDiff(t, before, after); d > 1e-9 {
				t.Errorf("composite changed by %v after shuffling", d)
			}
		})
	}
}

func TestShuffleParallelKeepsComposite(t *testing.T) {
	for _, mode := range BlendModes {
		t.Run(mode.String(), func(t *testing.T) {
			stack := shuffleFixture(t, mode)
			before, err := stack.Composite()
			if err != nil {
				t.Fatal(err)
			}
			// Odd layer count exercises the index that sits a round out.
			layers := append(stack.Layers, constImage(12, 10, 3, identityValue(mode)))
			if err := ShuffleParallel(context.Background(), layers, 31, newRand(4), Concurrent{Workers: 4}); err != nil {
				t.Fatal(err)
			}
			after, err := Composite(layers, mode)
			if err != nil {
				t.Fatal(err)
			}
			if d := maxAbsDiff(t, before, after); d > 1e-9 {
				t.Errorf("composite changed by %v after parallel shuffling", d)
			}
		})
	}
}

func TestShuffleParallelReproducible(t *testing.T) {
	stack := shuffleFixture(t, Screen)
	a, b := cloneLayers(stack.Layers), cloneLayers(stack.Layers)
	if err := ShuffleParallel(context.Background(), a, 17, newRand(8), Sequential{}); err != nil {
		t.Fatal(err)
	}
	if err := ShuffleParallel(context.Background(), b, 17, newRand(8), Concurrent{Workers: 8}); err != nil {
		t.Fatal(err)
	}
	if layersDiffer(a, b) {
		t.Error("same seed gave different layers under different executors")
	}
}

func TestShuffleNoop(t *testing.T) {
	one := []*Image{constImage(4, 4, 3, 0.5)}
	if err := Shuffle(one, 10, newRand(1)); err != nil {
		t.Fatal(err)
	}
	thin := []*Image{constImage(1, 8, 3, 0), constImage(1, 8, 3, 1)}
	if err := Shuffle(thin, 10, newRand(1)); err != nil {
		t.Fatal(err)
	}
	if thin[0].At(0, 0, 0) != 0 || thin[1].At(0, 7, 0) != 1 {
		t.Error("single-row layers were modified")
	}
	if err := ShuffleParallel(context.Background(), thin, 10, newRand(1), Sequential{}); err != nil {
		t.Fatal(err)
	}
}

func identityValue(mode BlendMode) float64 {
	switch mode {
	case Multiply, Darken:
		return 1
	}
	return 0
}

func cloneLayers(layers []*Image) []*Image {
	out := make([]*Image, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}

func layersDiffer(a, b []*Image) bool {
	for i := range a {
		for c := range a[i].Planes {
			if !mat.Equal(a[i].Planes[c], b[i].Planes[c]) {
				return true
			}
		}
	}
	return false
}
