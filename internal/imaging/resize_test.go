package imaging

import (
	"image/color"
	"testing"
)

func TestParseFilter(t *testing.T) {
	for _, name := range append(Filters(), "", "Lanczos", "NEAREST") {
		if _, err := ParseFilter(name); err != nil {
			t.Errorf("ParseFilter(%q): %v", name, err)
		}
	}
	if _, err := ParseFilter("bicubic-ish"); err == nil {
		t.Error("expected error for an unknown filter")
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h   int
		fx, fy float64
		ww, wh int
	}{
		{100, 50, 1, 1, 100, 50},
		{100, 50, 0.5, 2, 50, 100},
		{10, 10, 0.96, 0.94, 10, 9},
		{3, 3, 0.1, 0.1, 1, 1},
	}
	for _, tt := range tests {
		w, h := ScaledSize(tt.w, tt.h, tt.fx, tt.fy)
		if w != tt.ww || h != tt.wh {
			t.Errorf("ScaledSize(%d,%d,%g,%g) = %d,%d, want %d,%d", tt.w, tt.h, tt.fx, tt.fy, w, h, tt.ww, tt.wh)
		}
	}
}

func TestResize(t *testing.T) {
	fill := color.NRGBA{R: 30, G: 140, B: 90, A: 0xff}
	img := NewCanvas(20, 10, fill)

	got, err := Resize(img, 1.5, 0.5, "nearest")
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if got.Bounds().Dx() != 30 || got.Bounds().Dy() != 5 {
		t.Fatalf("size: got %v, want 30x5", got.Bounds())
	}
	if c := got.NRGBAAt(29, 4); c != fill {
		t.Errorf("solid image changed colour: %v", c)
	}

	same, err := Resize(img, 1, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	samePixels(t, same, img)
	if same == img {
		t.Error("identity resize returned the source buffer")
	}

	if _, err := Resize(img, 0, 1, ""); err == nil {
		t.Error("expected error for a zero factor")
	}
	if _, err := Resize(img, 1, 1, "nope"); err == nil {
		t.Error("expected error for an unknown filter")
	}
}
