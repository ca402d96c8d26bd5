package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCrop(t *testing.T) {
	img := gradient(20, 10)

	tests := []struct {
		name    string
		r       image.Rectangle
		wantErr bool
	}{
		{"interior", image.Rect(2, 3, 7, 9), false},
		{"full image", image.Rect(0, 0, 20, 10), false},
		{"single pixel", image.Rect(19, 9, 20, 10), false},
		{"past right edge", image.Rect(15, 0, 21, 5), true},
		{"negative origin", image.Rect(-1, 0, 5, 5), true},
		{"empty", image.Rect(4, 4, 4, 8), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Crop(img, tt.r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Bounds() != image.Rect(0, 0, tt.r.Dx(), tt.r.Dy()) {
				t.Errorf("bounds: got %v", got.Bounds())
			}
			if c := got.NRGBAAt(0, 0); int(c.R) != tt.r.Min.X || int(c.G) != tt.r.Min.Y {
				t.Errorf("origin pixel: got %v, want (%d,%d)", c, tt.r.Min.X, tt.r.Min.Y)
			}
		})
	}
}

func TestCrop_OwnBuffer(t *testing.T) {
	img := gradient(10, 10)
	got, err := Crop(img, image.Rect(1, 1, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	got.SetNRGBA(0, 0, color.NRGBA{A: 0xff})
	if c := img.NRGBAAt(1, 1); c.R != 1 {
		t.Error("writing to the crop changed the source")
	}
}

func TestClone(t *testing.T) {
	img := gradient(4, 4)
	c := Clone(img)
	samePixels(t, c, img)
	c.SetNRGBA(0, 0, color.NRGBA{R: 99, A: 0xff})
	if img.NRGBAAt(0, 0).R == 99 {
		t.Error("Clone shares its buffer")
	}
}

func TestBlit(t *testing.T) {
	dst := NewCanvas(10, 10, color.NRGBA{})
	src := gradient(3, 2)

	if err := Blit(dst, src, image.Pt(7, 8)); err != nil {
		t.Fatalf("Blit at the corner: %v", err)
	}
	if got := dst.NRGBAAt(9, 9); got != src.NRGBAAt(2, 1) {
		t.Errorf("corner pixel: got %v, want %v", got, src.NRGBAAt(2, 1))
	}
	if got := dst.NRGBAAt(6, 8); got != (color.NRGBA{A: 0xff}) {
		t.Errorf("pixel left of the paste changed: %v", got)
	}

	if err := Blit(dst, src, image.Pt(8, 8)); err == nil {
		t.Error("expected error for a paste past the right edge")
	}
	if err := Blit(dst, src, image.Pt(-1, 0)); err == nil {
		t.Error("expected error for a negative offset")
	}
}

func TestRotate(t *testing.T) {
	const w, h = 5, 3
	img := gradient(w, h)

	// want maps a source pixel to its position after the rotation.
	tests := []struct {
		degrees int
		size    image.Point
		want    func(x, y int) image.Point
	}{
		{0, image.Pt(w, h), func(x, y int) image.Point { return image.Pt(x, y) }},
		{90, image.Pt(h, w), func(x, y int) image.Point { return image.Pt(h-1-y, x) }},
		{180, image.Pt(w, h), func(x, y int) image.Point { return image.Pt(w-1-x, h-1-y) }},
		{270, image.Pt(h, w), func(x, y int) image.Point { return image.Pt(y, w-1-x) }},
	}

	for _, tt := range tests {
		got, err := Rotate(img, tt.degrees)
		if err != nil {
			t.Fatalf("Rotate(%d): %v", tt.degrees, err)
		}
		if got.Bounds().Size() != tt.size {
			t.Fatalf("Rotate(%d) size: got %v, want %v", tt.degrees, got.Bounds().Size(), tt.size)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := tt.want(x, y)
				if got.NRGBAAt(p.X, p.Y) != img.NRGBAAt(x, y) {
					t.Fatalf("Rotate(%d): source (%d,%d) not at %v", tt.degrees, x, y, p)
				}
			}
		}
	}

	if _, err := Rotate(img, 45); err == nil {
		t.Error("expected error for 45 degrees")
	}
}
