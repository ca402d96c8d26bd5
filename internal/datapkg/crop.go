package datapkg

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/dataset-aug/internal/geometry"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
	"gonum.org/v1/gonum/spatial/r2"
)

// ContainmentPolicy decides which shapes survive a crop.
type ContainmentPolicy int

const (
	// StrictFullContainment keeps a shape only when it is a rectangle and
	// both of its corners, rounded to integers, lie inside the crop region.
	// Partially overlapping rectangles and every other shape kind are
	// dropped.
	StrictFullContainment ContainmentPolicy = iota
)

// Keep reports whether s survives a crop to roi under the policy.
func (c ContainmentPolicy) Keep(s labelme.Shape, roi geometry.Rect) bool {
	switch c {
	case StrictFullContainment:
		r, err := s.Round().Rect()
		if err != nil {
			return false
		}
		return roi.ContainsRect(r)
	}
	return false
}

// Margins are per-side amounts in pixels.
type Margins struct {
	Top, Bottom, Left, Right int
}

// Uniform returns the same margin on all four sides.
func Uniform(m int) Margins {
	return Margins{Top: m, Bottom: m, Left: m, Right: m}
}

// Validate rejects negative margins.
func (m Margins) Validate() error {
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return fmt.Errorf("%w: negative value in %+v", ErrBadMargins, m)
	}
	return nil
}

// ParseMargins parses "top,bottom,left,right" or a single value for all
// four sides.
func ParseMargins(s string) (Margins, error) {
	parts := strings.Split(s, ",")
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Margins{}, fmt.Errorf("%w: %q: %v", ErrBadMargins, s, err)
		}
		vals[i] = v
	}

	var m Margins
	switch len(vals) {
	case 1:
		m = Uniform(vals[0])
	case 4:
		m = Margins{Top: vals[0], Bottom: vals[1], Left: vals[2], Right: vals[3]}
	default:
		return Margins{}, fmt.Errorf("%w: %q has %d values, want 1 or 4", ErrBadMargins, s, len(vals))
	}
	return m, m.Validate()
}

// MarginsFromSlice converts a [top, bottom, left, right] list.
func MarginsFromSlice(v []int) (Margins, error) {
	switch len(v) {
	case 0:
		return Margins{}, nil
	case 1:
		m := Uniform(v[0])
		return m, m.Validate()
	case 4:
		m := Margins{Top: v[0], Bottom: v[1], Left: v[2], Right: v[3]}
		return m, m.Validate()
	}
	return Margins{}, fmt.Errorf("%w: %d values, want 1 or 4", ErrBadMargins, len(v))
}

type cropOptions struct {
	imagePath   string
	coordSuffix bool
	catIdx      *int
	policy      ContainmentPolicy
}

// CropOption configures Crop.
type CropOption func(*cropOptions)

// WithImagePath sets the image path of the result. The annotation path is
// derived from it. Without this option the result is unsaved.
func WithImagePath(path string) CropOption {
	return func(o *cropOptions) { o.imagePath = path }
}

// WithCoordSuffix appends the clamped crop corners to the result's file
// stem, as in "board_12_40_88_120.bmp". When no image path was given the
// source package's path is used.
func WithCoordSuffix() CropOption {
	return func(o *cropOptions) { o.coordSuffix = true }
}

// WithCategory overrides the category index of the result, which is
// otherwise inherited from the source.
func WithCategory(catIdx int) CropOption {
	return func(o *cropOptions) { o.catIdx = &catIdx }
}

// WithPolicy selects the containment policy. StrictFullContainment is the
// default.
func WithPolicy(c ContainmentPolicy) CropOption {
	return func(o *cropOptions) { o.policy = c }
}

// Crop cuts out the inclusive region (tlX,tlY)-(brX,brY). Coordinates are
// first clamped into the image. The result holds the rectangle shapes that
// lie fully inside the region, translated so the region's top-left is the
// origin and rounded to integers.
//
// A region whose clamped bottom-right lies left of or above its top-left
// fails with ErrEmptyCrop.
func (p *Package) Crop(tlX, tlY, brX, brY int, opts ...CropOption) (*Package, error) {
	o := cropOptions{policy: StrictFullContainment}
	for _, opt := range opts {
		opt(&o)
	}

	// Corners stay in the given order so an inverted region is caught below.
	roi := geometry.Rect{
		Min: r2.Vec{X: float64(tlX), Y: float64(tlY)},
		Max: r2.Vec{X: float64(brX), Y: float64(brY)},
	}.Clip(p.Width(), p.Height())
	tlX, tlY = int(roi.Min.X), int(roi.Min.Y)
	brX, brY = int(roi.Max.X), int(roi.Max.Y)
	if brX < tlX || brY < tlY {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrEmptyCrop, tlX, tlY, brX, brY)
	}

	img, err := imaging.Crop(p.Image, image.Rect(tlX, tlY, brX+1, brY+1))
	if err != nil {
		return nil, err
	}

	imagePath := o.imagePath
	if o.coordSuffix {
		if imagePath == "" {
			imagePath = p.ImagePath
		}
		if imagePath != "" {
			imagePath = withCoordSuffix(imagePath, tlX, tlY, brX, brY)
		}
	}

	rec := labelme.NewRecord(baseName(imagePath), img.Bounds().Dx(), img.Bounds().Dy())
	for _, s := range p.Label.Shapes {
		if o.policy.Keep(s, roi) {
			rec.Shapes = append(rec.Shapes, s.Round().Translate(float64(-tlX), float64(-tlY)))
		}
	}

	catIdx := p.CatIdx
	if o.catIdx != nil {
		catIdx = *o.catIdx
	}
	return own(imagePath, img, rec, catIdx), nil
}

// CropRect crops to the rounded bounds of r.
func (p *Package) CropRect(r geometry.Rect, opts ...CropOption) (*Package, error) {
	r = r.Round()
	return p.Crop(int(r.Min.X), int(r.Min.Y), int(r.Max.X), int(r.Max.Y), opts...)
}

// CropRectangleItem crops around a rectangle shape grown by m. It returns
// nil without error when s is not a rectangle.
func (p *Package) CropRectangleItem(s labelme.Shape, m Margins, opts ...CropOption) (*Package, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	r, err := s.Rect()
	if errors.Is(err, labelme.ErrNotRectangle) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r = r.Round()
	tlX := int(r.Min.X) - m.Left
	tlY := int(r.Min.Y) - m.Top
	brX := int(r.Max.X) + m.Right
	brY := int(r.Max.Y) + m.Bottom
	return p.Crop(tlX, tlY, brX, brY, opts...)
}

// CropRectangleItems crops every rectangle shape accepted by pred, grown by
// m, into its own Package saved under dstDir as
// <stem>_<tlx>_<tly>_<brx>_<bry><ext>. A nil pred accepts everything.
func (p *Package) CropRectangleItems(dstDir string, m Margins, pred labelme.Predicate) ([]*Package, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	name := "crop.png"
	if p.ImagePath != "" {
		name = filepath.Base(p.ImagePath)
	}
	target := filepath.Join(dstDir, name)

	if pred == nil {
		pred = labelme.All
	}
	var out []*Package
	for _, s := range p.Label.Filter(labelme.And(labelme.Shape.IsRectangle, pred)) {
		c, err := p.CropRectangleItem(s, m, WithImagePath(target), WithCoordSuffix())
		if err != nil {
			return nil, fmt.Errorf("crop %q: %w", s.Label, err)
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func withCoordSuffix(path string, tlX, tlY, brX, brY int) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%d_%d_%d_%d%s", stem, tlX, tlY, brX, brY, ext)
}
