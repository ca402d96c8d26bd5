package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// DefaultFilter is used when no interpolation mode is named.
const DefaultFilter = "linear"

var filters = map[string]transform.ResampleFilter{
	"nearest":    transform.NearestNeighbor,
	"box":        transform.Box,
	"linear":     transform.Linear,
	"gaussian":   transform.Gaussian,
	"mitchell":   transform.MitchellNetravali,
	"catmullrom": transform.CatmullRom,
	"lanczos":    transform.Lanczos,
}

// Filters returns the accepted interpolation mode names, sorted.
func Filters() []string {
	names := make([]string, 0, len(filters))
	for n := range filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseFilter looks up an interpolation mode by name. The empty string
// selects DefaultFilter.
func ParseFilter(name string) (transform.ResampleFilter, error) {
	if name == "" {
		name = DefaultFilter
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return transform.ResampleFilter{}, fmt.Errorf("unknown interpolation %q (want one of %s)",
			name, strings.Join(Filters(), ", "))
	}
	return f, nil
}

// ScaledSize returns the size of a w x h image scaled by (fx, fy),
// rounded to the nearest pixel and never below 1.
func ScaledSize(w, h int, fx, fy float64) (int, int) {
	nw := int(math.Round(float64(w) * fx))
	nh := int(math.Round(float64(h) * fy))
	return max(nw, 1), max(nh, 1)
}

// Resize scales img by (fx, fy) with the named interpolation mode.
func Resize(img *image.NRGBA, fx, fy float64, filter string) (*image.NRGBA, error) {
	if fx <= 0 || fy <= 0 {
		return nil, fmt.Errorf("scale factors must be positive, got %g x %g", fx, fy)
	}
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), fx, fy)
	if w == b.Dx() && h == b.Dy() {
		return Clone(img), nil
	}
	return imaging.Clone(transform.Resize(img, w, h, f)), nil
}
