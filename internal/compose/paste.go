package compose

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"

	"github.com/ironsheep/dataset-aug/internal/datapkg"
	"github.com/ironsheep/dataset-aug/internal/geometry"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/logging"
)

// Scale range applied independently to x and y of every pasted source.
const (
	MinPasteScale = 0.9
	MaxPasteScale = 1.0
)

// PasteOptions controls PasteIter.
type PasteOptions struct {
	// Count is the number of paste attempts. Each attempt consumes one
	// source whether or not it is placed.
	Count int
	// AllowOverlap places sources anywhere, ignoring existing shapes.
	AllowOverlap bool
	// MaxTries bounds the placements tried per source when overlap is not
	// allowed. Values below 1 mean 1.
	MaxTries int
	// OverlapMargin inflates the placement on every side before testing it
	// against existing rectangle shapes.
	OverlapMargin float64
}

// PasteReport tells how a PasteIter run went.
type PasteReport struct {
	Pasted  int
	Skipped int
	// Exhausted is set when the source ran out before Count attempts.
	Exhausted bool
}

// PasteIter returns a copy of dst with up to opts.Count sources from src
// pasted at random positions. dst is not modified.
func PasteIter(dst *datapkg.Package, src Source, opts PasteOptions, rng *rand.Rand) (*datapkg.Package, PasteReport, error) {
	out := dst.Clone()
	rep, err := PasteIterInPlace(out, src, opts, rng)
	if err != nil {
		return nil, rep, err
	}
	return out, rep, nil
}

// PasteIterInPlace is PasteIter modifying dst.
//
// Every source is first given a random quarter-turn rotation and a random
// x and y scale in [MinPasteScale, MaxPasteScale]. When overlap is not
// allowed a placement is accepted only if, grown by OverlapMargin, it does
// not touch any rectangle shape already in dst; after MaxTries rejected
// placements the source is skipped. A source larger than dst is skipped
// too. Running out of sources ends the loop early without error.
func PasteIterInPlace(dst *datapkg.Package, src Source, opts PasteOptions, rng *rand.Rand) (PasteReport, error) {
	var rep PasteReport
	for i := 0; i < opts.Count; i++ {
		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			rep.Exhausted = true
			logging.Diagf("paste: source exhausted after %d of %d attempts", i, opts.Count)
			break
		}
		if err != nil {
			return rep, err
		}

		aug, err := Augment(s, rng)
		if err != nil {
			return rep, err
		}

		pt, ok := findPlacement(dst, aug.Width(), aug.Height(), opts, rng)
		if !ok {
			rep.Skipped++
			logging.Diagf("paste: no placement for %dx%d source on attempt %d", aug.Width(), aug.Height(), i+1)
			continue
		}
		if err := dst.PasteInPlace(aug, pt.X, pt.Y); err != nil {
			return rep, err
		}
		rep.Pasted++
	}
	return rep, nil
}

// Augment returns p turned by a random multiple of 90 degrees and scaled by
// independent random factors in [MinPasteScale, MaxPasteScale].
func Augment(p *datapkg.Package, rng *rand.Rand) (*datapkg.Package, error) {
	rotated, err := p.Rotate(90 * rng.IntN(4))
	if err != nil {
		return nil, err
	}
	fx := MinPasteScale + (MaxPasteScale-MinPasteScale)*rng.Float64()
	fy := MinPasteScale + (MaxPasteScale-MinPasteScale)*rng.Float64()
	scaled, err := rotated.Resize(fx, fy, imaging.DefaultFilter)
	if err != nil {
		return nil, fmt.Errorf("augment: %w", err)
	}
	return scaled, nil
}

func findPlacement(dst *datapkg.Package, w, h int, opts PasteOptions, rng *rand.Rand) (image.Point, bool) {
	freeW, freeH := dst.Width()-w, dst.Height()-h
	if freeW < 0 || freeH < 0 {
		return image.Point{}, false
	}

	if opts.AllowOverlap {
		return image.Pt(rng.IntN(freeW+1), rng.IntN(freeH+1)), true
	}

	tries := max(opts.MaxTries, 1)
	occupied := dst.Rectangles()
	for t := 0; t < tries; t++ {
		pt := image.Pt(rng.IntN(freeW+1), rng.IntN(freeH+1))
		place := geometry.FromXYWH(float64(pt.X), float64(pt.Y), float64(w), float64(h)).
			Inflate(opts.OverlapMargin).Polygon()
		if !overlapsAny(place, occupied) {
			return pt, true
		}
	}
	return image.Point{}, false
}

func overlapsAny(place geometry.Polygon, rects []geometry.Rect) bool {
	for _, r := range rects {
		if place.Intersects(r.Polygon()) {
			return true
		}
	}
	return false
}
