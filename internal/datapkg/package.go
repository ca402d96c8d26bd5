// Package datapkg implements the annotated-image Package: one pixel buffer
// and its labelme annotation record, transformed together.
//
// Every transform returns a new Package with its own buffer and record.
// The only mutating methods are the ones whose names end in InPlace.
//
// # Coordinates
//
// Annotation coordinates share the pixel grid of the buffer: (0,0) is the
// top-left pixel and (w-1, h-1) the bottom-right one. Crop rectangles are
// inclusive on both ends.
package datapkg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/dataset-aug/internal/geometry"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
	"github.com/ironsheep/dataset-aug/internal/logging"
)

// Precondition errors. Callers test them with errors.Is.
var (
	ErrEmptyCrop   = errors.New("crop region is empty")
	ErrBadMargins  = errors.New("invalid margins")
	ErrBadAngle    = errors.New("invalid rotation angle")
	ErrPadTooSmall = errors.New("pad target smaller than image")
	ErrOutOfBounds = errors.New("region outside image bounds")
)

// NoCategory is the category index of packages nobody assigned one to.
const NoCategory = -1

// Package couples an image buffer with its annotation record.
type Package struct {
	// ImagePath is where SaveImage writes. Empty means unsaved.
	ImagePath string
	// LabelPath is where SaveLabel writes. Empty means unsaved.
	LabelPath string

	Image *image.NRGBA
	Label *labelme.Record

	// CatIdx is an opaque caller-assigned tag carried through transforms.
	CatIdx int
}

// New builds a Package from independent image and annotation sources.
// Both inputs are copied. A record whose size or image name disagrees with
// the buffer is corrected in memory and a warning is logged; files on disk
// are left alone.
func New(imagePath string, img *image.NRGBA, labelPath string, rec *labelme.Record, catIdx int) *Package {
	if rec == nil {
		b := img.Bounds()
		rec = labelme.NewRecord(baseName(imagePath), b.Dx(), b.Dy())
	}
	p := &Package{
		ImagePath: imagePath,
		LabelPath: labelPath,
		Image:     imaging.Clone(img),
		Label:     rec.Clone(),
		CatIdx:    catIdx,
	}
	p.reconcile()
	return p
}

// own wraps freshly produced buffers without copying them again.
func own(imagePath string, img *image.NRGBA, rec *labelme.Record, catIdx int) *Package {
	return &Package{
		ImagePath: imagePath,
		LabelPath: LabelPathFor(imagePath),
		Image:     img,
		Label:     rec,
		CatIdx:    catIdx,
	}
}

// FromImagePath loads the image at path. The annotation is the sibling file
// with a .json extension when it exists; otherwise an empty record is made.
func FromImagePath(path string, catIdx int) (*Package, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}

	labelPath := LabelPathFor(path)
	var rec *labelme.Record
	if _, statErr := os.Stat(labelPath); statErr == nil {
		rec, err = labelme.Load(labelPath)
		if err != nil {
			return nil, err
		}
	} else {
		b := img.Bounds()
		rec = labelme.NewRecord(filepath.Base(path), b.Dx(), b.Dy())
	}

	p := &Package{ImagePath: path, LabelPath: labelPath, Image: img, Label: rec, CatIdx: catIdx}
	p.reconcile()
	return p, nil
}

// FromLabelPath loads the annotation at path and the image it names,
// resolved relative to the annotation's directory.
func FromLabelPath(path string, catIdx int) (*Package, error) {
	rec, err := labelme.Load(path)
	if err != nil {
		return nil, err
	}
	if rec.ImagePath == "" {
		return nil, fmt.Errorf("annotation %q names no image", path)
	}

	imagePath := filepath.Join(filepath.Dir(path), filepath.FromSlash(strings.ReplaceAll(rec.ImagePath, `\`, "/")))
	img, err := imaging.Load(imagePath)
	if err != nil {
		return nil, err
	}

	p := &Package{ImagePath: imagePath, LabelPath: path, Image: img, Label: rec, CatIdx: catIdx}
	p.reconcile()
	return p, nil
}

// Blank returns an unsaved width x height Package filled with fill and
// carrying no shapes.
func Blank(width, height int, fill color.NRGBA) *Package {
	return own("", imaging.NewCanvas(width, height, fill), labelme.NewRecord("", width, height), NoCategory)
}

// LabelPathFor returns the annotation path paired with an image path.
func LabelPathFor(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".json"
}

// Width returns the buffer width in pixels.
func (p *Package) Width() int { return p.Image.Bounds().Dx() }

// Height returns the buffer height in pixels.
func (p *Package) Height() int { return p.Image.Bounds().Dy() }

// Shapes returns the annotation list. The slice is owned by p.
func (p *Package) Shapes() []labelme.Shape { return p.Label.Shapes }

// Rectangles returns the normalized rectangles of every well-formed
// rectangle shape, in list order.
func (p *Package) Rectangles() []geometry.Rect {
	var out []geometry.Rect
	for _, s := range p.Label.Shapes {
		if r, err := s.Rect(); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy of p.
func (p *Package) Clone() *Package {
	return &Package{
		ImagePath: p.ImagePath,
		LabelPath: p.LabelPath,
		Image:     imaging.Clone(p.Image),
		Label:     p.Label.Clone(),
		CatIdx:    p.CatIdx,
	}
}

// SetImagePath moves the package to a new image path. The annotation path
// follows it and the record's image name is updated to the new base name.
func (p *Package) SetImagePath(path string) {
	p.ImagePath = path
	p.LabelPath = LabelPathFor(path)
	p.Label.ImagePath = baseName(path)
}

// baseName is filepath.Base without the "." for an empty path.
func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// withShapes returns a package sharing nothing with p except paths and
// category, holding img and the given shapes.
func (p *Package) withShapes(img *image.NRGBA, shapes []labelme.Shape) *Package {
	rec := p.Label.Clone()
	rec.Shapes = shapes
	b := img.Bounds()
	rec.ImageWidth, rec.ImageHeight = b.Dx(), b.Dy()
	return &Package{
		ImagePath: p.ImagePath,
		LabelPath: p.LabelPath,
		Image:     img,
		Label:     rec,
		CatIdx:    p.CatIdx,
	}
}

func (p *Package) reconcile() {
	b := p.Image.Bounds()
	if p.Label.ImageWidth != b.Dx() || p.Label.ImageHeight != b.Dy() {
		logging.Warnf("%s: annotation size %dx%d does not match image %dx%d, using image size",
			p.displayName(), p.Label.ImageWidth, p.Label.ImageHeight, b.Dx(), b.Dy())
		p.Label.ImageWidth, p.Label.ImageHeight = b.Dx(), b.Dy()
	}
	if p.ImagePath != "" {
		if name := filepath.Base(p.ImagePath); p.Label.ImagePath != name {
			logging.Warnf("%s: annotation names image %q, using %q",
				p.displayName(), p.Label.ImagePath, name)
			p.Label.ImagePath = name
		}
	}
	for _, s := range p.Label.Shapes {
		if err := s.Validate(); err != nil {
			logging.Warnf("%s: %v", p.displayName(), err)
		}
	}
}

func (p *Package) displayName() string {
	switch {
	case p.LabelPath != "":
		return p.LabelPath
	case p.ImagePath != "":
		return p.ImagePath
	}
	return "<unsaved>"
}
