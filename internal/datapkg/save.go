package datapkg

import (
	"image"
	"image/color"

	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
	"github.com/ironsheep/dataset-aug/internal/logging"
)

// SaveImage writes the buffer to ImagePath. It reports false, with a
// warning, when no path is set.
func (p *Package) SaveImage() (bool, error) {
	if p.ImagePath == "" {
		logging.Warnf("no image path set, image not saved")
		return false, nil
	}
	if err := imaging.Save(p.ImagePath, p.Image); err != nil {
		return false, err
	}
	logging.Diagf("saved image %s", p.ImagePath)
	return true, nil
}

// SaveLabel writes the annotation record to LabelPath. It reports false,
// with a warning, when no path is set.
func (p *Package) SaveLabel() (bool, error) {
	if p.LabelPath == "" {
		logging.Warnf("no annotation path set, annotation not saved")
		return false, nil
	}
	if err := labelme.Save(p.LabelPath, p.Label); err != nil {
		return false, err
	}
	logging.Diagf("saved annotation %s", p.LabelPath)
	return true, nil
}

// Save writes both files. It reports true only when both were written.
func (p *Package) Save() (bool, error) {
	okImg, err := p.SaveImage()
	if err != nil {
		return false, err
	}
	okLabel, err := p.SaveLabel()
	if err != nil {
		return false, err
	}
	return okImg && okLabel, nil
}

// Preview returns a copy of the buffer with rectangle outlines drawn in a
// per-label colour and a marker on every point shape. Each shape's label is
// written above its first point, or below it at the top edge.
func (p *Package) Preview() *image.NRGBA {
	img := imaging.Clone(p.Image)
	thickness := max(1, min(p.Width(), p.Height())/300)
	for _, s := range p.Label.Shapes {
		c := imaging.LabelColor(s.Label)
		rounded := s.Round()
		if len(rounded.Points) == 0 {
			continue
		}
		if r, err := rounded.Rect(); err == nil {
			imaging.DrawRect(img, image.Rect(int(r.Min.X), int(r.Min.Y), int(r.Max.X), int(r.Max.Y)), c, thickness)
			drawShapeLabel(img, int(r.Min.X), int(r.Min.Y), s.Label, c)
			continue
		}
		for _, pt := range rounded.Points {
			imaging.DrawMarker(img, int(pt[0]), int(pt[1]), thickness+1, c)
		}
		drawShapeLabel(img, int(rounded.Points[0][0]), int(rounded.Points[0][1]), s.Label, c)
	}
	return img
}

func drawShapeLabel(img *image.NRGBA, x, y int, label string, c color.NRGBA) {
	if label == "" {
		return
	}
	_, h := imaging.LabelSize(label)
	if y-h >= 0 {
		y -= h
	}
	imaging.DrawLabel(img, x, y, label, black, c)
}
