package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/dataset-aug/internal/datapkg"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/stats"
)

// PackageInfo describes one image and annotation pair.
type PackageInfo struct {
	ImagePath string         `json:"image_path"`
	LabelPath string         `json:"label_path"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Format    string         `json:"format"`
	FileSize  int64          `json:"file_size_bytes"`
	Shapes    int            `json:"shapes"`
	Labels    []stats.Bucket `json:"labels"`
}

// Open loads a package from either its image or its annotation path.
func Open(path string) (*datapkg.Package, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return datapkg.FromLabelPath(path, datapkg.NoCategory)
	}
	if !imaging.IsImageFile(path) {
		return nil, fmt.Errorf("%s: not an image or annotation file", path)
	}
	return datapkg.FromImagePath(path, datapkg.NoCategory)
}

// Info loads the package at path and summarizes it.
func Info(path string) (*PackageInfo, error) {
	p, err := Open(path)
	if err != nil {
		return nil, err
	}
	file, err := imaging.LoadImageInfo(p.ImagePath)
	if err != nil {
		return nil, err
	}
	c := &stats.Counts{Labels: map[string]int{}, Types: map[string]int{}}
	c.Add(p.Label)
	return &PackageInfo{
		ImagePath: p.ImagePath,
		LabelPath: p.LabelPath,
		Width:     p.Width(),
		Height:    p.Height(),
		Format:    file.Format,
		FileSize:  file.FileSizeBytes,
		Shapes:    len(p.Shapes()),
		Labels:    stats.Sorted(c.Labels),
	}, nil
}

// Preview renders the annotations of the package at path into out.
func Preview(path, out string) error {
	p, err := Open(path)
	if err != nil {
		return err
	}
	return imaging.Save(out, p.Preview())
}
