package batch

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/ironsheep/dataset-aug/internal/compose"
	"github.com/ironsheep/dataset-aug/internal/config"
	"github.com/ironsheep/dataset-aug/internal/datapkg"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
	"github.com/ironsheep/dataset-aug/internal/logging"
	"github.com/ironsheep/dataset-aug/internal/stats"
)

// DefaultMaxTries is used when a paste job leaves max_tries unset.
const DefaultMaxTries = 20

var errNoInputs = errors.New("no input files")

func (r *runner) cropItems() error {
	margins, err := datapkg.MarginsFromSlice(r.job.Margins)
	if err != nil {
		return err
	}
	pred := labelme.LabelFilter(r.job.Include, r.job.Exclude, r.job.Prefix, r.job.Suffix)

	files, err := r.list(r.job.SrcDirs, LabelPatterns)
	if err != nil {
		return err
	}
	return r.each(files, func(path string) error {
		p, err := datapkg.FromLabelPath(path, datapkg.NoCategory)
		if err != nil {
			return err
		}
		items, err := p.CropRectangleItems(r.job.DstDir, margins, pred)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := r.save(it, p.ImagePath); err != nil {
				return err
			}
		}
		logging.Diagf("%s: %d items", path, len(items))
		return nil
	})
}

func (r *runner) rotate() error {
	files, err := r.list(r.job.SrcDirs, LabelPatterns)
	if err != nil {
		return err
	}
	return r.each(files, func(path string) error {
		p, err := datapkg.FromLabelPath(path, datapkg.NoCategory)
		if err != nil {
			return err
		}
		rotated, err := p.Rotate(r.job.Degrees)
		if err != nil {
			return err
		}
		rotated.SetImagePath(filepath.Join(r.job.DstDir, filepath.Base(p.ImagePath)))
		return r.save(rotated, p.ImagePath)
	})
}

func (r *runner) relabel() error {
	files, err := r.list(r.job.SrcDirs, LabelPatterns)
	if err != nil {
		return err
	}
	return r.each(files, func(path string) error {
		rec, err := labelme.Load(path)
		if err != nil {
			return err
		}
		changed := 0
		for i, s := range rec.Shapes {
			if to := Relabel(s.Label, r.job.Rename, r.job.Rules); to != s.Label {
				rec.Shapes[i].Label = to
				changed++
			}
		}
		dst := filepath.Join(r.job.DstDir, filepath.Base(path))
		if err := labelme.Save(dst, rec); err != nil {
			return err
		}
		logging.Diagf("%s: %d labels changed", path, changed)
		r.res.Written = append(r.res.Written, dst)
		return r.record("", dst, len(rec.Shapes), []string{path})
	})
}

// stripImageData rewrites every annotation file in place. Saving always
// writes imageData as null.
func (r *runner) stripImageData() error {
	files, err := r.list(r.job.SrcDirs, LabelPatterns)
	if err != nil {
		return err
	}
	return r.each(files, func(path string) error {
		rec, err := labelme.Load(path)
		if err != nil {
			return err
		}
		if err := labelme.Save(path, rec); err != nil {
			return err
		}
		r.res.Written = append(r.res.Written, path)
		return nil
	})
}

func (r *runner) split() error {
	files, err := r.list(r.job.SrcDirs, LabelPatterns)
	if err != nil {
		return err
	}
	return r.each(files, func(path string) error {
		p, err := datapkg.FromLabelPath(path, datapkg.NoCategory)
		if err != nil {
			return err
		}
		if len(p.Shapes()) == 0 {
			logging.Warnf("%s: no shapes, not split", path)
			r.res.Skipped++
			return nil
		}
		label := p.Shapes()[0].Label
		dir, ok := splitDir(label, r.job.Splits)
		if !ok {
			logging.Warnf("%s: no split rule for label %q", path, label)
			r.res.Skipped++
			return nil
		}
		if r.job.DstDir != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(r.job.DstDir, dir)
		}
		src := p.ImagePath
		p.SetImagePath(filepath.Join(dir, filepath.Base(src)))
		return r.save(p, src)
	})
}

// pools lists the images of each directory separately so a directory can
// be weighted by listing it more than once.
func (r *runner) pools(dirs []string) ([][]string, error) {
	var pools [][]string
	for _, dir := range dirs {
		files, err := r.list([]string{dir}, ImagePatterns)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			logging.Warnf("%s: no images", dir)
			continue
		}
		pools = append(pools, files)
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("%w under %v", errNoInputs, dirs)
	}
	return pools, nil
}

// pick draws a directory uniformly, then a file of it uniformly.
func (r *runner) pick(pools [][]string) string {
	pool := pools[r.env.RNG.IntN(len(pools))]
	return pool[r.env.RNG.IntN(len(pool))]
}

func (r *runner) mosaic() error {
	pools, err := r.pools(r.job.SrcDirs)
	if err != nil {
		return err
	}
	ring := r.job.Layout == config.LayoutRing
	return r.times(r.job.NumToGen, func() error {
		n := r.job.Rows * r.job.Cols
		if ring {
			n = compose.RingTiles
		}
		paths := make([]string, n)
		for i := range paths {
			paths[i] = r.pick(pools)
		}
		tiles, err := r.loadAll(paths)
		if err != nil {
			return err
		}
		fill, err := r.fill(tiles[0])
		if err != nil {
			return err
		}
		var m *datapkg.Package
		if ring {
			m, err = compose.MosaicRing(tiles, r.job.Width, r.ringLoc(), fill)
		} else {
			m, err = compose.MosaicMxN(tiles, r.mosaicOptions(fill), r.env.RNG)
		}
		if err != nil {
			return err
		}
		return r.saveNew(m, paths)
	})
}

func (r *runner) ringLoc() int {
	if r.job.RingLoc != nil {
		return *r.job.RingLoc
	}
	return r.env.RNG.IntN(4)
}

func (r *runner) paste() error {
	bgPools, err := r.pools(r.job.BgDirs)
	if err != nil {
		return err
	}
	fgDirs := append([]string(nil), r.job.SrcDirs...)
	for _, g := range r.job.FgGroups {
		fgDirs = append(fgDirs, g...)
	}
	fg, err := r.foreground(fgDirs)
	if err != nil {
		return err
	}

	return r.times(r.job.NumToGen, func() error {
		bgPath := r.pick(bgPools)
		bg, err := r.load(bgPath)
		if err != nil {
			return err
		}
		dst, err := compose.RandomCrop(bg, r.job.Width, r.job.Height, r.env.RNG)
		if err != nil {
			return err
		}
		rep, err := compose.PasteIterInPlace(dst, fg, r.pasteOptions(), r.env.RNG)
		if err != nil {
			return err
		}
		logging.Diagf("pasted %d, skipped %d", rep.Pasted, rep.Skipped)
		return r.saveNew(dst, []string{bgPath})
	})
}

// synth builds every mosaic cell online: a background crop with
// foreground pasted on it from one randomly chosen group.
func (r *runner) synth() error {
	bgPools, err := r.pools(r.job.BgDirs)
	if err != nil {
		return err
	}
	groups := make([]compose.Source, len(r.job.FgGroups))
	for i, dirs := range r.job.FgGroups {
		if groups[i], err = r.foreground(dirs); err != nil {
			return fmt.Errorf("fg group %d: %w", i, err)
		}
	}

	cells := compose.GridCells(r.job.Width, r.job.Height, r.job.Rows, r.job.Cols)
	return r.times(r.job.NumToGen, func() error {
		var (
			tiles   []*datapkg.Package
			sources []string
		)
		for _, cell := range cells {
			// Leave room for the jitter so no pasted item is cut.
			w, h := cell.Dx()-r.job.JitterX, cell.Dy()-r.job.JitterY
			if w < 1 || h < 1 {
				return fmt.Errorf("%w: jitter %dx%d, cell %dx%d", compose.ErrJitterTooLarge, r.job.JitterX, r.job.JitterY, cell.Dx(), cell.Dy())
			}
			bgPath := r.pick(bgPools)
			bg, err := r.load(bgPath)
			if err != nil {
				return err
			}
			tile, err := compose.RandomCrop(bg, w, h, r.env.RNG)
			if err != nil {
				return err
			}
			g := r.env.RNG.IntN(len(groups))
			if _, err := compose.PasteIterInPlace(tile, groups[g], r.pasteOptions(), r.env.RNG); err != nil {
				return err
			}
			tiles = append(tiles, tile)
			sources = append(sources, bgPath)
		}

		fill, err := r.fill(tiles[0])
		if err != nil {
			return err
		}
		m, err := compose.MosaicMxN(tiles, r.mosaicOptions(fill), r.env.RNG)
		if err != nil {
			return err
		}
		return r.saveNew(m, sources)
	})
}

func (r *runner) stats() error {
	files, err := r.list(r.job.SrcDirs, LabelPatterns)
	if err != nil {
		return err
	}
	counts, err := stats.Count(files)
	if err != nil {
		return err
	}
	r.res.Stats = counts
	r.res.Processed = counts.Files

	if r.job.Output == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.job.Output), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(r.job.Output)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	if err := stats.RenderHTML(f, counts, r.job.Title); err != nil {
		return err
	}
	r.res.Written = append(r.res.Written, r.job.Output)
	return f.Close()
}

// foreground loads every image under dirs into a shuffled cycle.
func (r *runner) foreground(dirs []string) (compose.Source, error) {
	files, err := r.list(dirs, ImagePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %v", errNoInputs, dirs)
	}
	pkgs, err := r.loadAll(files)
	if err != nil {
		return nil, err
	}
	return compose.NewShuffledCycle(r.env.RNG, pkgs...), nil
}

func (r *runner) fill(ref *datapkg.Package) (color.NRGBA, error) {
	if r.job.Fill == imaging.FillAuto {
		return imaging.DominantColor(ref.Image), nil
	}
	return imaging.ParseFill(r.job.Fill)
}

func (r *runner) mosaicOptions(fill color.NRGBA) compose.MosaicOptions {
	return compose.MosaicOptions{
		Width:   r.job.Width,
		Height:  r.job.Height,
		Rows:    r.job.Rows,
		Cols:    r.job.Cols,
		JitterX: r.job.JitterX,
		JitterY: r.job.JitterY,
		Fill:    fill,
	}
}

func (r *runner) pasteOptions() compose.PasteOptions {
	tries := r.job.MaxTries
	if tries == 0 {
		tries = DefaultMaxTries
	}
	return compose.PasteOptions{
		Count:         r.job.NumToPaste,
		AllowOverlap:  r.job.AllowOverlap,
		MaxTries:      tries,
		OverlapMargin: r.job.OverlapMargin,
	}
}

// saveNew names a synthesized package after a fresh UUID, keeping the
// extension of its first source.
func (r *runner) saveNew(p *datapkg.Package, sources []string) error {
	ext := ".png"
	if len(sources) > 0 && filepath.Ext(sources[0]) != "" {
		ext = filepath.Ext(sources[0])
	}
	name, err := r.newName(ext)
	if err != nil {
		return err
	}
	p.SetImagePath(filepath.Join(r.job.DstDir, name))
	return r.save(p, sources...)
}
