package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/dataset-aug/internal/datapkg"
)

var (
	ErrTooManyTiles   = errors.New("more tiles than mosaic cells")
	ErrTileCount      = errors.New("wrong number of tiles")
	ErrBadGrid        = errors.New("invalid mosaic grid")
	ErrJitterTooLarge = errors.New("jitter not smaller than a mosaic cell")
	ErrBadLocation    = errors.New("ring mosaic location must be 0..3")
	ErrTooSmall       = errors.New("source smaller than requested region")
)

// MosaicOptions describes an M x N grid mosaic.
type MosaicOptions struct {
	Width, Height int
	Rows, Cols    int
	// JitterX and JitterY bound the random offset added to each cell
	// anchor. Both must be smaller than the narrowest cell.
	JitterX, JitterY int
	Fill             color.NRGBA
}

// GridCells divides a width x height canvas into rows x cols cells whose
// boundaries are rounded from the exact fractions, so cells may differ by
// a pixel. Cells are listed column by column: all rows of the first
// column, then the second column, and so on.
func GridCells(width, height, rows, cols int) []image.Rectangle {
	xs := boundaries(width, cols)
	ys := boundaries(height, rows)
	cells := make([]image.Rectangle, 0, rows*cols)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			cells = append(cells, image.Rect(xs[i], ys[j], xs[i+1], ys[j+1]))
		}
	}
	return cells
}

func boundaries(size, n int) []int {
	b := make([]int, n+1)
	for i := range b {
		b[i] = int(math.RoundToEven(float64(i) * float64(size) / float64(n)))
	}
	return b
}

// MosaicMxN places pkgs[k] into cell k of GridCells on a canvas filled
// with opts.Fill. Each tile is shifted from its cell anchor by a random
// jitter in [0, JitterX] x [0, JitterY] and cropped to what is left of the
// cell, so tiles never overlap. Fewer tiles than cells leaves the
// remaining cells empty.
func MosaicMxN(pkgs []*datapkg.Package, opts MosaicOptions, rng *rand.Rand) (*datapkg.Package, error) {
	if opts.Rows < 1 || opts.Cols < 1 || opts.Width < opts.Cols || opts.Height < opts.Rows {
		return nil, fmt.Errorf("%w: %dx%d cells on %dx%d", ErrBadGrid, opts.Cols, opts.Rows, opts.Width, opts.Height)
	}
	if len(pkgs) > opts.Rows*opts.Cols {
		return nil, fmt.Errorf("%w: %d tiles for %d cells", ErrTooManyTiles, len(pkgs), opts.Rows*opts.Cols)
	}
	if opts.JitterX < 0 || opts.JitterY < 0 {
		return nil, fmt.Errorf("%w: negative jitter", ErrJitterTooLarge)
	}

	cells := GridCells(opts.Width, opts.Height, opts.Rows, opts.Cols)
	for _, c := range cells {
		if opts.JitterX >= c.Dx() || opts.JitterY >= c.Dy() {
			return nil, fmt.Errorf("%w: jitter %dx%d, cell %dx%d", ErrJitterTooLarge, opts.JitterX, opts.JitterY, c.Dx(), c.Dy())
		}
	}

	dst := datapkg.Blank(opts.Width, opts.Height, opts.Fill)
	for k, p := range pkgs {
		cell := cells[k]
		at := cell.Min.Add(image.Pt(jitter(rng, opts.JitterX), jitter(rng, opts.JitterY)))
		if err := placeInCell(dst, p, image.Rectangle{Min: at, Max: cell.Max}); err != nil {
			return nil, fmt.Errorf("tile %d: %w", k, err)
		}
	}
	return dst, nil
}

func jitter(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.IntN(n + 1)
}

// placeInCell crops p to the size of cell and pastes it at the cell's
// top-left corner.
func placeInCell(dst, p *datapkg.Package, cell image.Rectangle) error {
	tile, err := p.Crop(0, 0, cell.Dx()-1, cell.Dy()-1)
	if err != nil {
		return err
	}
	return dst.PasteInPlace(tile, cell.Min.X, cell.Min.Y)
}

// ring lists the border cells of a 3x3 grid clockwise from the top-left.
var ring = [8]image.Point{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}}

// RingCells returns the six cells of the ring mosaic on a size x size
// canvas split into a 3x3 grid. The first cell is the 2x2 block in the
// corner picked by loc (0 top-left, 1 top-right, 2 bottom-right,
// 3 bottom-left); the other five follow the remaining border clockwise.
func RingCells(size, loc int) ([]image.Rectangle, error) {
	if loc < 0 || loc > 3 {
		return nil, fmt.Errorf("%w: got %d", ErrBadLocation, loc)
	}
	b := boundaries(size, 3)
	unit := func(p image.Point) image.Rectangle {
		return image.Rect(b[p.X], b[p.Y], b[p.X+1], b[p.Y+1])
	}

	corner := 2 * loc
	c := ring[corner]
	// The big cell spans the corner and the centre.
	big := unit(c).Union(unit(image.Pt(1, 1)))

	cells := []image.Rectangle{big}
	for i := 2; i <= 6; i++ {
		cells = append(cells, unit(ring[(corner+i)%len(ring)]))
	}
	return cells, nil
}

// RingTiles is the number of tiles MosaicRing takes.
const RingTiles = 6

// MosaicRing composes exactly six packages: the first fills the big cell of
// RingCells and the rest fill the small cells in order. Tiles are cropped
// to their cells.
func MosaicRing(pkgs []*datapkg.Package, size, loc int, fill color.NRGBA) (*datapkg.Package, error) {
	if len(pkgs) != RingTiles {
		return nil, fmt.Errorf("%w: ring mosaic takes %d tiles, got %d", ErrTileCount, RingTiles, len(pkgs))
	}
	if size < 3 {
		return nil, fmt.Errorf("%w: ring mosaic of size %d", ErrBadGrid, size)
	}
	cells, err := RingCells(size, loc)
	if err != nil {
		return nil, err
	}

	dst := datapkg.Blank(size, size, fill)
	for k, p := range pkgs {
		if err := placeInCell(dst, p, cells[k]); err != nil {
			return nil, fmt.Errorf("tile %d: %w", k, err)
		}
	}
	return dst, nil
}

// RandomCrop cuts a uniformly placed width x height region out of p.
func RandomCrop(p *datapkg.Package, width, height int, rng *rand.Rand) (*datapkg.Package, error) {
	if width < 1 || height < 1 || width > p.Width() || height > p.Height() {
		return nil, fmt.Errorf("%w: %dx%d from %dx%d", ErrTooSmall, width, height, p.Width(), p.Height())
	}
	x := rng.IntN(p.Width() - width + 1)
	y := rng.IntN(p.Height() - height + 1)
	return p.Crop(x, y, x+width-1, y+height-1)
}
