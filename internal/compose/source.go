// Package compose builds synthetic scenes out of annotated packages:
// random pasting with overlap avoidance, grid mosaics and the six-cell
// ring mosaic.
//
// All randomness comes from the *rand.Rand passed in, so a fixed seed
// reproduces a scene exactly.
package compose

import (
	"io"
	"math/rand/v2"

	"github.com/ironsheep/dataset-aug/internal/datapkg"
)

// Source yields packages one at a time. Next returns io.EOF once the source
// is exhausted.
type Source interface {
	Next() (*datapkg.Package, error)
}

// SliceSource yields each package of a slice once.
type SliceSource struct {
	pkgs []*datapkg.Package
	pos  int
}

// NewSliceSource returns a finite source over pkgs.
func NewSliceSource(pkgs ...*datapkg.Package) *SliceSource {
	return &SliceSource{pkgs: pkgs}
}

// Next implements Source.
func (s *SliceSource) Next() (*datapkg.Package, error) {
	if s.pos >= len(s.pkgs) {
		return nil, io.EOF
	}
	p := s.pkgs[s.pos]
	s.pos++
	return p, nil
}

// Cycle loops over a slice forever, optionally reshuffling every pass.
// An empty cycle is exhausted immediately.
type Cycle struct {
	pkgs  []*datapkg.Package
	order []int
	pos   int
	rng   *rand.Rand
}

// NewCycle returns a source that restarts from the first package after the
// last one.
func NewCycle(pkgs ...*datapkg.Package) *Cycle {
	c := &Cycle{pkgs: pkgs, order: make([]int, len(pkgs))}
	for i := range c.order {
		c.order[i] = i
	}
	return c
}

// NewShuffledCycle is NewCycle with a fresh random order on every pass.
func NewShuffledCycle(rng *rand.Rand, pkgs ...*datapkg.Package) *Cycle {
	c := NewCycle(pkgs...)
	c.rng = rng
	c.shuffle()
	return c
}

// Next implements Source.
func (c *Cycle) Next() (*datapkg.Package, error) {
	if len(c.pkgs) == 0 {
		return nil, io.EOF
	}
	if c.pos == len(c.order) {
		c.pos = 0
		c.shuffle()
	}
	p := c.pkgs[c.order[c.pos]]
	c.pos++
	return p, nil
}

func (c *Cycle) shuffle() {
	if c.rng == nil {
		return
	}
	c.rng.Shuffle(len(c.order), func(i, j int) {
		c.order[i], c.order[j] = c.order[j], c.order[i]
	})
}
