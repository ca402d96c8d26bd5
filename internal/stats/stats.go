// Package stats tallies annotation shapes over a set of label files and
// renders the tallies as an HTML bar chart report.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ironsheep/dataset-aug/internal/labelme"
)

// Counts holds shape tallies over a set of annotation files.
type Counts struct {
	Files  int            `json:"files"`
	Shapes int            `json:"shapes"`
	Labels map[string]int `json:"labels"`
	Types  map[string]int `json:"types"`
	// Invalid counts shapes that break the point count rule of their kind.
	Invalid int `json:"invalid"`
}

// Bucket is one entry of a sorted tally.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Count loads every annotation file in paths and tallies its shapes.
func Count(paths []string) (*Counts, error) {
	c := &Counts{Labels: map[string]int{}, Types: map[string]int{}}
	for _, path := range paths {
		rec, err := labelme.Load(path)
		if err != nil {
			return nil, err
		}
		c.Add(rec)
	}
	return c, nil
}

// Add tallies the shapes of one record.
func (c *Counts) Add(rec *labelme.Record) {
	c.Files++
	for _, s := range rec.Shapes {
		c.Shapes++
		c.Labels[s.Label]++
		c.Types[string(s.ShapeType)]++
		if s.Validate() != nil {
			c.Invalid++
		}
	}
}

// Sorted returns the tally in descending count order, ties by name.
func Sorted(m map[string]int) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, v := range m {
		out = append(out, Bucket{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RenderHTML writes a page with one bar chart per label and per shape type.
func RenderHTML(w io.Writer, c *Counts, title string) error {
	if title == "" {
		title = "Dataset labels"
	}
	subtitle := fmt.Sprintf("files=%d shapes=%d invalid=%d", c.Files, c.Shapes, c.Invalid)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		bar(title, subtitle, "labels", Sorted(c.Labels)),
		bar("Shape types", "", "types", Sorted(c.Types)),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func bar(title, subtitle, series string, buckets []Bucket) *charts.Bar {
	x := make([]string, len(buckets))
	y := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		x[i] = b.Name
		y[i] = opts.BarData{Value: b.Count}
	}

	b := charts.NewBar()
	b.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 30}}),
	)
	b.SetXAxis(x).
		AddSeries(series, y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return b
}
