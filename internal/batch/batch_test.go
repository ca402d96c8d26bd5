package batch

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/dataset-aug/internal/config"
	"github.com/ironsheep/dataset-aug/internal/datapkg"
	"github.com/ironsheep/dataset-aug/internal/labelme"
	"github.com/ironsheep/dataset-aug/internal/manifest"
)

// writePackage saves a w x h package of one colour as dir/name.png and
// dir/name.json.
func writePackage(t *testing.T, dir, name string, w, h int, c color.NRGBA, shapes ...labelme.Shape) string {
	t.Helper()
	p := datapkg.Blank(w, h, c)
	p.Label.Shapes = append(p.Label.Shapes, shapes...)
	p.SetImagePath(filepath.Join(dir, name+".png"))
	ok, err := p.Save()
	require.NoError(t, err)
	require.True(t, ok)
	return p.LabelPath
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"b.json", "a.png", "sub/c.json", "sub/deep/d.json", "sub/e.txt"} {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	}

	files, err := ListFiles([]string{root, filepath.Join(root, "sub")}, []string{"*.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "b.json"),
		filepath.Join(root, "sub", "c.json"),
		filepath.Join(root, "sub", "deep", "d.json"),
	}, files)

	_, err = ListFiles([]string{root}, []string{"[bad"})
	assert.Error(t, err)
}

func TestRelabel(t *testing.T) {
	rename := map[string]string{"land": "Land"}
	rules := []config.LabelRule{
		{Prefix: "8P4R", Suffix: "body", To: "8P4R_body"},
		{Prefix: "R", Suffix: "with_pad", To: "R_with_pad"},
		{Prefix: "R", To: "R_body"},
	}
	tests := map[string]string{
		"land":           "Land",
		"8P4R_0402_body": "8P4R_body",
		"R0603_with_pad": "R_with_pad",
		"R0603_15um":     "R_body",
		"C0402_15um":     "C0402_15um",
	}
	for in, want := range tests {
		assert.Equal(t, want, Relabel(in, rename, rules), in)
	}
}

func TestRun_CropItems(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writePackage(t, src, "board", 40, 40, color.NRGBA{G: 90},
		labelme.NewRectangle("R_with_pad", 5, 5, 15, 15),
		labelme.NewRectangle("R_body", 7, 7, 13, 13),
		labelme.NewRectangle("C_with_pad", 20, 20, 30, 30),
	)

	res, err := Run(config.Job{
		Op: config.OpCropItems, SrcDirs: []string{src}, DstDir: dst,
		Margins: []int{2}, Prefix: "R", Suffix: "_with_pad",
	}, NewEnv(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	require.Equal(t, []string{filepath.Join(dst, "board_3_3_17_17.png")}, res.Written)

	p, err := datapkg.FromImagePath(res.Written[0], datapkg.NoCategory)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Width())
	require.Len(t, p.Shapes(), 2)
	assert.Equal(t, []labelme.Point{{2, 2}, {12, 12}}, p.Shapes()[0].Points)
}

func TestRun_Rotate(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writePackage(t, src, "a", 30, 20, color.NRGBA{R: 1}, labelme.NewRectangle("x", 0, 0, 4, 2))

	res, err := Run(config.Job{Op: config.OpRotate, SrcDirs: []string{src}, DstDir: dst, Degrees: 90}, NewEnv(1))
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	p, err := datapkg.FromImagePath(filepath.Join(dst, "a.png"), datapkg.NoCategory)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Width())
	assert.Equal(t, 30, p.Height())
	assert.Equal(t, []labelme.Point{{17, 0}, {19, 4}}, p.Shapes()[0].Points)
}

func TestRun_ContinueOnError(t *testing.T) {
	src := t.TempDir()
	writePackage(t, src, "good", 10, 10, color.NRGBA{})
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.json"), []byte("{not json"), 0644))

	job := config.Job{Op: config.OpRotate, SrcDirs: []string{src}, DstDir: t.TempDir(), Degrees: 180}

	_, err := Run(job, NewEnv(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")

	job.ContinueOnError = true
	res, err := Run(job, NewEnv(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed)
}

func TestRun_RelabelAndStrip(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writePackage(t, src, "a", 10, 10, color.NRGBA{},
		labelme.NewRectangle("R0603_with_pad", 0, 0, 1, 1),
		labelme.NewRectangle("land", 2, 2, 3, 3),
	)

	_, err := Run(config.Job{
		Op: config.OpRelabel, SrcDirs: []string{src}, DstDir: dst,
		Rename: map[string]string{"land": "Land"},
		Rules:  []config.LabelRule{{Prefix: "R", Suffix: "with_pad", To: "R_with_pad"}},
	}, NewEnv(1))
	require.NoError(t, err)

	rec, err := labelme.Load(filepath.Join(dst, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "R_with_pad", rec.Shapes[0].Label)
	assert.Equal(t, "Land", rec.Shapes[1].Label)

	raw := `{"version": "4.5.7", "flags": {}, "shapes": [], "imagePath": "x.png", "imageData": "aGVsbG8=", "imageHeight": 1, "imageWidth": 1}`
	path := filepath.Join(dst, "x.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	_, err = Run(config.Job{Op: config.OpStripImageData, SrcDirs: []string{dst}, Patterns: []string{"x.json"}}, NewEnv(1))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"imageData": null`)
}

func TestRun_Split(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writePackage(t, src, "r1", 8, 8, color.NRGBA{}, labelme.NewRectangle("R_body", 0, 0, 1, 1))
	writePackage(t, src, "led1", 8, 8, color.NRGBA{}, labelme.NewRectangle("LED_body", 0, 0, 1, 1))
	writePackage(t, src, "odd", 8, 8, color.NRGBA{}, labelme.NewRectangle("Q_body", 0, 0, 1, 1))

	res, err := Run(config.Job{
		Op: config.OpSplit, SrcDirs: []string{src}, DstDir: dst,
		Splits: []config.SplitRule{{Prefix: "R", Dir: "rc"}, {Prefix: "LED", Dir: "led"}},
	}, NewEnv(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.FileExists(t, filepath.Join(dst, "rc", "r1.png"))
	assert.FileExists(t, filepath.Join(dst, "rc", "r1.json"))
	assert.FileExists(t, filepath.Join(dst, "led", "led1.png"))
	assert.NoFileExists(t, filepath.Join(dst, "rc", "odd.png"))
}

func TestRun_MosaicWithManifest(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	for i, name := range []string{"a", "b", "c"} {
		writePackage(t, src, name, 20, 20, color.NRGBA{R: uint8(40 * (i + 1))}, labelme.NewRectangle(name, 2, 2, 10, 10))
	}

	db, err := manifest.Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	defer db.Close()

	env := NewEnv(99)
	env.Manifest = db
	job := config.Job{
		Op: config.OpMosaic, SrcDirs: []string{src}, DstDir: dst,
		Width: 40, Height: 40, Rows: 2, Cols: 2, NumToGen: 2, Fill: "114",
	}
	res, err := Run(job, env)
	require.NoError(t, err)
	require.Len(t, res.Written, 2)

	for _, path := range res.Written {
		p, err := datapkg.FromImagePath(path, datapkg.NoCategory)
		require.NoError(t, err)
		assert.Equal(t, 40, p.Width())
		assert.Len(t, p.Shapes(), 4)
	}

	entries, err := db.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "mosaic", entries[0].Op)
	assert.Equal(t, uint64(99), entries[0].Seed)
	assert.Len(t, entries[0].Sources, 4)

	again, err := Run(job, NewEnv(99))
	require.NoError(t, err)
	assert.Equal(t, res.Written, again.Written, "same seed should name outputs the same way")
}

func TestRun_RingMosaic(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		writePackage(t, src, name, 20, 20, color.NRGBA{B: 120}, labelme.NewRectangle(name, 2, 2, 10, 10))
	}

	loc := 0
	job := config.Job{
		Op: config.OpMosaic, SrcDirs: []string{src}, DstDir: dst,
		Width: 60, Height: 60, NumToGen: 1, Layout: config.LayoutRing, RingLoc: &loc,
	}
	res, err := Run(job, NewEnv(8))
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	p, err := datapkg.FromImagePath(res.Written[0], datapkg.NoCategory)
	require.NoError(t, err)
	assert.Equal(t, 60, p.Width())
	require.Len(t, p.Shapes(), 6)
	// The big tile sits in the top-left corner.
	assert.Equal(t, []labelme.Point{{2, 2}, {10, 10}}, p.Shapes()[0].Points)
}

func TestRun_Paste(t *testing.T) {
	bg, fg, dst := t.TempDir(), t.TempDir(), t.TempDir()
	writePackage(t, bg, "bg", 100, 100, color.NRGBA{B: 200})
	writePackage(t, fg, "f1", 10, 10, color.NRGBA{R: 200}, labelme.NewRectangle("f", 0, 0, 9, 9))
	writePackage(t, fg, "f2", 8, 12, color.NRGBA{G: 200}, labelme.NewRectangle("g", 0, 0, 7, 11))

	res, err := Run(config.Job{
		Op: config.OpPaste, SrcDirs: []string{fg}, BgDirs: []string{bg}, DstDir: dst,
		Width: 60, Height: 60, NumToGen: 2, NumToPaste: 4, OverlapMargin: 2,
	}, NewEnv(5))
	require.NoError(t, err)
	require.Len(t, res.Written, 2)

	p, err := datapkg.FromImagePath(res.Written[0], datapkg.NoCategory)
	require.NoError(t, err)
	assert.Equal(t, 60, p.Width())
	assert.NotEmpty(t, p.Shapes())
}

func TestRun_Synth(t *testing.T) {
	bg, fg, dst := t.TempDir(), t.TempDir(), t.TempDir()
	writePackage(t, bg, "bg", 80, 80, color.NRGBA{B: 100})
	writePackage(t, fg, "f1", 6, 6, color.NRGBA{R: 200}, labelme.NewRectangle("f", 0, 0, 5, 5))

	res, err := Run(config.Job{
		Op: config.OpSynth, FgGroups: [][]string{{fg}}, BgDirs: []string{bg}, DstDir: dst,
		Width: 64, Height: 64, Rows: 2, Cols: 2, JitterX: 4, JitterY: 4,
		NumToGen: 1, NumToPaste: 2, AllowOverlap: true,
	}, NewEnv(3))
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	p, err := datapkg.FromImagePath(res.Written[0], datapkg.NoCategory)
	require.NoError(t, err)
	assert.Equal(t, 64, p.Width())
	// Scaled items can round one pixel past their tile and be dropped.
	assert.NotEmpty(t, p.Shapes())
	assert.LessOrEqual(t, len(p.Shapes()), 8)
}

func TestRun_Stats(t *testing.T) {
	src := t.TempDir()
	writePackage(t, src, "a", 8, 8, color.NRGBA{}, labelme.NewRectangle("R_body", 0, 0, 1, 1))
	writePackage(t, src, "b", 8, 8, color.NRGBA{}, labelme.NewRectangle("R_body", 0, 0, 1, 1), labelme.NewRectangle("C_body", 2, 2, 3, 3))
	out := filepath.Join(t.TempDir(), "report", "labels.html")

	res, err := Run(config.Job{Op: config.OpStats, SrcDirs: []string{src}, Output: out}, NewEnv(1))
	require.NoError(t, err)
	require.NotNil(t, res.Stats)
	assert.Equal(t, map[string]int{"R_body": 2, "C_body": 1}, res.Stats.Labels)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "C_body"))
}

func TestInfoAndPreview(t *testing.T) {
	dir := t.TempDir()
	labelPath := writePackage(t, dir, "a", 12, 9, color.NRGBA{}, labelme.NewRectangle("x", 1, 1, 5, 5))

	info, err := Info(labelPath)
	require.NoError(t, err)
	assert.Equal(t, 12, info.Width)
	assert.Equal(t, 9, info.Height)
	assert.Equal(t, 1, info.Shapes)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.FileSize)

	_, err = Info(filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)

	out := filepath.Join(dir, "preview.png")
	require.NoError(t, Preview(filepath.Join(dir, "a.png"), out))
	assert.FileExists(t, out)
}

func TestRunFile_StopsAtFirstError(t *testing.T) {
	f := &config.File{Jobs: []config.Job{
		{Op: config.OpStats, SrcDirs: []string{t.TempDir()}},
		{Op: config.OpRotate, SrcDirs: []string{filepath.Join(t.TempDir(), "missing")}, DstDir: t.TempDir(), Degrees: 90},
		{Op: config.OpStats, SrcDirs: []string{t.TempDir()}},
	}}
	results, err := RunFile(f, NewEnv(1))
	require.Error(t, err)
	assert.Len(t, results, 2)
}

func TestRunFile_ReleasesCachedImages(t *testing.T) {
	src := t.TempDir()
	writePackage(t, src, "a", 20, 20, color.NRGBA{R: 90}, labelme.NewRectangle("a", 1, 1, 8, 8))
	writePackage(t, src, "b", 20, 20, color.NRGBA{G: 90}, labelme.NewRectangle("b", 1, 1, 8, 8))
	job := config.Job{
		Op: config.OpMosaic, SrcDirs: []string{src}, DstDir: t.TempDir(),
		Width: 40, Height: 40, Rows: 2, Cols: 2, NumToGen: 1,
	}

	env := NewEnv(5)
	_, err := Run(job, env)
	require.NoError(t, err)
	assert.Positive(t, env.Images.Len(), "mosaic tiles should be cached across a single job")

	_, err = RunFile(&config.File{Jobs: []config.Job{job}}, env)
	require.NoError(t, err)
	assert.Zero(t, env.Images.Len())
}
