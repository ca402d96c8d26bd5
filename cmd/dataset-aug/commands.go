package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ironsheep/dataset-aug/internal/batch"
	"github.com/ironsheep/dataset-aug/internal/config"
	"github.com/ironsheep/dataset-aug/internal/manifest"
	"github.com/ironsheep/dataset-aug/internal/server"
)

// common holds the flags every running subcommand takes.
type common struct {
	seed     seedFlag
	manifest string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.Var(&c.seed, "seed", "RNG seed (default $"+config.EnvSeed+", then the clock)")
	fs.StringVar(&c.manifest, "manifest", "", "SQLite manifest recording every written file")
}

// env resolves the seed and opens the manifest. fileSeed is used when no
// -seed flag was given.
func (c *common) env(fileSeed *uint64) (batch.Env, func(), error) {
	explicit := c.seed.ptr()
	if explicit == nil {
		explicit = fileSeed
	}
	seed, err := batch.ResolveSeed(explicit)
	if err != nil {
		return batch.Env{}, nil, err
	}
	env := batch.NewEnv(seed)
	closer := func() {}
	if c.manifest != "" {
		db, err := manifest.Open(c.manifest)
		if err != nil {
			return batch.Env{}, nil, err
		}
		env.Manifest = db
		closer = func() { db.Close() }
	}
	return env, closer, nil
}

// jobCommand parses the flags of one batch op into a job.
type jobCommand struct {
	fs     *flag.FlagSet
	job    config.Job
	common common
}

func newJobCommand(op config.Op, stderr io.Writer) *jobCommand {
	c := &jobCommand{fs: flag.NewFlagSet(string(op), flag.ContinueOnError)}
	c.fs.SetOutput(stderr)
	c.job.Op = op
	j := &c.job

	c.common.register(c.fs)
	c.fs.Var((*listFlag)(&j.SrcDirs), "src", "Input directory, repeatable or comma separated")
	c.fs.Var((*listFlag)(&j.Patterns), "pattern", "File name glob, repeatable")
	c.fs.BoolVar(&j.ContinueOnError, "continue-on-error", false, "Log and skip failing items instead of aborting")
	if op != config.OpStripImageData && op != config.OpStats {
		c.fs.StringVar(&j.DstDir, "dst", "", "Output directory")
	}

	switch op {
	case config.OpCropItems:
		c.fs.Var((*intListFlag)(&j.Margins), "margins", "Margin in pixels: one value or top,bottom,left,right")
		c.fs.Var((*listFlag)(&j.Include), "include", "Only crop these labels")
		c.fs.Var((*listFlag)(&j.Exclude), "exclude", "Never crop these labels")
		c.fs.StringVar(&j.Prefix, "prefix", "", "Only crop labels starting with this")
		c.fs.StringVar(&j.Suffix, "suffix", "", "Only crop labels ending with this")
	case config.OpRotate:
		c.fs.IntVar(&j.Degrees, "degrees", 90, "Clockwise rotation: -90, 90, 180 or 270")
	case config.OpRelabel:
		j.Rename = map[string]string{}
		c.fs.Var(renameFlag(j.Rename), "rename", "Exact rename old=new, repeatable")
		c.fs.Var((*ruleFlag)(&j.Rules), "rule", "Rule PREFIX*SUFFIX=TO, repeatable, first match wins")
	case config.OpSplit:
		c.fs.Var((*splitFlag)(&j.Splits), "split", "Rule PREFIX=DIR, repeatable, first match wins")
	case config.OpMosaic:
		c.gridFlags()
		c.fs.StringVar(&j.Layout, "layout", config.LayoutGrid, `Layout: "grid" or "ring" (square canvas, six tiles)`)
		c.fs.Var(optIntFlag{&j.RingLoc}, "ring-loc", "Corner of the big ring tile, 0-3 clockwise from top-left (default random)")
	case config.OpPaste:
		c.sizeFlags()
		c.pasteFlags()
	case config.OpSynth:
		c.gridFlags()
		c.pasteFlags()
	case config.OpStats:
		c.fs.StringVar(&j.Output, "output", "", "HTML report path")
		c.fs.StringVar(&j.Title, "title", "", "HTML report title")
	}
	return c
}

func (c *jobCommand) sizeFlags() {
	c.fs.IntVar(&c.job.NumToGen, "n", 1, "Number of outputs")
	c.fs.IntVar(&c.job.Width, "width", 0, "Output width")
	c.fs.IntVar(&c.job.Height, "height", 0, "Output height")
}

func (c *jobCommand) gridFlags() {
	c.sizeFlags()
	c.fs.IntVar(&c.job.Rows, "rows", 2, "Grid rows")
	c.fs.IntVar(&c.job.Cols, "cols", 2, "Grid columns")
	c.fs.IntVar(&c.job.JitterX, "jitter-x", 0, "Maximum horizontal offset inside a cell")
	c.fs.IntVar(&c.job.JitterY, "jitter-y", 0, "Maximum vertical offset inside a cell")
	c.fs.StringVar(&c.job.Fill, "fill", "", `Fill: grey level, r,g,b, hex or "auto" (default black)`)
}

func (c *jobCommand) pasteFlags() {
	c.fs.Var((*listFlag)(&c.job.BgDirs), "bg", "Background directory, repeatable")
	c.fs.Var((*groupFlag)(&c.job.FgGroups), "fg", "Foreground group, comma separated directories, repeatable")
	c.fs.IntVar(&c.job.NumToPaste, "num-to-paste", 1, "Items pasted per output")
	c.fs.BoolVar(&c.job.AllowOverlap, "allow-overlap", false, "Allow pasted items to overlap")
	c.fs.IntVar(&c.job.MaxTries, "max-tries", batch.DefaultMaxTries, "Placement attempts per item")
	c.fs.Float64Var(&c.job.OverlapMargin, "overlap-margin", 0, "Extra pixels around each placement")
}

// parse fills the job from args. Positional arguments are added to the
// source directories.
func (c *jobCommand) parse(args []string) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	c.job.SrcDirs = append(c.job.SrcDirs, c.fs.Args()...)
	return c.job.Validate()
}

func runJob(op config.Op, args []string, stdout, stderr io.Writer) error {
	c := newJobCommand(op, stderr)
	if err := c.parse(args); err != nil {
		return err
	}
	env, closeEnv, err := c.common.env(nil)
	if err != nil {
		return err
	}
	defer closeEnv()

	res, err := batch.Run(c.job, env)
	if res != nil {
		printJSON(stdout, res)
	}
	return err
}

func runFile(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	path := fs.String("config", "", "Job file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		fs.Usage()
		return fmt.Errorf("-config is required")
	}

	f, err := config.Load(*path)
	if err != nil {
		return err
	}
	env, closeEnv, err := c.env(f.Seed)
	if err != nil {
		return err
	}
	defer closeEnv()

	results, err := batch.RunFile(f, env)
	printJSON(stdout, results)
	return err
}

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: info <image-or-json>...")
	}
	for _, path := range fs.Args() {
		info, err := batch.Info(path)
		if err != nil {
			return err
		}
		printJSON(stdout, info)
	}
	return nil
}

func runPreview(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "Image or annotation file (required)")
	out := fs.String("out", "", "Preview image path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return fmt.Errorf("-in and -out are required")
	}
	return batch.Preview(*in, *out)
}

func runServer(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	env, closeEnv, err := c.env(nil)
	if err != nil {
		return err
	}
	defer closeEnv()

	return server.New(env, Version).Run()
}

func printJSON(w io.Writer, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%v\n", v)
		return
	}
	fmt.Fprintln(w, string(b))
}
