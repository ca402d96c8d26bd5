// Package config defines batch jobs and loads them from JSON job files.
//
// A job file holds an optional seed and a list of jobs run in order:
//
//	{
//	  "seed": 7,
//	  "jobs": [
//	    {"op": "crop-items", "src_dirs": ["raw"], "dst_dir": "fg", "margins": [5, 5, 5, 5], "suffix": "_with_pad"},
//	    {"op": "mosaic", "src_dirs": ["fg"], "dst_dir": "out", "width": 960, "height": 960, "rows": 2, "cols": 2, "num_to_gen": 200}
//	  ]
//	}
//
// The same Job struct is filled by the CLI flags and the MCP tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Environment variables read by the CLI and the MCP server.
const (
	EnvLogLevel = "DATASET_AUG_LOG_LEVEL"
	EnvSeed     = "DATASET_AUG_SEED"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// ErrInvalidJob reports a job whose parameters do not fit its op.
var ErrInvalidJob = errors.New("invalid job")

// Op names one batch operation.
type Op string

const (
	OpCropItems      Op = "crop-items"
	OpRotate         Op = "rotate"
	OpRelabel        Op = "relabel"
	OpStripImageData Op = "strip-image-data"
	OpSplit          Op = "split"
	OpMosaic         Op = "mosaic"
	OpPaste          Op = "paste"
	OpSynth          Op = "synth"
	OpStats          Op = "stats"
)

// Mosaic layouts.
const (
	LayoutGrid = "grid"
	// LayoutRing is a square canvas split 3x3: one tile fills a 2x2 corner
	// block and five tiles fill the rest of the border.
	LayoutRing = "ring"
)

// Ops lists every known op in documentation order.
func Ops() []Op {
	return []Op{OpCropItems, OpRotate, OpRelabel, OpStripImageData, OpSplit, OpMosaic, OpPaste, OpSynth, OpStats}
}

// LabelRule rewrites labels that start with Prefix and end with Suffix to
// To. Empty Prefix or Suffix matches anything.
type LabelRule struct {
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
	To     string `json:"to"`
}

// SplitRule sends packages whose first label starts with Prefix to Dir.
type SplitRule struct {
	Prefix string `json:"prefix"`
	Dir    string `json:"dir"`
}

// Job is one batch operation and all of its parameters. Fields that do not
// apply to Op are ignored.
type Job struct {
	Op       Op       `json:"op"`
	SrcDirs  []string `json:"src_dirs,omitempty"`
	DstDir   string   `json:"dst_dir,omitempty"`
	Patterns []string `json:"patterns,omitempty"`

	// ContinueOnError logs and skips failing items instead of aborting.
	ContinueOnError bool `json:"continue_on_error,omitempty"`

	// crop-items
	Margins []int    `json:"margins,omitempty"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Prefix  string   `json:"prefix,omitempty"`
	Suffix  string   `json:"suffix,omitempty"`

	// rotate
	Degrees int `json:"degrees,omitempty"`

	// relabel
	Rename map[string]string `json:"rename,omitempty"`
	Rules  []LabelRule       `json:"rules,omitempty"`

	// split
	Splits []SplitRule `json:"splits,omitempty"`

	// mosaic, paste, synth
	NumToGen int    `json:"num_to_gen,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Cols     int    `json:"cols,omitempty"`
	JitterX  int    `json:"jitter_x,omitempty"`
	JitterY  int    `json:"jitter_y,omitempty"`
	Fill     string `json:"fill,omitempty"`

	// mosaic only. RingLoc picks the corner of the big ring tile, 0 to 3
	// clockwise from top-left; nil draws one per output.
	Layout  string `json:"layout,omitempty"`
	RingLoc *int   `json:"ring_loc,omitempty"`

	// paste, synth
	BgDirs        []string   `json:"bg_dirs,omitempty"`
	FgGroups      [][]string `json:"fg_groups,omitempty"`
	NumToPaste    int        `json:"num_to_paste,omitempty"`
	AllowOverlap  bool       `json:"allow_overlap,omitempty"`
	MaxTries      int        `json:"max_tries,omitempty"`
	OverlapMargin float64    `json:"overlap_margin,omitempty"`

	// stats
	Output string `json:"output,omitempty"`
	Title  string `json:"title,omitempty"`
}

// File is the content of a job file.
type File struct {
	Seed *uint64 `json:"seed,omitempty"`
	Jobs []Job   `json:"jobs"`
}

// Load reads and validates a job file. The path must end in .json and the
// file must be under 1MB.
func Load(path string) (*File, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("job file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat job file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("job file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("%w: job file %q lists no jobs", ErrInvalidJob, path)
	}
	for i := range f.Jobs {
		if err := f.Jobs[i].Validate(); err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
	}
	return &f, nil
}

// SeedFromEnv returns the seed in DATASET_AUG_SEED, if set.
func SeedFromEnv() (uint64, bool, error) {
	s := os.Getenv(EnvSeed)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", EnvSeed, s, err)
	}
	return v, true, nil
}

// Validate checks that the job carries what its op needs.
func (j *Job) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidJob, j.Op, fmt.Sprintf(format, args...))
	}

	switch j.Op {
	case OpCropItems, OpRotate, OpRelabel, OpStripImageData, OpSplit, OpMosaic, OpPaste, OpSynth, OpStats:
	case "":
		return fmt.Errorf("%w: missing op", ErrInvalidJob)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidJob, j.Op)
	}

	if len(j.SrcDirs) == 0 && j.Op != OpPaste && j.Op != OpSynth {
		return bad("src_dirs is required")
	}

	switch j.Op {
	case OpCropItems, OpRotate, OpRelabel, OpMosaic, OpPaste, OpSynth:
		if j.DstDir == "" {
			return bad("dst_dir is required")
		}
	}

	switch j.Op {
	case OpCropItems:
		if n := len(j.Margins); n != 0 && n != 1 && n != 4 {
			return bad("margins takes 1 or 4 values, got %d", n)
		}
		for _, m := range j.Margins {
			if m < 0 {
				return bad("negative margin %d", m)
			}
		}
	case OpRotate:
		switch j.Degrees {
		case -90, 90, 180, 270:
		default:
			return bad("degrees must be -90, 90, 180 or 270, got %d", j.Degrees)
		}
	case OpRelabel:
		if len(j.Rename) == 0 && len(j.Rules) == 0 {
			return bad("rename or rules is required")
		}
	case OpSplit:
		if len(j.Splits) == 0 {
			return bad("splits is required")
		}
		for _, s := range j.Splits {
			if s.Dir == "" {
				return bad("split rule for prefix %q has no dir", s.Prefix)
			}
		}
	case OpMosaic:
		var err error
		switch j.Layout {
		case "", LayoutGrid:
			err = j.validateGrid()
		case LayoutRing:
			err = j.validateRing()
		default:
			return bad("unknown layout %q", j.Layout)
		}
		if err != nil {
			return bad("%v", err)
		}
	case OpPaste:
		if len(j.SrcDirs) == 0 && len(j.FgGroups) == 0 {
			return bad("src_dirs or fg_groups is required")
		}
		if len(j.BgDirs) == 0 {
			return bad("bg_dirs is required")
		}
		if err := j.validatePaste(); err != nil {
			return bad("%v", err)
		}
	case OpSynth:
		if len(j.BgDirs) == 0 || len(j.FgGroups) == 0 {
			return bad("bg_dirs and fg_groups are required")
		}
		if j.Layout != "" && j.Layout != LayoutGrid {
			return bad("layout %q is only supported by mosaic", j.Layout)
		}
		if err := j.validateGrid(); err != nil {
			return bad("%v", err)
		}
		if err := j.validatePaste(); err != nil {
			return bad("%v", err)
		}
	}
	return nil
}

func (j *Job) validateGrid() error {
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", j.Width, j.Height)
	}
	if j.Rows <= 0 || j.Cols <= 0 {
		return fmt.Errorf("rows and cols must be positive, got %dx%d", j.Rows, j.Cols)
	}
	if j.NumToGen <= 0 {
		return fmt.Errorf("num_to_gen must be positive, got %d", j.NumToGen)
	}
	if j.JitterX < 0 || j.JitterY < 0 {
		return fmt.Errorf("jitter must be non-negative")
	}
	return nil
}

func (j *Job) validateRing() error {
	if j.Width < 3 || j.Width != j.Height {
		return fmt.Errorf("ring layout needs a square canvas of at least 3x3, got %dx%d", j.Width, j.Height)
	}
	if j.NumToGen <= 0 {
		return fmt.Errorf("num_to_gen must be positive, got %d", j.NumToGen)
	}
	if j.RingLoc != nil && (*j.RingLoc < 0 || *j.RingLoc > 3) {
		return fmt.Errorf("ring_loc must be 0..3, got %d", *j.RingLoc)
	}
	return nil
}

func (j *Job) validatePaste() error {
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", j.Width, j.Height)
	}
	if j.NumToGen <= 0 {
		return fmt.Errorf("num_to_gen must be positive, got %d", j.NumToGen)
	}
	if j.NumToPaste <= 0 {
		return fmt.Errorf("num_to_paste must be positive, got %d", j.NumToPaste)
	}
	if j.MaxTries < 0 || j.OverlapMargin < 0 {
		return fmt.Errorf("max_tries and overlap_margin must be non-negative")
	}
	return nil
}
