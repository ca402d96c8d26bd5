// Package batch runs one dataset operation over every matching file of a
// set of directories.
//
// Each driver lists its inputs, builds a package per file, applies one
// transform or composition and saves the result. Drivers run sequentially.
// By default the first failing item aborts the job; with
// Job.ContinueOnError the item is logged and skipped instead.
package batch

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/dataset-aug/internal/config"
	"github.com/ironsheep/dataset-aug/internal/datapkg"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
	"github.com/ironsheep/dataset-aug/internal/logging"
	"github.com/ironsheep/dataset-aug/internal/manifest"
	"github.com/ironsheep/dataset-aug/internal/stats"
)

// Env carries what every job of a run shares.
type Env struct {
	// Seed is recorded in the manifest next to every output.
	Seed uint64
	RNG  *rand.Rand
	// Manifest, when set, receives an entry per saved output.
	Manifest *manifest.DB
	// Images, when set, keeps decoded sources across jobs.
	Images *imaging.ImageCache
}

// NewEnv returns an Env whose RNG is seeded from seed.
func NewEnv(seed uint64) Env {
	return Env{Seed: seed, RNG: NewRNG(seed), Images: imaging.NewImageCache()}
}

// NewRNG returns a PCG generator seeded from seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ResolveSeed picks the run seed: explicit when given, then
// DATASET_AUG_SEED, then the clock. The choice is logged so any run can be
// repeated.
func ResolveSeed(explicit *uint64) (uint64, error) {
	if explicit != nil {
		logging.Opsf("seed %d", *explicit)
		return *explicit, nil
	}
	seed, ok, err := config.SeedFromEnv()
	if err != nil {
		return 0, err
	}
	if ok {
		logging.Opsf("seed %d (from %s)", seed, config.EnvSeed)
		return seed, nil
	}
	seed = uint64(time.Now().UnixNano())
	logging.Opsf("seed %d (from clock)", seed)
	return seed, nil
}

// Result summarizes one job.
type Result struct {
	Op        config.Op     `json:"op"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Written   []string      `json:"written,omitempty"`
	Stats     *stats.Counts `json:"stats,omitempty"`
}

// Run validates job and runs it.
func Run(job config.Job, env Env) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if env.RNG == nil {
		env.RNG = NewRNG(env.Seed)
	}

	r := &runner{
		job:   job,
		env:   env,
		res:   &Result{Op: job.Op},
		cache: make(map[string]*datapkg.Package),
	}

	logging.Opsf("%s: starting", job.Op)
	var err error
	switch job.Op {
	case config.OpCropItems:
		err = r.cropItems()
	case config.OpRotate:
		err = r.rotate()
	case config.OpRelabel:
		err = r.relabel()
	case config.OpStripImageData:
		err = r.stripImageData()
	case config.OpSplit:
		err = r.split()
	case config.OpMosaic:
		err = r.mosaic()
	case config.OpPaste:
		err = r.paste()
	case config.OpSynth:
		err = r.synth()
	case config.OpStats:
		err = r.stats()
	default:
		err = fmt.Errorf("%w: unknown op %q", config.ErrInvalidJob, job.Op)
	}
	if err != nil {
		return r.res, fmt.Errorf("%s: %w", job.Op, err)
	}
	logging.Opsf("%s: done, %d processed, %d written, %d skipped, %d failed",
		job.Op, r.res.Processed, len(r.res.Written), r.res.Skipped, r.res.Failed)
	return r.res, nil
}

// RunFile runs every job of f in order, stopping at the first error.
// Images decoded for the file are released from env.Images when it returns.
func RunFile(f *config.File, env Env) ([]*Result, error) {
	if env.Images != nil {
		defer func() {
			logging.Diagf("releasing %d cached images", env.Images.Len())
			env.Images.Clear()
		}()
	}
	var results []*Result
	for i, job := range f.Jobs {
		logging.Opsf("job %d/%d", i+1, len(f.Jobs))
		res, err := Run(job, env)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, fmt.Errorf("job %d: %w", i, err)
		}
	}
	return results, nil
}

type runner struct {
	job   config.Job
	env   Env
	res   *Result
	cache map[string]*datapkg.Package
}

// each calls fn on every item, applying the job's error policy.
func (r *runner) each(items []string, fn func(string) error) error {
	for i, item := range items {
		logging.Diagf("[%d/%d] %s", i+1, len(items), item)
		if err := fn(item); err != nil {
			if !r.job.ContinueOnError {
				return fmt.Errorf("%s: %w", item, err)
			}
			logging.Warnf("%s: %v, skipping", item, err)
			r.res.Failed++
			continue
		}
		r.res.Processed++
	}
	return nil
}

// times is each over n generated outputs.
func (r *runner) times(n int, fn func() error) error {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("output %d", i+1)
	}
	return r.each(items, func(string) error { return fn() })
}

func (r *runner) list(dirs, defaults []string) ([]string, error) {
	patterns := r.job.Patterns
	if len(patterns) == 0 {
		patterns = defaults
	}
	files, err := ListFiles(dirs, patterns)
	if err != nil {
		return nil, err
	}
	logging.Opsf("%s: %d files under %v", r.job.Op, len(files), dirs)
	return files, nil
}

// load returns the package for an image path, sharing loaded packages
// between outputs. Callers must not modify the result.
func (r *runner) load(path string) (*datapkg.Package, error) {
	if p, ok := r.cache[path]; ok {
		return p, nil
	}
	p, err := r.open(path)
	if err != nil {
		return nil, err
	}
	r.cache[path] = p
	return p, nil
}

func (r *runner) open(path string) (*datapkg.Package, error) {
	if r.env.Images == nil {
		return datapkg.FromImagePath(path, datapkg.NoCategory)
	}
	img, err := r.env.Images.Load(path)
	if err != nil {
		return nil, err
	}
	labelPath := datapkg.LabelPathFor(path)
	var rec *labelme.Record
	if _, statErr := os.Stat(labelPath); statErr == nil {
		if rec, err = labelme.Load(labelPath); err != nil {
			return nil, err
		}
	}
	return datapkg.New(path, img, labelPath, rec, datapkg.NoCategory), nil
}

func (r *runner) loadAll(paths []string) ([]*datapkg.Package, error) {
	pkgs := make([]*datapkg.Package, 0, len(paths))
	for _, path := range paths {
		p, err := r.load(path)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// save writes p and records it.
func (r *runner) save(p *datapkg.Package, sources ...string) error {
	ok, err := p.Save()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if r.env.Images != nil {
		r.env.Images.Evict(p.ImagePath)
	}
	r.res.Written = append(r.res.Written, p.ImagePath)
	return r.record(p.ImagePath, p.LabelPath, len(p.Shapes()), sources)
}

func (r *runner) record(imagePath, labelPath string, shapes int, sources []string) error {
	if r.env.Manifest == nil {
		return nil
	}
	return r.env.Manifest.Record(manifest.Entry{
		Op:        string(r.job.Op),
		ImagePath: imagePath,
		LabelPath: labelPath,
		Sources:   sources,
		Seed:      r.env.Seed,
		Shapes:    shapes,
	})
}

// newName returns a fresh file name drawn from the run's RNG, so a seeded
// run names its outputs the same way every time.
func (r *runner) newName(ext string) (string, error) {
	id, err := uuid.NewRandomFromReader(rngReader{r.env.RNG})
	if err != nil {
		return "", err
	}
	return id.String() + ext, nil
}

type rngReader struct {
	rng *rand.Rand
}

func (rr rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.rng.Uint32())
	}
	return len(p), nil
}
