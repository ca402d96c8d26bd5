package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/dataset-aug/internal/config"
	"github.com/ironsheep/dataset-aug/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	logging.FromEnv(os.Getenv(config.EnvLogLevel))

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "dataset-aug %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case "--help", "-h", "help":
		printUsage(stdout)
		return nil
	case "run":
		return runFile(rest, stdout, stderr)
	case "info":
		return runInfo(rest, stdout, stderr)
	case "preview":
		return runPreview(rest, stderr)
	case "mcp":
		return runServer(rest, stderr)
	}

	for _, op := range config.Ops() {
		if command == string(op) {
			return runJob(op, rest, stdout, stderr)
		}
	}
	fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `dataset-aug - labelme dataset augmentation

Usage: dataset-aug <command> [options] [src-dir...]

Commands:
  crop-items        Crop rectangle annotations into their own images
  rotate            Rotate images and annotations by a multiple of 90 degrees
  relabel           Rewrite shape labels
  strip-image-data  Set imageData to null in annotation files
  split             Copy images into directories chosen by label prefix
  mosaic            Build grid or ring mosaics from random annotated tiles
  paste             Paste foreground items onto background crops
  synth             Build mosaics of background crops with pasted items
  stats             Count shapes per label and type
  info              Print size and label counts of annotated images
  preview           Draw the annotations of one image into a new file
  run               Run a JSON job file (-config jobs.json)
  mcp               Serve the operations as MCP tools over stdin/stdout
  version           Print version information
  help              Print this help message

Common flags:
  -seed N              RNG seed for reproducible output
  -manifest FILE       SQLite database recording every written file
  -continue-on-error   Skip failing items instead of aborting

Run "dataset-aug <command> -h" for the flags of one command.

Environment variables:
  DATASET_AUG_LOG_LEVEL=debug    Enable per-item logging
  DATASET_AUG_SEED=N             Seed used when -seed is not given

Examples:
  dataset-aug crop-items -src raw -dst fg -margins 5 -suffix _with_pad
  dataset-aug rotate -src fg -dst fg_cw -degrees 90
  dataset-aug relabel -src raw -dst raw -rule 'R*=R_body' -rename land=Land
  dataset-aug mosaic -src fg -dst out -width 960 -height 960 -rows 2 -cols 2 -n 200 -seed 7
  dataset-aug mosaic -src fg -dst out -width 960 -height 960 -layout ring -n 50
  dataset-aug synth -bg bg -fg fg/R -fg fg/C -dst out -width 960 -height 960 -num-to-paste 3 -n 50
`)
}
