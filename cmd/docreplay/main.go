// docreplay replays a scripted editing session through the docrender
// pipeline and writes what it produced.
//
// A scenario is a YAML file describing the initial document, the open
// viewports and a list of edit batches. Each batch is applied to the
// document and run through the pipeline as one unit. After the last batch
// the composited surface of every tier and every thumbnail are written as
// PNG files, and a summary of the work done per batch is printed.
//
// With --trace the per-batch results (rewritten rectangles, thumbnail
// events, tile counts) are also written as deterministic CBOR, so two
// replays of the same scenario can be compared byte for byte.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/docrender"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		scenarioPath string
		outDir       string
		tracePath    string
		logLevel     string
		workers      int
	)

	flagSet := pflag.NewFlagSet("docreplay", pflag.ContinueOnError)
	flagSet.StringVarP(&scenarioPath, "scenario", "s", "", "path to the YAML scenario (required)")
	flagSet.StringVarP(&outDir, "out", "o", "docreplay-out", "directory for PNG outputs")
	flagSet.StringVar(&tracePath, "trace", "", "write a CBOR trace of every batch to this file")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flagSet.IntVar(&workers, "workers", 0, "compositing goroutines (0 = GOMAXPROCS)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	if scenarioPath == "" {
		return fmt.Errorf("--scenario is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", scenarioPath, err)
	}

	r, err := newReplayer(scenario, logger, docrender.WithWorkers(workers))
	if err != nil {
		return err
	}
	defer r.Close()

	results, err := r.run(context.Background(), scenario)
	if err != nil {
		return err
	}

	files, err := writeOutputs(outDir, r)
	if err != nil {
		return fmt.Errorf("writing outputs: %w", err)
	}
	if tracePath != "" {
		if err := writeTraceFile(tracePath, traceOf(results, r.labels)); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	printSummary(os.Stdout, results, files, outDir)
	return nil
}

// printSummary writes one line per batch and a total.
func printSummary(w io.Writer, results []batchResult, files int, outDir string) {
	p := message.NewPrinter(language.English)
	var redrawn, events int
	for _, br := range results {
		s := br.Result.Stats
		p.Fprintf(w, "%-16s %6d dirty %6d redrawn %6d pending %4d thumbnails %v\n",
			br.Name, s.Dirty, s.Redrawn, s.Pending, s.Events, s.Duration)
		redrawn += s.Redrawn
		events += s.Events
	}
	p.Fprintf(w, "%d batches, %d tiles redrawn, %d thumbnails updated, %d files written to %s\n",
		len(results), redrawn, events, files, outDir)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `docreplay replays a scripted editing session through the docrender pipeline.

Usage:
  docreplay --scenario FILE [flags]

Examples:
  # Replay a session and write PNGs to ./out
  docreplay --scenario session.yaml --out out

  # Record a trace for comparison between runs
  docreplay -s session.yaml --trace session.cbor --log-level debug

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
