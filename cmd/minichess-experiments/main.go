// Command minichess-experiments runs an experiment matrix comparing agents,
// writes the results as CSV and prints an analysis.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/experiment"
	"github.com/hailam/minichess/internal/storage"
)

func main() {
	fs := pflag.NewFlagSet("minichess-experiments", pflag.ExitOnError)
	config.RegisterFlags(fs)
	matrixPath := fs.String("matrix", "", "YAML experiment matrix (default: built-in matrix)")
	types := fs.StringSlice("types", nil, "only run experiments of these types")
	dryRun := fs.Bool("dry-run", false, "list the experiments without running them")
	out := fs.String("out", "", "CSV output path (default: results dir, timestamped)")
	analyze := fs.String("analyze", "", "analyze an existing results CSV and exit")

	cfg := &config.Config{}
	if err := cfg.Load(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()

	if *analyze != "" {
		rows, err := experiment.LoadCSV(*analyze)
		if err != nil {
			log.Fatal().Err(err).Msg("loading results")
		}
		if err := experiment.Report(os.Stdout, rows); err != nil {
			log.Fatal().Err(err).Msg("writing report")
		}
		return
	}

	matrix := experiment.DefaultMatrix()
	if *matrixPath != "" {
		var err error
		if matrix, err = config.LoadMatrix(*matrixPath); err != nil {
			log.Fatal().Err(err).Msg("loading matrix")
		}
	}

	var filter []config.ExperimentType
	for _, t := range *types {
		filter = append(filter, config.ExperimentType(t))
	}
	exps := matrix.Filter(filter...)
	if len(exps) == 0 {
		log.Fatal().Strs("types", *types).Msg("no experiments selected")
	}

	if *dryRun {
		for _, e := range exps {
			fmt.Printf("%-8s %-13s %3d games  %s vs %s  (%s)\n", e.ID, e.Type, e.Games, e.White, e.Black, e.Description)
		}
		return
	}

	if err := run(cfg, exps, *out); err != nil {
		log.Fatal().Err(err).Msg("experiments failed")
	}
}

func run(cfg *config.Config, exps []config.Experiment, out string) error {
	if out == "" {
		dir, err := storage.GetResultsDir()
		if err != nil {
			return err
		}
		out = filepath.Join(dir, "experiments_"+time.Now().Format("20060102_150405")+".csv")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := experiment.Options{Parallel: cfg.Match.Parallel}
	if cfg.Storage.Enabled {
		store, err := storage.Open(storage.Options{Dir: cfg.Storage.Dir, InMemory: cfg.Storage.InMemory})
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()
		opts.Store = store
	}

	start := time.Now()
	rows, runErr := experiment.Run(ctx, exps, opts)
	if len(rows) > 0 {
		if err := experiment.SaveCSV(out, rows); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		log.Info().Str("path", out).Int("experiments", len(rows)).Msg("results saved")
	}
	if runErr != nil {
		return runErr
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("all experiments complete")
	return experiment.Report(os.Stdout, rows)
}
