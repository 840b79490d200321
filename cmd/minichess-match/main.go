// Command minichess-match plays a batch of games between two agents and
// prints the results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/match"
	"github.com/hailam/minichess/internal/storage"
)

func main() {
	fs := pflag.NewFlagSet("minichess-match", pflag.ExitOnError)
	config.RegisterFlags(fs)
	listAgents := fs.Bool("list-agents", false, "list agent kinds and exit")
	perftDepth := fs.Int("perft", 0, "count move-tree leaves to this depth from --fen and exit")

	cfg := &config.Config{}
	if err := cfg.Load(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()

	switch {
	case *listAgents:
		for _, k := range agent.Kinds() {
			fmt.Printf("%-8s %s\n", k, agent.Describe(k))
		}
		return
	case *perftDepth > 0:
		if err := perft(cfg.Match.StartFEN, *perftDepth); err != nil {
			log.Fatal().Err(err).Msg("perft")
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("match failed")
	}
}

func run(cfg *config.Config) error {
	m, err := newMatch(cfg.Match)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runner match.Runner
	var store *storage.Storage
	if cfg.Storage.Enabled {
		store, err = storage.Open(storage.Options{Dir: cfg.Storage.Dir, InMemory: cfg.Storage.InMemory})
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()
		runner.OnGame = store.SaveGame
	}

	log.Info().
		Str("id", m.ID()).
		Str("white", m.White.String()).
		Str("black", m.Black.String()).
		Int("games", m.Games).
		Int("parallel", m.Parallel).
		Msg("starting match")

	summary, err := runner.Run(ctx, m)
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.SaveSummary(summary); err != nil {
			return fmt.Errorf("saving summary: %w", err)
		}
	}
	return summary.Report(os.Stdout)
}

func newMatch(mc config.MatchConfig) (match.Match, error) {
	white, err := agent.ParseSpec(mc.White)
	if err != nil {
		return match.Match{}, fmt.Errorf("white: %w", err)
	}
	black, err := agent.ParseSpec(mc.Black)
	if err != nil {
		return match.Match{}, fmt.Errorf("black: %w", err)
	}
	return match.Match{
		White:      white,
		Black:      black,
		Games:      mc.Games,
		SwapColors: mc.SwapColors,
		MaxPlies:   mc.MaxPlies,
		Seed:       mc.Seed,
		Parallel:   mc.Parallel,
		PrintEvery: mc.PrintEvery,
		StartFEN:   mc.StartFEN,
	}, nil
}

func perft(fen string, depth int) error {
	s := board.InitialState()
	if fen != "" {
		var err error
		if s, err = board.StateFromFEN(fen); err != nil {
			return err
		}
	}
	for d := 1; d <= depth; d++ {
		pos := s.Position()
		start := time.Now()
		nodes := engine.Perft(&pos, d)
		fmt.Printf("perft(%d) = %d (%s)\n", d, nodes, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
