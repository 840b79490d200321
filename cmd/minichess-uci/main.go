// Command minichess-uci runs the minimax engine behind the UCI protocol on
// stdin and stdout. Logs go to stderr.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/uci"
)

func main() {
	fs := pflag.NewFlagSet("minichess-uci", pflag.ExitOnError)
	config.RegisterFlags(fs)
	cpuprofile := fs.String("cpuprofile", "", "write cpu profile to file")

	cfg := &config.Config{}
	if err := cfg.Load(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	eng, err := newEngine(cfg.Engine)
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}

	protocol := uci.New(eng, os.Stdout)
	if err := protocol.Run(os.Stdin); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}

// newEngine builds the minimax engine from the configured agent spec; "go"
// commands without limits use its depth and move time.
func newEngine(ec config.EngineConfig) (*engine.Minimax, error) {
	spec, err := agent.ParseSpec(ec.Agent)
	if err != nil {
		return nil, err
	}
	if spec.Kind != agent.KindMinimax {
		return nil, fmt.Errorf("uci needs a minimax agent, got %q", ec.Agent)
	}
	limits := engine.SearchLimits{Depth: spec.Depth, MoveTime: spec.TimeLimit}
	if limits.MoveTime == 0 {
		limits.MoveTime = ec.MoveTime
	}
	tt := spec.TTSizeMB
	if tt == 0 {
		tt = ec.TTSizeMB
	}
	return engine.NewMinimax(limits, tt), nil
}
