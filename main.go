// MiniChess - an interactive shell for Gardner 5x5 chess
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/shell"
	"github.com/hailam/minichess/internal/storage"
)

func main() {
	fs := pflag.NewFlagSet("minichess", pflag.ExitOnError)
	config.RegisterFlags(fs)

	cfg := &config.Config{}
	if err := cfg.Load(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()
	log.Debug().Interface("settings", cfg.Settings()).Msg("loaded config")

	var store *storage.Storage
	if cfg.Storage.Enabled {
		var err error
		store, err = storage.Open(storage.Options{Dir: cfg.Storage.Dir, InMemory: cfg.Storage.InMemory})
		if err != nil {
			log.Fatal().Err(err).Msg("opening storage")
		}
		defer store.Close()
	}

	sc, err := shell.NewShellController(cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("starting shell")
	}

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Debug().Msg("got quit signal...")
		close(done)
	}()

	// Positional arguments run as a single command instead of the loop.
	if line := strings.TrimSpace(strings.Join(fs.Args(), " ")); line != "" {
		sc.Execute(line)
		sig <- syscall.SIGINT
	} else {
		go sc.Loop(sig)
	}

	<-done
}
