package match

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/minichess/internal/agent"
)

// Match describes a batch of games between two agent specs. White plays the
// white pieces in even games; with SwapColors the colours alternate.
type Match struct {
	White      agent.Spec
	Black      agent.Spec
	Games      int
	SwapColors bool
	MaxPlies   int
	Seed       uint64
	Parallel   int
	PrintEvery int
	StartFEN   string
}

// ID returns a stable identifier for the match configuration.
func (m Match) ID() string {
	key := fmt.Sprintf("%s|%s|%d|%t|%d|%d|%s",
		m.White, m.Black, m.Games, m.SwapColors, m.MaxPlies, m.Seed, m.StartFEN)
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// GameSeed derives the seed handed to the agent playing role ("a" or "b")
// in game index.
func (m Match) GameSeed(index int, role string) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%d/%d/%s", m.Seed, index, role))
}

// agents builds fresh agents for game index, returning them in colour order.
func (m Match) agents(index int) (white, black agent.Agent, swapped bool, err error) {
	a := m.White
	if a.Stochastic() && a.Seed == nil {
		a = a.WithSeed(m.GameSeed(index, "a"))
	}
	b := m.Black
	if b.Stochastic() && b.Seed == nil {
		b = b.WithSeed(m.GameSeed(index, "b"))
	}

	agentA, err := agent.New(a)
	if err != nil {
		return nil, nil, false, err
	}
	agentB, err := agent.New(b)
	if err != nil {
		return nil, nil, false, err
	}

	if m.SwapColors && index%2 == 1 {
		return agentB, agentA, true, nil
	}
	return agentA, agentB, false, nil
}

// Runner plays matches. OnGame, if set, is called once per finished game
// from a single goroutine at a time; an error from it stops the match.
type Runner struct {
	OnGame func(GameRecord) error
}

// Run plays every game of m and returns the summary. Games run in up to
// m.Parallel goroutines, each with its own agents.
func (r *Runner) Run(ctx context.Context, m Match) (Summary, error) {
	if m.Games <= 0 {
		return Summary{}, fmt.Errorf("match needs at least one game, got %d", m.Games)
	}
	parallel := max(m.Parallel, 1)

	start := time.Now()
	id := m.ID()
	records := make([]GameRecord, m.Games)

	var mu sync.Mutex
	done := 0
	progress := Tally{AgentA: m.White.String(), AgentB: m.Black.String()}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := 0; i < m.Games; i++ {
		i := i
		g.Go(func() error {
			white, black, swapped, err := m.agents(i)
			if err != nil {
				return err
			}
			rec, err := PlayGame(ctx, white, black, Options{MaxPlies: m.MaxPlies, StartFEN: m.StartFEN})
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			rec.ID = fmt.Sprintf("%s-%04d", id, i)
			rec.Index = i
			rec.Swapped = swapped
			records[i] = rec

			mu.Lock()
			defer mu.Unlock()
			done++
			progress.Record(rec)
			log.Info().
				Int("game", i+1).
				Str("white", rec.White).
				Str("black", rec.Black).
				Str("result", rec.Result()).
				Str("reason", rec.Reason()).
				Int("plies", rec.Plies).
				Msg("game finished")
			if m.PrintEvery > 0 && done%m.PrintEvery == 0 {
				log.Info().Msgf("After %d games:\n%s", done, progress.String())
			}
			if r.OnGame != nil {
				return r.OnGame(rec)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summarize(m.White.String(), m.Black.String(), records)
	s.ID = id
	s.Elapsed = time.Since(start)
	return s, nil
}
