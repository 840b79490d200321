// Package experiment runs matrices of matches between agent configurations
// and reports on the results.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/match"
	"github.com/hailam/minichess/internal/storage"
)

// Row is the flat result of one experiment, as written to CSV.
type Row struct {
	ID             string
	Type           config.ExperimentType
	Description    string
	WhiteAgent     string
	WhiteConfig    string
	BlackAgent     string
	BlackConfig    string
	Games          int
	SwapColors     bool
	WhiteWins      int
	Draws          int
	BlackWins      int
	WhiteAgentWins int
	BlackAgentWins int
	AvgPlies       float64
	TotalTime      time.Duration
}

// WinRate is the score of the agent listed as White in the experiment.
func (r Row) WinRate() float64 {
	return match.WinRate(r.WhiteAgentWins, r.Draws, r.BlackAgentWins)
}

// WhiteSpec returns the full spec of the agent listed as White.
func (r Row) WhiteSpec() string { return joinSpec(r.WhiteAgent, r.WhiteConfig) }

// BlackSpec returns the full spec of the agent listed as Black.
func (r Row) BlackSpec() string { return joinSpec(r.BlackAgent, r.BlackConfig) }

func joinSpec(kind, cfg string) string {
	if cfg == "" || cfg == "default" {
		return kind
	}
	return kind + ":" + cfg
}

// NewRow flattens an experiment and the summary of its match.
func NewRow(e config.Experiment, white, black agent.Spec, s match.Summary) Row {
	return Row{
		ID:             e.ID,
		Type:           e.Type,
		Description:    e.Description,
		WhiteAgent:     string(white.Kind),
		WhiteConfig:    white.Config(),
		BlackAgent:     string(black.Kind),
		BlackConfig:    black.Config(),
		Games:          s.Games,
		SwapColors:     e.Swap(),
		WhiteWins:      s.WhiteWins,
		Draws:          s.Draws,
		BlackWins:      s.BlackWins,
		WhiteAgentWins: s.AWins,
		BlackAgentWins: s.BWins,
		AvgPlies:       s.AvgPlies(),
		TotalTime:      s.Elapsed,
	}
}

// Options controls Run.
type Options struct {
	// Parallel is the number of games of one experiment played at once.
	Parallel int
	// Store, when set, receives every game and summary.
	Store *storage.Storage
	// OnRow is called after each experiment finishes.
	OnRow func(Row)
}

// Run plays each experiment in order and returns one row per experiment.
// It stops at the first failure, returning the rows completed so far.
func Run(ctx context.Context, exps []config.Experiment, opts Options) ([]Row, error) {
	rows := make([]Row, 0, len(exps))
	for i, e := range exps {
		white, err := agent.ParseSpec(e.White)
		if err != nil {
			return rows, fmt.Errorf("experiment %s: %w", e.ID, err)
		}
		black, err := agent.ParseSpec(e.Black)
		if err != nil {
			return rows, fmt.Errorf("experiment %s: %w", e.ID, err)
		}

		log.Info().
			Str("id", e.ID).
			Str("white", white.String()).
			Str("black", black.String()).
			Int("games", e.Games).
			Msgf("running experiment %d/%d: %s", i+1, len(exps), e.Description)

		runner := &match.Runner{}
		if opts.Store != nil {
			runner.OnGame = opts.Store.SaveGame
		}
		sum, err := runner.Run(ctx, match.Match{
			White:      white,
			Black:      black,
			Games:      e.Games,
			SwapColors: e.Swap(),
			MaxPlies:   e.MaxPlies,
			Seed:       e.Seed,
			Parallel:   opts.Parallel,
		})
		if err != nil {
			return rows, fmt.Errorf("experiment %s: %w", e.ID, err)
		}
		if opts.Store != nil {
			if err := opts.Store.SaveSummary(sum); err != nil {
				return rows, fmt.Errorf("experiment %s: saving summary: %w", e.ID, err)
			}
		}

		row := NewRow(e, white, black, sum)
		log.Info().
			Str("id", e.ID).
			Msgf("Results: %s %d - %d - %d %s (%.1fs)", row.WhiteSpec(), row.WhiteAgentWins, row.Draws,
				row.BlackAgentWins, row.BlackSpec(), row.TotalTime.Seconds())
		rows = append(rows, row)
		if opts.OnRow != nil {
			opts.OnRow(row)
		}
	}
	return rows, nil
}

// DefaultMatrix returns the standard comparison of minimax and MCTS:
// time-matched pairs, resource degradation against Greedy, baselines against
// Random and a full head-to-head grid.
func DefaultMatrix() *config.Matrix {
	m := &config.Matrix{}
	m.Defaults.MaxPlies = 200
	n := 1
	add := func(prefix string, typ config.ExperimentType, white, black string, games int, desc string) {
		m.Experiments = append(m.Experiments, config.Experiment{
			ID:          fmt.Sprintf("%s%03d", prefix, n),
			Type:        typ,
			Description: desc,
			White:       white,
			Black:       black,
			Games:       games,
			MaxPlies:    m.Defaults.MaxPlies,
			Seed:        uint64(n) * 1000,
		})
		n++
	}

	add("TM", config.TimeMatched, "mcts:sims=50", "minimax:depth=3", 100, "Time-matched: ~0.5s budget")
	add("TM", config.TimeMatched, "mcts:sims=100", "minimax:depth=4", 100, "Time-matched: ~1.0s budget")
	add("TM", config.TimeMatched, "mcts:sims=200", "minimax:depth=4", 100, "Time-matched: ~2.0s budget")

	for _, depth := range []int{5, 4, 3, 2} {
		add("DEG", config.Degradation, fmt.Sprintf("minimax:depth=%d", depth), "greedy", 50,
			fmt.Sprintf("Minimax degradation: depth=%d vs Greedy", depth))
	}
	for _, sims := range []int{500, 300, 200, 150, 100, 50} {
		add("DEG", config.Degradation, fmt.Sprintf("mcts:sims=%d", sims), "greedy", 50,
			fmt.Sprintf("MCTS degradation: sims=%d vs Greedy", sims))
	}

	add("BASE", config.Baseline, "minimax:depth=3", "random", 30, "Minimax(3) vs Random")
	add("BASE", config.Baseline, "minimax:depth=4", "random", 30, "Minimax(4) vs Random")
	add("BASE", config.Baseline, "mcts:sims=100", "random", 30, "MCTS(100) vs Random")
	add("BASE", config.Baseline, "mcts:sims=200", "random", 30, "MCTS(200) vs Random")

	for _, sims := range []int{50, 100, 150, 200} {
		for _, depth := range []int{2, 3, 4} {
			add("H2H", config.HeadToHead, fmt.Sprintf("mcts:sims=%d", sims), fmt.Sprintf("minimax:depth=%d", depth), 50,
				fmt.Sprintf("MCTS(%d) vs Minimax(%d)", sims, depth))
		}
	}
	return m
}
