// Package match plays games between agents and summarizes the results.
package match

import (
	"context"
	"fmt"
	"time"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
)

// DefaultMaxPlies is the adjudication limit when Options.MaxPlies is zero.
const DefaultMaxPlies = 200

// Options controls a single game.
type Options struct {
	MaxPlies int
	StartFEN string
	// OnMove, when set, is called after every applied move.
	OnMove func(s board.State, m board.Move)
}

// GameRecord is the full result of one game.
type GameRecord struct {
	ID          string        `json:"id"`
	Index       int           `json:"index"`
	White       string        `json:"white"`
	Black       string        `json:"black"`
	Swapped     bool          `json:"swapped"`
	StartFEN    string        `json:"start_fen,omitempty"`
	Moves       []string      `json:"moves"`
	Outcome     board.Outcome `json:"outcome"`
	Status      board.Status  `json:"status"`
	Plies       int           `json:"plies"`
	Adjudicated bool          `json:"adjudicated"`
	WhiteTime   time.Duration `json:"white_time"`
	BlackTime   time.Duration `json:"black_time"`
	FinalFEN    string        `json:"final_fen"`
	PlayedAt    time.Time     `json:"played_at"`
}

// Result returns the PGN-style result string, e.g. "1-0".
func (g GameRecord) Result() string {
	return g.Outcome.String()
}

// Reason describes how the game ended.
func (g GameRecord) Reason() string {
	if g.Adjudicated {
		return "adjudicated after max plies"
	}
	return g.Status.String()
}

func (g GameRecord) String() string {
	return fmt.Sprintf("%s %s vs %s %s (%s, %d plies)", g.ID, g.White, g.Black, g.Result(), g.Reason(), g.Plies)
}

// PlayGame plays white against black until the game ends or opts.MaxPlies
// plies have been made, which counts as a draw. The context is checked
// between moves.
func PlayGame(ctx context.Context, white, black agent.Agent, opts Options) (GameRecord, error) {
	maxPlies := opts.MaxPlies
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}

	s := board.InitialState()
	if opts.StartFEN != "" {
		var err error
		if s, err = board.StateFromFEN(opts.StartFEN); err != nil {
			return GameRecord{}, err
		}
	}

	rec := GameRecord{
		White:    white.Name(),
		Black:    black.Name(),
		StartFEN: opts.StartFEN,
		PlayedAt: time.Now(),
	}

	for !s.IsTerminal() && rec.Plies < maxPlies {
		if err := ctx.Err(); err != nil {
			return rec, err
		}

		mover := white
		if s.SideToMove() == board.Black {
			mover = black
		}

		start := time.Now()
		m, err := mover.ChooseMove(s)
		took := time.Since(start)
		if err != nil {
			return rec, fmt.Errorf("%s at ply %d: %w", mover.Name(), rec.Plies, err)
		}
		if s.SideToMove() == board.White {
			rec.WhiteTime += took
		} else {
			rec.BlackTime += took
		}

		next, err := s.Apply(m)
		if err != nil {
			return rec, fmt.Errorf("%s at ply %d: %w", mover.Name(), rec.Plies, err)
		}
		rec.Moves = append(rec.Moves, m.String())
		rec.Plies++
		s = next

		if opts.OnMove != nil {
			opts.OnMove(s, m)
		}
	}

	rec.FinalFEN = s.FEN()
	rec.Status = s.Status()
	if rec.Status == board.Ongoing {
		rec.Adjudicated = true
		rec.Outcome = board.Draw
	} else {
		outcome, err := s.Result()
		if err != nil {
			return rec, err
		}
		rec.Outcome = outcome
	}

	return rec, nil
}
