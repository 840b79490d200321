// Package engine implements the two MiniChess search engines: an alpha-beta
// minimax searcher with a transposition table and iterative deepening, and a
// Monte Carlo Tree Search with UCB1 selection and biased rollouts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/minichess/internal/board"
)

// ErrNoLegalMove is returned when a move is requested for a finished game.
var ErrNoLegalMove = errors.New("no legal move: game is over")

// DefaultTTSizeMB is the transposition table size used when none is configured.
const DefaultTTSizeMB = 4

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = default or time-governed)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// maxDepth resolves the iterative-deepening ceiling. A time limit alone lets
// the search deepen until the clock runs out.
func (l SearchLimits) maxDepth() int {
	switch {
	case l.Depth > 0:
		return min(l.Depth, MaxSearchDepth)
	case l.MoveTime > 0:
		return MaxSearchDepth
	default:
		return DefaultDepth
	}
}

// SearchInfo contains information about one completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchResult is the outcome of a minimax decision.
type SearchResult struct {
	BestMove board.Move
	// Score is from White's point of view; mate scores dominate material
	// and shorter mates score higher for the winning side.
	Score        int
	DepthReached int
	Nodes        uint64
	PV           []board.Move
	Elapsed      time.Duration
}

// Minimax is an alpha-beta searcher. It owns its transposition table, which
// persists across calls; it is not safe for concurrent use.
type Minimax struct {
	limits SearchLimits
	tt     *TranspositionTable

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewMinimax creates a minimax engine with the given limits and table size in MB.
func NewMinimax(limits SearchLimits, ttSizeMB int) *Minimax {
	return &Minimax{
		limits: limits,
		tt:     NewTranspositionTable(ttSizeMB),
	}
}

// Limits returns the configured search limits.
func (e *Minimax) Limits() SearchLimits {
	return e.limits
}

// ChooseMove returns the best move found for s.
func (e *Minimax) ChooseMove(s board.State) (board.Move, error) {
	res, err := e.Search(s)
	if err != nil {
		return board.NoMove, err
	}
	return res.BestMove, nil
}

// Search runs iterative deepening from depth 1 up to the configured limit.
// Only completed iterations contribute to the result.
func (e *Minimax) Search(s board.State) (SearchResult, error) {
	return e.SearchWithLimits(context.Background(), s, e.limits)
}

// SearchWithLimits searches s under limits instead of the configured ones.
// Cancelling ctx ends the search after the current iteration's next poll;
// the first iteration always completes.
func (e *Minimax) SearchWithLimits(ctx context.Context, s board.State, limits SearchLimits) (SearchResult, error) {
	if s.IsTerminal() {
		return SearchResult{}, fmt.Errorf("minimax: %w (%s)", ErrNoLegalMove, s.Status())
	}

	e.tt.NewSearch()

	tm := NewTimeManager(limits.MoveTime).withContext(ctx)
	tm.Start()

	w := newSearcher(s, e.tt, tm)
	sign := s.SideToMove().Sign()
	maxDepth := limits.maxDepth()

	var res SearchResult
	var lastIteration time.Duration

	for depth := 1; depth <= maxDepth; depth++ {
		// Check time before starting new iteration
		if depth > 1 && !tm.CanStartIteration(lastIteration) {
			break
		}

		iterStart := time.Now()
		w.pollDeadline = depth > 1
		move, score, ok := w.searchDepth(depth)
		if !ok {
			log.Debug().Int("depth", depth).Uint64("nodes", w.nodes).Msg("minimax iteration aborted")
			break
		}
		lastIteration = time.Since(iterStart)

		res.BestMove = move
		res.Score = score * sign
		res.DepthReached = depth
		res.PV = w.pv.line()

		log.Debug().
			Int("depth", depth).
			Int("score", res.Score).
			Str("move", move.String()).
			Uint64("nodes", w.nodes).
			Int("hashfull", e.tt.HashFull()).
			Dur("elapsed", tm.Elapsed()).
			Msg("minimax iteration")

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    res.Score,
				Nodes:    w.nodes,
				Time:     tm.Elapsed(),
				PV:       res.PV,
				HashFull: e.tt.HashFull(),
			})
		}

		// Early termination: found mate
		if score > MateScore-MaxPly {
			break
		}
	}

	res.Nodes = w.nodes
	res.Elapsed = tm.Elapsed()
	return res, nil
}

// Clear clears the transposition table.
func (e *Minimax) Clear() {
	e.tt.Clear()
}

// Perft counts leaf nodes of the legal move tree (for debugging move generation).
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// ScoreToString converts a White-relative score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("White mates in %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Black mates in %d", (MateScore+score+1)/2)
	}
	return fmt.Sprintf("%+d", score)
}

// ResizeTT replaces the transposition table with an empty one of sizeMB.
func (e *Minimax) ResizeTT(sizeMB int) {
	e.tt = NewTranspositionTable(sizeMB)
}
