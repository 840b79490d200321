package engine

import (
	"github.com/hailam/minichess/internal/board"
)

// searcher runs one alpha-beta search on a private scratch position.
// It is created per decision and discarded afterwards.
type searcher struct {
	pos *board.Position
	tt  *TranspositionTable
	tm  *TimeManager

	nodes   uint64
	pv      PVTable
	aborted bool

	// Hashes of every position before the current one, oldest first:
	// the game history followed by the search path.
	history []uint64

	// pollDeadline is false for the first iteration so that a move is
	// always available.
	pollDeadline bool
}

// newSearcher copies the root state's position and history.
func newSearcher(s board.State, tt *TranspositionTable, tm *TimeManager) *searcher {
	pos := s.Position()
	past := s.History()

	history := make([]uint64, 0, len(past)+MaxPly)
	history = append(history, past...)

	return &searcher{
		pos:     &pos,
		tt:      tt,
		tm:      tm,
		history: history,
	}
}

// searchDepth runs a full-window search at depth and returns the root move
// and score relative to the side to move. ok is false when the deadline
// interrupted the pass.
func (w *searcher) searchDepth(depth int) (move board.Move, score int, ok bool) {
	w.aborted = false
	score = w.negamax(depth, 0, -Infinity, Infinity)
	if w.aborted {
		return board.NoMove, 0, false
	}
	if w.pv.length[0] == 0 {
		return board.NoMove, score, true
	}
	return w.pv.moves[0][0], score, true
}

// stopped polls the deadline every pollInterval nodes.
func (w *searcher) stopped() bool {
	if w.aborted {
		return true
	}
	if w.pollDeadline && w.nodes%pollInterval == 0 && w.tm.ShouldStop() {
		w.aborted = true
	}
	return w.aborted
}

// isDraw checks the fifty-move rule, threefold repetition and bare kings.
func (w *searcher) isDraw() bool {
	if w.pos.HalfMoveClock >= board.FiftyMoveLimit {
		return true
	}

	if w.pos.IsInsufficientMaterial() {
		return true
	}

	// Two earlier occurrences since the last irreversible move.
	count := 0
	n := len(w.history)
	for i := n - 1; i >= 0 && n-1-i < w.pos.HalfMoveClock; i-- {
		if w.history[i] == w.pos.Hash {
			count++
			if count >= 2 {
				return true
			}
		}
	}

	return false
}

// negamax implements the negamax algorithm with alpha-beta pruning.
// Scores are relative to the side to move.
func (w *searcher) negamax(depth, ply int, alpha, beta int) int {
	if w.stopped() {
		return 0
	}

	w.nodes++
	w.pv.length[ply] = ply

	moves := w.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if w.pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}

	if ply > 0 && w.isDraw() {
		return 0
	}

	if depth <= 0 || ply >= MaxPly-1 {
		return Evaluate(w.pos)
	}

	alphaOrig := alpha

	// Probe transposition table
	var ttMove board.Move
	if entry, found := w.tt.Probe(w.pos.Hash); found {
		if moves.Contains(entry.BestMove) {
			ttMove = entry.BestMove
		}

		// The root always searches so that it has a move to return.
		if ply > 0 && int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	scores := ScoreMoves(w.pos, moves, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		w.history = append(w.history, w.pos.Hash)
		undo := w.pos.MakeMove(move)
		score := -w.negamax(depth-1, ply+1, -beta, -alpha)
		w.pos.UnmakeMove(move, undo)
		w.history = w.history[:len(w.history)-1]

		if w.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				w.pv.update(ply, move)
			}
		}

		if alpha >= beta {
			break
		}
	}

	flag := TTExact
	switch {
	case bestScore <= alphaOrig:
		flag = TTUpperBound
	case bestScore >= beta:
		flag = TTLowerBound
	}
	w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}
