package engine

import (
	"github.com/hailam/minichess/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for captures
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
// Score = victimValue * 10 - attackerValue
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0},       // King can't be captured
}

// ScoreMoves assigns ordering scores: the TT move first, then captures by
// MVV-LVA, then the remaining moves in generator order.
func ScoreMoves(pos *board.Position, moves *board.MoveList, ttMove board.Move) []int {
	scores := make([]int, moves.Len())

	for i := 0; i < moves.Len(); i++ {
		scores[i] = scoreMove(pos, moves.Get(i), ttMove) - i
	}

	return scores
}

// scoreMove returns the ordering score for a single move. The caller
// subtracts the generator index so equal scores keep generator order.
func scoreMove(pos *board.Position, m board.Move, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	if m.IsCapture() {
		victim := pos.PieceAt(m.To()).Type()
		attacker := pos.PieceAt(m.From()).Type()
		return GoodCaptureBase + mvvLva[victim][attacker]*board.NumSquares*board.NumSquares
	}

	return 0
}

// PickMove selects the best remaining move and moves it to position index.
// This allows lazy move sorting (only sort as much as needed).
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
