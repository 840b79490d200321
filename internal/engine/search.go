package engine

import "github.com/hailam/minichess/internal/board"

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	// MaxSearchDepth bounds iterative deepening when only a time limit is set.
	MaxSearchDepth = 64

	// DefaultDepth applies when neither a depth nor a time limit is configured.
	DefaultDepth = 3
)

// The deadline is polled every pollInterval nodes.
const pollInterval = 2048

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// line returns the principal variation from the root.
func (pv *PVTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// update makes m followed by the child's line the PV at ply.
func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for j := ply + 1; j < pv.length[ply+1]; j++ {
		pv.moves[ply][j] = pv.moves[ply+1][j]
	}
	pv.length[ply] = pv.length[ply+1]
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > MateScore-MaxPly || score < -MateScore+MaxPly
}
