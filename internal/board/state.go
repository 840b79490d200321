package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when a move is not among the legal moves of a state.
var ErrIllegalMove = errors.New("illegal move")

// IllegalMoveError reports the rejected move and the position it was tried in.
type IllegalMoveError struct {
	Move Move
	FEN  string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s in %s", e.Move, e.FEN)
}

// Unwrap lets errors.Is match ErrIllegalMove.
func (e *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}

// historyNode is one link of a persistent list of earlier position hashes.
// States created from a common ancestor share the tail of the list.
type historyNode struct {
	hash uint64
	prev *historyNode
}

// State is an immutable game state: a position plus the bookkeeping needed
// for draw detection. Apply returns a new State and never modifies the receiver.
type State struct {
	pos     Position
	ply     int
	history *historyNode
	last    Move
}

// InitialState returns the Gardner MiniChess starting state with White to move.
func InitialState() State {
	return State{pos: *NewPosition()}
}

// StateFromFEN builds a state from a 5x5 FEN string. The resulting state has
// no repetition history.
func StateFromFEN(fen string) (State, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return State{}, err
	}
	return State{pos: *pos}, nil
}

// Position returns a copy of the underlying position, for search code that
// needs make/unmake on a scratch board.
func (s State) Position() Position {
	return s.pos
}

// SideToMove returns the color to move.
func (s State) SideToMove() Color {
	return s.pos.SideToMove
}

// Ply returns the number of plies applied since the state was created.
func (s State) Ply() int {
	return s.ply
}

// HalfMoveClock returns plies since the last capture or pawn move.
func (s State) HalfMoveClock() int {
	return s.pos.HalfMoveClock
}

// Hash returns the position hash of board and side to move.
func (s State) Hash() uint64 {
	return s.pos.Hash
}

// LastMove returns the move that produced this state, or NoMove.
func (s State) LastMove() Move {
	return s.last
}

// PieceAt returns the piece on sq.
func (s State) PieceAt(sq Square) Piece {
	return s.pos.PieceAt(sq)
}

// InCheck reports whether the side to move is in check.
func (s State) InCheck() bool {
	return s.pos.InCheck()
}

// FEN returns the FEN string of the current position.
func (s State) FEN() string {
	return s.pos.FEN()
}

// History returns the hashes of earlier positions, oldest first.
func (s State) History() []uint64 {
	n := 0
	for h := s.history; h != nil; h = h.prev {
		n++
	}
	out := make([]uint64, n)
	for h := s.history; h != nil; h = h.prev {
		n--
		out[n] = h.hash
	}
	return out
}

// LegalMoves returns the legal moves for the side to move in deterministic order.
// The result is empty exactly when no legal move exists.
func (s State) LegalMoves() []Move {
	pos := s.pos
	ml := pos.GenerateLegalMoves()
	moves := make([]Move, ml.Len())
	copy(moves, ml.Slice())
	return moves
}

// ParseMove resolves coordinate notation such as "b2b3" against the legal moves.
func (s State) ParseMove(text string) (Move, error) {
	pos := s.pos
	return ParseMove(text, &pos)
}

// Apply returns the state after m. It fails with an *IllegalMoveError when m
// is not one of s.LegalMoves().
func (s State) Apply(m Move) (State, error) {
	pos := s.pos
	if !pos.GenerateLegalMoves().Contains(m) {
		return State{}, &IllegalMoveError{Move: m, FEN: pos.FEN()}
	}
	return s.applyUnchecked(m), nil
}

// MustApply is Apply for moves known to be legal; it panics otherwise.
func (s State) MustApply(m Move) State {
	next, err := s.Apply(m)
	if err != nil {
		panic(err)
	}
	return next
}

func (s State) applyUnchecked(m Move) State {
	next := State{
		pos:     s.pos,
		ply:     s.ply + 1,
		history: &historyNode{hash: s.pos.Hash, prev: s.history},
		last:    m,
	}
	next.pos.MakeMove(m)
	return next
}

// Repetitions returns how many earlier positions equal the current one.
// Only positions since the last irreversible move can match.
func (s State) Repetitions() int {
	count := 0
	h := s.history
	for i := 0; h != nil && i < s.pos.HalfMoveClock; i++ {
		if h.hash == s.pos.Hash {
			count++
		}
		h = h.prev
	}
	return count
}

// Render returns a deterministic text diagram: ranks 5 to 1 top to bottom,
// '.' for empty squares and FEN letters for pieces, files labelled underneath.
func (s State) Render() string {
	return s.pos.diagram()
}

// String implements fmt.Stringer.
func (s State) String() string {
	return s.pos.diagram() + "\n" + s.pos.SideToMove.String() + " to move"
}
