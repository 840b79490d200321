package board

import "fmt"

// Move encodes a MiniChess move in 16 bits:
// bits 0-4:   from square (0-24)
// bits 5-9:   to square (0-24)
// bit  10:    capture
// bit  11:    promotion (always to Queen)
type Move uint16

// Move flags
const (
	FlagCapture   uint16 = 1 << 10
	FlagPromotion uint16 = 1 << 11
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a move with the given flags.
func NewMove(from, to Square, flags uint16) Move {
	return Move(from) | Move(to)<<5 | Move(flags)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x1F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 5) & 0x1F)
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return uint16(m)&FlagCapture != 0
}

// IsPromotion returns true if this is a pawn promotion.
func (m Move) IsPromotion() bool {
	return uint16(m)&FlagPromotion != 0
}

// Promotion returns the promotion piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	if m.IsPromotion() {
		return Queen
	}
	return NoPieceType
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return uint16(m)&(FlagCapture|FlagPromotion) == 0
}

// String returns coordinate notation (e.g., "b2b3", "c4c5q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += "q"
	}
	return s
}

// ParseMove parses coordinate notation and resolves it against the legal
// moves of pos, so the returned move carries its capture and promotion flags.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 5 && s[4] != 'q' && s[4] != 'Q' {
		return NoMove, fmt.Errorf("invalid promotion piece: %c (only queen promotion is allowed)", s[4])
	}

	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() == from && m.To() == to {
			return m, nil
		}
	}
	return NoMove, &IllegalMoveError{Move: NewMove(from, to, 0), FEN: pos.FEN()}
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores the state needed to undo a move.
type UndoInfo struct {
	Captured      Piece
	HalfMoveClock int
	Hash          uint64
	Checkers      Bitboard
	KingSquare    [2]Square
}
