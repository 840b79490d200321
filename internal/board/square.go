// Package board implements the Gardner MiniChess (5x5) board, move generation
// and game-state rules.
package board

import "fmt"

// Size is the number of files and ranks on the board.
const Size = 5

// NumSquares is the number of squares on the board.
const NumSquares = Size * Size

// Square represents a square on the board (0-24).
// Rank-major mapping: A1=0, E1=4, A5=20, E5=24. Rank 0 is White's back rank.
type Square uint8

// Square constants for all 25 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	A2
	B2
	C2
	D2
	E2
	A3
	B3
	C3
	D3
	E3
	A4
	B4
	C4
	D4
	E4
	A5
	B5
	C5
	D5
	E5
	NoSquare Square = NumSquares
)

// File returns the file (column) of the square (0-4, where 0=a, 4=e).
func (sq Square) File() int {
	return int(sq) % Size
}

// Rank returns the rank (row) of the square (0-4, where 0=1, 4=5).
func (sq Square) Rank() int {
	return int(sq) / Size
}

// String returns the algebraic notation for the square (e.g., "c3").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*Size + file)
}

// onBoard reports whether file and rank are inside the board.
func onBoard(file, rank int) bool {
	return file >= 0 && file < Size && rank >= 0 && rank < Size
}

// ParseSquare parses algebraic notation (e.g., "c3") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if !onBoard(file, rank) {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 5th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return Size - 1 - sq.Rank()
}
