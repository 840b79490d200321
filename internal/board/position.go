package board

import (
	"errors"
	"fmt"
	"strings"
)

// Position is a mutable MiniChess position. Search code makes and unmakes
// moves on a private Position; everything else works with State values.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards (cached for efficiency)
	Occupied    [2]Bitboard // All pieces of each color
	AllOccupied Bitboard    // All pieces on the board

	SideToMove     Color
	HalfMoveClock  int // Plies since last pawn move or capture
	FullMoveNumber int // Full move counter, starts at 1

	// Zobrist hash of board contents and side to move
	Hash uint64

	// King positions, NoSquare if the side has no king
	KingSquare [2]Square

	// Pieces giving check to the side to move
	Checkers Bitboard
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// emptyPosition returns a position with no pieces and White to move.
func emptyPosition() *Position {
	p := &Position{FullMoveNumber: 1}
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
	return p
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// setPiece places a piece on a square and updates the hash.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPiece[c][pt][sq]

	if pt == King {
		p.KingSquare[c] = sq
	}
}

// removePiece removes whatever stands on sq and updates the hash.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPiece[c][pt][sq]

	if pt == King {
		p.KingSquare[c] = NoSquare
	}
	return piece
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(p.diagram())
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}

// diagram renders ranks 5..1 top to bottom with file labels underneath.
func (p *Position) diagram() string {
	var sb strings.Builder
	for rank := Size - 1; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		for file := 0; file < Size; file++ {
			sb.WriteByte(' ')
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteByte('.')
			} else {
				sb.WriteString(piece.String())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e")
	return sb.String()
}

// Position validation errors.
var (
	ErrTooManyKings     = errors.New("at most one king per color")
	ErrPawnOnBackRank   = errors.New("pawns cannot stand on rank 1 or 5")
	ErrOpponentInCheck  = errors.New("side not to move is in check")
	ErrSquareOccupied   = errors.New("square already occupied")
	ErrNegativeHalfMove = errors.New("half-move clock cannot be negative")
)

// Validate checks the structural invariants of the position.
func (p *Position) Validate() error {
	for c := White; c <= Black; c++ {
		if p.Pieces[c][King].PopCount() > 1 {
			return fmt.Errorf("%s: %w", c, ErrTooManyKings)
		}
	}

	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank5) != 0 {
		return ErrPawnOnBackRank
	}

	if p.HalfMoveClock < 0 {
		return ErrNegativeHalfMove
	}

	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare[them], p.SideToMove) {
		return ErrOpponentInCheck
	}

	return nil
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// Material returns the material balance (positive favors white), kings excluded.
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Pieces[White][pt].PopCount() * PieceValue[pt]
		score -= p.Pieces[Black][pt].PopCount() * PieceValue[pt]
	}
	return score
}

// TotalMaterial returns the combined non-king material of both sides.
func (p *Position) TotalMaterial() int {
	total := 0
	for pt := Pawn; pt < King; pt++ {
		total += (p.Pieces[White][pt] | p.Pieces[Black][pt]).PopCount() * PieceValue[pt]
	}
	return total
}

// IsInsufficientMaterial returns true when only kings remain.
func (p *Position) IsInsufficientMaterial() bool {
	return p.AllOccupied&^(p.Pieces[White][King]|p.Pieces[Black][King]) == 0
}
