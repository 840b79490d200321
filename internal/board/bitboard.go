package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 25-bit set of squares. Bit 0 = A1, bit 4 = E1, bit 24 = E5.
type Bitboard uint32

// File masks
const (
	FileA Bitboard = 0x0108421
	FileB Bitboard = FileA << 1
	FileC Bitboard = FileA << 2
	FileD Bitboard = FileA << 3
	FileE Bitboard = FileA << 4
)

// Rank masks
const (
	Rank1 Bitboard = 0x1F
	Rank2 Bitboard = Rank1 << 5
	Rank3 Bitboard = Rank1 << 10
	Rank4 Bitboard = Rank1 << 15
	Rank5 Bitboard = Rank1 << 20
)

const (
	Empty    Bitboard = 0
	Universe Bitboard = 1<<NumSquares - 1

	NotFileA Bitboard = Universe &^ FileA
	NotFileE Bitboard = Universe &^ FileE
)

// FileMask returns the file mask for a given file (0-4).
var FileMask = [Size]Bitboard{FileA, FileB, FileC, FileD, FileE}

// RankMask returns the rank mask for a given rank (0-4).
var RankMask = [Size]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount32(uint32(b))
}

// LSB returns the lowest set square.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros32(uint32(b)))
}

// MSB returns the highest set square.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(31 - bits.LeadingZeros32(uint32(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// North shifts one rank up (toward rank 5).
func (b Bitboard) North() Bitboard {
	return (b << Size) & Universe
}

// South shifts one rank down (toward rank 1).
func (b Bitboard) South() Bitboard {
	return b >> Size
}

// East shifts one file right (toward file e).
func (b Bitboard) East() Bitboard {
	return (b << 1) & NotFileA
}

// West shifts one file left (toward file a).
func (b Bitboard) West() Bitboard {
	return (b >> 1) & NotFileE
}

func (b Bitboard) NorthEast() Bitboard { return b.North().East() }
func (b Bitboard) NorthWest() Bitboard { return b.North().West() }
func (b Bitboard) SouthEast() Bitboard { return b.South().East() }
func (b Bitboard) SouthWest() Bitboard { return b.South().West() }

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := Size - 1; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < Size; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e\n")
	return sb.String()
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
