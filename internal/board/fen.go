package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the Gardner MiniChess starting position.
// Fields: placement (rank 5 first), side to move, half-move clock, full-move number.
const StartFEN = "rnbqk/ppppp/5/PPPPP/RNBQK w 0 1"

// ParseFEN parses a 5x5 FEN string and returns a Position.
// The clock fields are optional.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid FEN: need at least 2 fields, got %d", len(parts))
	}

	pos := emptyPosition()

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
		pos.Hash ^= zobristSideToMove
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	if len(parts) > 2 {
		hmc, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[2])
		}
		pos.HalfMoveClock = hmc
	}

	if len(parts) > 3 {
		fmn, err := strconv.Atoi(parts[3])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[3])
		}
		pos.FullMoveNumber = fmn
	}

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	pos.UpdateCheckers()

	return pos, nil
}

// parsePiecePlacement parses the piece placement field.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != Size {
		return fmt.Errorf("invalid piece placement: need %d ranks, got %d", Size, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := Size - 1 - i
		file := 0

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '5' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(c)
			if piece == NoPiece {
				return fmt.Errorf("invalid piece character: %c", c)
			}
			if file >= Size {
				return fmt.Errorf("rank %d overflows the board", rank+1)
			}
			sq := NewSquare(file, rank)
			if !pos.IsEmpty(sq) {
				return fmt.Errorf("%s: %w", sq, ErrSquareOccupied)
			}
			pos.setPiece(piece, sq)
			file++
		}

		if file != Size {
			return fmt.Errorf("rank %d has %d files, want %d", rank+1, file, Size)
		}
	}

	return nil
}

// FEN returns the FEN string for the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := Size - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < Size; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.SideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
