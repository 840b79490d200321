package shell

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/hailam/minichess/internal/board"
)

const (
	lightSquare = "#f0d9b5"
	darkSquare  = "#b58863"
	lastMoveSq  = "#cdd26a"
	checkSq     = "#ff6464"
	whitePiece  = "#ffffff"
	blackPiece  = "#000000"
)

// renderBoard draws s with coloured squares and figurines. Without colour
// support it falls back to FEN letters and dots for empty squares.
func renderBoard(o *termenv.Output, s board.State, flip bool) string {
	plain := o.Profile == termenv.Ascii

	checked := board.NoSquare
	if s.InCheck() {
		king := board.NewPiece(board.King, s.SideToMove())
		for sq := board.Square(0); sq < board.NumSquares; sq++ {
			if s.PieceAt(sq) == king {
				checked = sq
			}
		}
	}
	last := s.LastMove()

	files := make([]int, board.Size)
	ranks := make([]int, board.Size)
	for i := range files {
		files[i], ranks[i] = i, board.Size-1-i
		if flip {
			files[i], ranks[i] = board.Size-1-i, i
		}
	}

	var sb strings.Builder
	for _, rank := range ranks {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for _, file := range files {
			sq := board.NewSquare(file, rank)
			p := s.PieceAt(sq)

			if plain {
				if p == board.NoPiece {
					sb.WriteString(" .")
				} else {
					sb.WriteString(" " + p.String())
				}
				continue
			}

			bg := lightSquare
			if (file+rank)%2 == 0 {
				bg = darkSquare
			}
			if last != board.NoMove && (sq == last.From() || sq == last.To()) {
				bg = lastMoveSq
			}
			if sq == checked {
				bg = checkSq
			}
			style := o.String(" " + p.Figurine() + " ").Background(o.Color(bg))
			if p != board.NoPiece {
				fg := whitePiece
				if p.Color() == board.Black {
					fg = blackPiece
				}
				style = style.Foreground(o.Color(fg))
			}
			sb.WriteString(style.String())
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("  ")
	for _, file := range files {
		if plain {
			sb.WriteString(" " + string(rune('a'+file)))
		} else {
			sb.WriteString(" " + string(rune('a'+file)) + " ")
		}
	}
	return sb.String()
}

func (sc *ShellController) renderState() string {
	var sb strings.Builder
	sb.WriteString(renderBoard(sc.term, sc.state, sc.flip))
	sb.WriteString("\n\n")
	switch st := sc.state.Status(); st {
	case board.Ongoing:
		fmt.Fprintf(&sb, "%s to move", sc.state.SideToMove())
		if sc.state.InCheck() {
			sb.WriteString(" (check)")
		}
	default:
		res, _ := sc.state.Result()
		fmt.Fprintf(&sb, "%s, %s", st, res)
	}
	return sb.String()
}
