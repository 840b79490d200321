package board

import (
	"fmt"
	"strings"
)

// SAN returns the move in Standard Algebraic Notation for the given state,
// e.g. "Nc3", "bxc4", "d5=Q+", "Qa1#".
func (s State) SAN(m Move) string {
	pos := s.pos
	return m.toSAN(&pos)
}

func (m Move) toSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder
	pt := piece.Type()

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(disambiguation(pos, m, pt))
	}

	if m.IsCapture() {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteString("=Q")
	}

	undo := pos.MakeMove(m)
	switch {
	case pos.InCheck() && !pos.HasLegalMoves():
		sb.WriteByte('#')
	case pos.InCheck():
		sb.WriteByte('+')
	}
	pos.UnmakeMove(m, undo)

	return sb.String()
}

// disambiguation returns the file, rank or square needed to tell m apart from
// other legal moves of the same piece type to the same square.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	pieces := pos.Pieces[pos.SideToMove][pt]

	var candidates []Square
	all := pos.GenerateLegalMoves()
	for i := 0; i < all.Len(); i++ {
		other := all.Get(i)
		if other.To() == to && other.From() != from && pieces.IsSet(other.From()) {
			candidates = append(candidates, other.From())
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		sameFile = sameFile || sq.File() == from.File()
		sameRank = sameRank || sq.Rank() == from.Rank()
	}

	switch {
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN resolves a SAN string against the legal moves of the state.
func (s State) ParseSAN(text string) (Move, error) {
	san := strings.TrimRight(strings.TrimSpace(text), "+#")
	orig := san

	promo := false
	if idx := strings.Index(san, "="); idx >= 0 {
		if san[idx+1:] != "Q" {
			return NoMove, fmt.Errorf("invalid promotion in %q: only queen promotion is allowed", text)
		}
		promo = true
		san = san[:idx]
	}

	isCapture := strings.Contains(san, "x")
	san = strings.ReplaceAll(san, "x", "")

	pt := Pawn
	if len(san) > 0 && strings.IndexByte("NBRQK", san[0]) >= 0 {
		pt = PieceFromChar(san[0]).Type()
		san = san[1:]
	}

	if len(san) < 2 {
		return NoMove, fmt.Errorf("invalid SAN: %q", text)
	}
	dest, err := ParseSquare(san[len(san)-2:])
	if err != nil {
		return NoMove, err
	}

	disFile, disRank := -1, -1
	for _, c := range san[:len(san)-2] {
		switch {
		case c >= 'a' && c <= 'e':
			disFile = int(c - 'a')
		case c >= '1' && c <= '5':
			disRank = int(c - '1')
		}
	}

	pos := s.pos
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		from := m.From()
		switch {
		case m.To() != dest,
			pos.PieceAt(from).Type() != pt,
			disFile >= 0 && from.File() != disFile,
			disRank >= 0 && from.Rank() != disRank,
			isCapture != m.IsCapture(),
			promo && !m.IsPromotion():
			continue
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
}

// MovesToSAN converts a sequence of moves played from s into SAN.
func (s State) MovesToSAN(moves []Move) []string {
	result := make([]string, len(moves))
	pos := s.pos
	for i, m := range moves {
		result[i] = m.toSAN(&pos)
		pos.MakeMove(m)
	}
	return result
}
