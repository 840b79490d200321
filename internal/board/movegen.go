package board

// GenerateLegalMoves generates all legal moves for the position.
// Order is deterministic: pawns, knights, bishops, rooks, queens, king,
// each by ascending origin square and then ascending target square.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// generateAllMoves generates all pseudo-legal moves.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]
	targets := ^p.Occupied[us] & Universe

	p.generatePawnMoves(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		addMoves(ml, from, KnightAttacks(from)&targets, enemies)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		addMoves(ml, from, BishopAttacks(from, occupied)&targets, enemies)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		addMoves(ml, from, RookAttacks(from, occupied)&targets, enemies)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		addMoves(ml, from, QueenAttacks(from, occupied)&targets, enemies)
	}

	kings := p.Pieces[us][King]
	for kings != 0 {
		from := kings.PopLSB()
		addMoves(ml, from, KingAttacks(from)&targets, enemies)
	}
}

// addMoves appends one move per target square, flagging captures.
func addMoves(ml *MoveList, from Square, targets, enemies Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		var flags uint16
		if enemies.IsSet(to) {
			flags = FlagCapture
		}
		ml.Add(NewMove(from, to, flags))
	}
}

// generatePawnMoves generates single pushes and diagonal captures.
// Reaching the far rank always promotes to a queen.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	promoRank := RankMask[Size-1]
	if us == Black {
		promoRank = RankMask[0]
	}

	pawns := p.Pieces[us][Pawn]
	for pawns != 0 {
		from := pawns.PopLSB()

		push := pawnPushes[us][from] &^ occupied
		captures := pawnAttacks[us][from] & enemies

		for push != 0 {
			to := push.PopLSB()
			var flags uint16
			if promoRank.IsSet(to) {
				flags |= FlagPromotion
			}
			ml.Add(NewMove(from, to, flags))
		}

		for captures != 0 {
			to := captures.PopLSB()
			flags := FlagCapture
			if promoRank.IsSet(to) {
				flags |= FlagPromotion
			}
			ml.Add(NewMove(from, to, flags))
		}
	}
}

// filterLegalMoves keeps only moves that do not leave the mover's king attacked.
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	legal := NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			legal.Add(m)
		}
	}
	return legal
}

// IsLegal applies a pseudo-legal move tentatively and reports whether the
// mover's king is safe afterwards.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	ok := !p.IsSquareAttacked(p.KingSquare[us], us.Other())
	p.UnmakeMove(m, undo)
	return ok
}

// MakeMove applies a pseudo-legal move and returns undo information.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
		Checkers:      p.Checkers,
		KingSquare:    p.KingSquare,
	}

	us := p.SideToMove
	from, to := m.From(), m.To()

	piece := p.removePiece(from)
	undo.Captured = p.removePiece(to)
	if m.IsPromotion() {
		piece = NewPiece(Queen, us)
	}
	p.setPiece(piece, to)

	if piece.Type() == Pawn || m.IsPromotion() || undo.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobristSideToMove
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	us := p.SideToMove.Other()
	p.SideToMove = us

	from, to := m.From(), m.To()
	piece := p.removePiece(to)
	if m.IsPromotion() {
		piece = NewPiece(Pawn, us)
	}
	p.setPiece(piece, from)
	if undo.Captured != NoPiece {
		p.setPiece(undo.Captured, to)
	}

	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.KingSquare = undo.KingSquare

	if us == Black {
		p.FullMoveNumber--
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}
