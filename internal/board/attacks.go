package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [NumSquares]Bitboard
	kingAttacks   [NumSquares]Bitboard
	pawnAttacks   [2][NumSquares]Bitboard // [Color][Square]
	pawnPushes    [2][NumSquares]Bitboard // [Color][Square]

	// rays[dir][sq] holds every square from sq (exclusive) to the edge.
	rays [8][NumSquares]Bitboard
)

// Ray directions. The first four grow square indices, the last four shrink them.
const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthWest
	dirSouthEast
)

var rayDelta = [8][2]int{
	dirNorth:     {0, 1},
	dirEast:      {1, 0},
	dirNorthEast: {1, 1},
	dirNorthWest: {-1, 1},
	dirSouth:     {0, -1},
	dirWest:      {-1, 0},
	dirSouthWest: {-1, -1},
	dirSouthEast: {1, -1},
}

var (
	rookDirs   = [4]int{dirNorth, dirEast, dirSouth, dirWest}
	bishopDirs = [4]int{dirNorthEast, dirNorthWest, dirSouthWest, dirSouthEast}
)

func init() {
	initLeaperAttacks()
	initPawnAttacks()
	initRays()
}

func initLeaperAttacks() {
	knightDeltas := [8][2]int{{1, 2}, {-1, 2}, {2, 1}, {-2, 1}, {2, -1}, {-2, -1}, {1, -2}, {-1, -2}}
	for sq := A1; sq < NoSquare; sq++ {
		f, r := sq.File(), sq.Rank()
		for _, d := range knightDeltas {
			if onBoard(f+d[0], r+d[1]) {
				knightAttacks[sq] |= SquareBB(NewSquare(f+d[0], r+d[1]))
			}
		}

		bb := SquareBB(sq)
		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()
	}
}

func initPawnAttacks() {
	for sq := A1; sq < NoSquare; sq++ {
		bb := SquareBB(sq)

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		pawnPushes[White][sq] = bb.North()
		pawnPushes[Black][sq] = bb.South()
	}
}

func initRays() {
	for dir, d := range rayDelta {
		for sq := A1; sq < NoSquare; sq++ {
			f, r := sq.File()+d[0], sq.Rank()+d[1]
			for onBoard(f, r) {
				rays[dir][sq] |= SquareBB(NewSquare(f, r))
				f += d[0]
				r += d[1]
			}
		}
	}
}

// rayAttacks returns the squares reached along dir from sq, stopping at
// (and including) the first occupied square.
func rayAttacks(dir int, sq Square, occupied Bitboard) Bitboard {
	attacks := rays[dir][sq]
	blockers := attacks & occupied
	if blockers == 0 {
		return attacks
	}
	var first Square
	if dir < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return attacks &^ rays[dir][first]
}

// KnightAttacks returns knight attacks from a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns king attacks from a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c attacks from sq.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// RookAttacks returns rook attacks for the given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, dir := range rookDirs {
		attacks |= rayAttacks(dir, sq, occupied)
	}
	return attacks
}

// BishopAttacks returns bishop attacks for the given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, dir := range bishopDirs {
		attacks |= rayAttacks(dir, sq, occupied)
	}
	return attacks
}

// QueenAttacks returns queen attacks for the given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return RookAttacks(sq, occupied) | BishopAttacks(sq, occupied)
}

// IsSquareAttacked returns true if sq is attacked by any piece of color by.
// Pawns attack diagonally whether or not they could advance.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	if sq >= NoSquare {
		return false
	}
	if pawnAttacks[by.Other()][sq]&p.Pieces[by][Pawn] != 0 {
		return true
	}
	if knightAttacks[sq]&p.Pieces[by][Knight] != 0 {
		return true
	}
	if kingAttacks[sq]&p.Pieces[by][King] != 0 {
		return true
	}
	queens := p.Pieces[by][Queen]
	if RookAttacks(sq, p.AllOccupied)&(p.Pieces[by][Rook]|queens) != 0 {
		return true
	}
	return BishopAttacks(sq, p.AllOccupied)&(p.Pieces[by][Bishop]|queens) != 0
}

// AttackersTo returns all pieces of color by that attack sq.
func (p *Position) AttackersTo(sq Square, by Color) Bitboard {
	queens := p.Pieces[by][Queen]
	return pawnAttacks[by.Other()][sq]&p.Pieces[by][Pawn] |
		knightAttacks[sq]&p.Pieces[by][Knight] |
		kingAttacks[sq]&p.Pieces[by][King] |
		RookAttacks(sq, p.AllOccupied)&(p.Pieces[by][Rook]|queens) |
		BishopAttacks(sq, p.AllOccupied)&(p.Pieces[by][Bishop]|queens)
}

// UpdateCheckers recomputes the pieces giving check to the side to move.
func (p *Position) UpdateCheckers() {
	ksq := p.KingSquare[p.SideToMove]
	if ksq >= NoSquare {
		p.Checkers = Empty
		return
	}
	p.Checkers = p.AttackersTo(ksq, p.SideToMove.Other())
}
