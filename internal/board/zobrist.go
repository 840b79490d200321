package board

import "golang.org/x/exp/rand"

// Zobrist hash keys for position hashing.
// Keys come from a fixed seed so hashes are stable across runs.
var (
	zobristPiece      [2][6][NumSquares]uint64 // [Color][PieceType][Square]
	zobristSideToMove uint64                   // XOR when black to move
)

const zobristSeed = 0x98F107A2BEEF1234

func init() {
	initZobrist()
}

func initZobrist() {
	rng := rand.New(rand.NewSource(zobristSeed))

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq < NoSquare; sq++ {
				zobristPiece[c][pt][sq] = rng.Uint64()
			}
		}
	}

	zobristSideToMove = rng.Uint64()
}

// ZobristPiece returns the Zobrist key for a piece on a square.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 {
	return zobristPiece[c][pt][sq]
}

// ZobristSideToMove returns the Zobrist key for side to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}

// computeHash rebuilds the hash from scratch.
func (p *Position) computeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				h ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
