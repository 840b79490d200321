package engine

import "github.com/hailam/minichess/internal/board"

// rolloutMaterialFloor keeps normalized scores small when little material is left.
const rolloutMaterialFloor = 20

// Material returns the material balance of pos from White's point of view:
// P=1, N=3, B=3, R=5, Q=9. Kings are not counted.
func Material(pos *board.Position) int {
	return pos.Material()
}

// Evaluate returns the static evaluation of pos relative to the side to move.
func Evaluate(pos *board.Position) int {
	return pos.Material() * pos.SideToMove.Sign()
}

// NormalizedMaterial scales the material balance into roughly [-1, 1], from
// White's point of view.
func NormalizedMaterial(pos *board.Position) float64 {
	total := pos.TotalMaterial()
	if total < rolloutMaterialFloor {
		total = rolloutMaterialFloor
	}
	return float64(pos.Material()) / float64(total)
}
