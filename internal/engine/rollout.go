package engine

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/hailam/minichess/internal/board"
)

// RolloutPolicy picks moves during the simulation phase of MCTS.
type RolloutPolicy uint8

const (
	// RolloutRandom picks uniformly among legal moves.
	RolloutRandom RolloutPolicy = iota
	// RolloutCaptureBias picks uniformly among captures when any exist.
	RolloutCaptureBias
)

func (p RolloutPolicy) String() string {
	switch p {
	case RolloutRandom:
		return "random"
	case RolloutCaptureBias:
		return "capture_bias"
	default:
		return fmt.Sprintf("RolloutPolicy(%d)", uint8(p))
	}
}

// ParseRolloutPolicy parses "random" or "capture_bias".
func ParseRolloutPolicy(s string) (RolloutPolicy, error) {
	switch s {
	case "random":
		return RolloutRandom, nil
	case "capture_bias", "capture-bias":
		return RolloutCaptureBias, nil
	default:
		return 0, fmt.Errorf("unknown rollout policy %q", s)
	}
}

// Rollouts stop early once this many plies have been played and the
// normalized material balance exceeds earlyStopMargin.
const (
	earlyStopPlies  = 5
	earlyStopMargin = 0.5
)

// pickRolloutMove chooses a move from moves under the policy.
func pickRolloutMove(policy RolloutPolicy, rng *rand.Rand, moves *board.MoveList) board.Move {
	if policy == RolloutCaptureBias {
		var captures [board.NumSquares * 8]board.Move
		n := 0
		for i := 0; i < moves.Len() && n < len(captures); i++ {
			if m := moves.Get(i); m.IsCapture() {
				captures[n] = m
				n++
			}
		}
		if n > 0 {
			return captures[rng.Intn(n)]
		}
	}
	return moves.Get(rng.Intn(moves.Len()))
}

// rollout plays from pos until the game ends, maxDepth plies have been
// played, or one side is clearly winning. It returns a value in [-1, 1]
// from White's point of view. pos is modified.
func rollout(pos *board.Position, policy RolloutPolicy, rng *rand.Rand, maxDepth int) float64 {
	for depth := 0; depth < maxDepth; depth++ {
		moves := pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			if pos.InCheck() {
				// The side to move is mated.
				return float64(-pos.SideToMove.Sign())
			}
			return 0
		}
		if pos.HalfMoveClock >= board.FiftyMoveLimit || pos.IsInsufficientMaterial() {
			return 0
		}

		if depth > earlyStopPlies {
			if v := NormalizedMaterial(pos); math.Abs(v) > earlyStopMargin {
				return v
			}
		}

		pos.MakeMove(pickRolloutMove(policy, rng, moves))
	}

	return NormalizedMaterial(pos)
}
