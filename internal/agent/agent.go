// Package agent wraps the search engines and the baseline players behind a
// single move-choosing interface.
package agent

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

// Agent chooses moves. Implementations keep per-instance state (random
// sources, transposition tables) and are not safe for concurrent use.
type Agent interface {
	// Name returns the canonical spec string of the agent.
	Name() string
	// ChooseMove returns a legal move for s, or an error wrapping
	// engine.ErrNoLegalMove when s is terminal.
	ChooseMove(s board.State) (board.Move, error)
}

// newRand returns a generator for seed, or an entropy-seeded one when seed is nil.
func newRand(seed *uint64) *rand.Rand {
	var s uint64
	if seed != nil {
		s = *seed
	} else {
		s = frand.Uint64n(math.MaxUint64)
	}
	return rand.New(rand.NewSource(s))
}

// Random plays a uniformly random legal move.
type Random struct {
	spec Spec
	rng  *rand.Rand
}

// NewRandom creates a random agent. A nil seed draws one from the OS.
func NewRandom(seed *uint64) *Random {
	return &Random{
		spec: Spec{Kind: KindRandom, Seed: seed},
		rng:  newRand(seed),
	}
}

func (a *Random) Name() string { return a.spec.String() }

func (a *Random) ChooseMove(s board.State) (board.Move, error) {
	if s.IsTerminal() {
		return board.NoMove, noMove(s)
	}
	moves := s.LegalMoves()
	return moves[a.rng.Intn(len(moves))], nil
}

// Greedy maximizes material after one ply; ties go to the earliest move.
type Greedy struct{}

// NewGreedy creates a greedy agent.
func NewGreedy() *Greedy {
	return &Greedy{}
}

func (a *Greedy) Name() string { return string(KindGreedy) }

func (a *Greedy) ChooseMove(s board.State) (board.Move, error) {
	if s.IsTerminal() {
		return board.NoMove, noMove(s)
	}

	pos := s.Position()
	sign := pos.SideToMove.Sign()
	moves := pos.GenerateLegalMoves()

	best := board.NoMove
	bestScore := math.MinInt
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		score := engine.Material(&pos) * sign
		pos.UnmakeMove(m, undo)
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, nil
}

// Minimax wraps the alpha-beta engine.
type Minimax struct {
	spec Spec
	eng  *engine.Minimax
}

// NewMinimax creates a minimax agent searching to depth plies, optionally
// bounded by a per-move time limit. depth must be positive.
func NewMinimax(depth int, timeLimit time.Duration) (*Minimax, error) {
	return newMinimax(Spec{Kind: KindMinimax, Depth: depth, TimeLimit: timeLimit})
}

func newMinimax(spec Spec) (*Minimax, error) {
	if spec.Depth <= 0 {
		return nil, configErr(string(KindMinimax), "depth", spec.Depth, "must be positive")
	}
	if spec.TimeLimit < 0 {
		return nil, configErr(string(KindMinimax), "time", spec.TimeLimit, "must be positive when set")
	}
	ttMB := spec.TTSizeMB
	if ttMB <= 0 {
		ttMB = engine.DefaultTTSizeMB
	}
	limits := engine.SearchLimits{Depth: spec.Depth, MoveTime: spec.TimeLimit}
	return &Minimax{spec: spec, eng: engine.NewMinimax(limits, ttMB)}, nil
}

func (a *Minimax) Name() string { return a.spec.String() }

func (a *Minimax) ChooseMove(s board.State) (board.Move, error) {
	return a.eng.ChooseMove(s)
}

// Search exposes the full search result.
func (a *Minimax) Search(s board.State) (engine.SearchResult, error) {
	return a.eng.Search(s)
}

// MCTS wraps the Monte Carlo Tree Search engine.
type MCTS struct {
	spec Spec
	eng  *engine.MCTS
}

// MCTSConfig holds the MCTS agent options. All numeric fields must be
// positive except TimeLimit, where zero means no limit.
type MCTSConfig struct {
	Simulations  int
	TimeLimit    time.Duration
	RolloutDepth int
	Policy       engine.RolloutPolicy
	Exploration  float64
	Seed         *uint64
}

// NewMCTS creates an MCTS agent.
func NewMCTS(cfg MCTSConfig) (*MCTS, error) {
	return newMCTS(Spec{
		Kind:         KindMCTS,
		Simulations:  cfg.Simulations,
		TimeLimit:    cfg.TimeLimit,
		RolloutDepth: cfg.RolloutDepth,
		Policy:       cfg.Policy.String(),
		Exploration:  cfg.Exploration,
		Seed:         cfg.Seed,
	})
}

func newMCTS(spec Spec) (*MCTS, error) {
	const name = string(KindMCTS)
	switch {
	case spec.Simulations <= 0:
		return nil, configErr(name, "sims", spec.Simulations, "must be positive")
	case spec.RolloutDepth <= 0:
		return nil, configErr(name, "rollout", spec.RolloutDepth, "must be positive")
	case !(spec.Exploration > 0) || math.IsInf(spec.Exploration, 0):
		return nil, configErr(name, "c", spec.Exploration, "must be a positive number")
	case spec.TimeLimit < 0:
		return nil, configErr(name, "time", spec.TimeLimit, "must be positive when set")
	}

	policy, err := engine.ParseRolloutPolicy(spec.Policy)
	if err != nil {
		return nil, configErr(name, "policy", spec.Policy, err.Error())
	}

	opts := engine.MCTSOptions{
		Simulations:  spec.Simulations,
		TimeLimit:    spec.TimeLimit,
		RolloutDepth: spec.RolloutDepth,
		Policy:       policy,
		Exploration:  spec.Exploration,
	}
	return &MCTS{spec: spec, eng: engine.NewMCTS(opts, newRand(spec.Seed))}, nil
}

func (a *MCTS) Name() string { return a.spec.String() }

func (a *MCTS) ChooseMove(s board.State) (board.Move, error) {
	return a.eng.ChooseMove(s)
}

// Search exposes the root statistics of the decision.
func (a *MCTS) Search(s board.State) (engine.MCTSResult, error) {
	return a.eng.Search(s)
}
