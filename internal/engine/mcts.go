package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/hailam/minichess/internal/board"
)

// MCTS defaults.
const (
	DefaultSimulations  = 500
	DefaultRolloutDepth = 20
)

// DefaultExploration is the UCB1 exploration constant √2.
var DefaultExploration = math.Sqrt2

// MCTSOptions configures an MCTS engine. Zero fields take the defaults.
type MCTSOptions struct {
	Simulations  int
	TimeLimit    time.Duration
	RolloutDepth int
	Policy       RolloutPolicy
	Exploration  float64
}

func (o MCTSOptions) withDefaults() MCTSOptions {
	if o.Simulations <= 0 {
		o.Simulations = DefaultSimulations
	}
	if o.RolloutDepth <= 0 {
		o.RolloutDepth = DefaultRolloutDepth
	}
	if o.Exploration <= 0 {
		o.Exploration = DefaultExploration
	}
	return o
}

// node is one position in the search tree. value accumulates results from
// the point of view of the player who made the move leading to the node.
type node struct {
	state    board.State
	move     board.Move
	parent   *node
	children []*node
	untried  []board.Move
	terminal bool

	visits int
	value  float64
}

// newNode creates a node whose untried moves are ordered captures first,
// each group in generator order.
func newNode(s board.State, move board.Move, parent *node) *node {
	n := &node{state: s, move: move, parent: parent}
	if s.IsTerminal() {
		n.terminal = true
		return n
	}

	moves := s.LegalMoves()
	n.untried = make([]board.Move, 0, len(moves))
	for _, m := range moves {
		if m.IsCapture() {
			n.untried = append(n.untried, m)
		}
	}
	for _, m := range moves {
		if !m.IsCapture() {
			n.untried = append(n.untried, m)
		}
	}
	return n
}

// ucb1 scores a child for selection. Unvisited children come first.
func (n *node) ucb1(c float64, logParent float64) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}
	mean := n.value / float64(n.visits)
	return mean + c*math.Sqrt(logParent/float64(n.visits))
}

// selectChild returns the child with the highest UCB1 score; ties go to
// the earliest expanded child.
func (n *node) selectChild(c float64) *node {
	logParent := math.Log(float64(n.visits))
	best := n.children[0]
	bestScore := best.ucb1(c, logParent)
	for _, child := range n.children[1:] {
		if score := child.ucb1(c, logParent); score > bestScore {
			best, bestScore = child, score
		}
	}
	return best
}

// expand instantiates the next untried move as a child.
func (n *node) expand() *node {
	m := n.untried[0]
	n.untried = n.untried[1:]
	child := newNode(n.state.MustApply(m), m, n)
	n.children = append(n.children, child)
	return child
}

// robustChild returns the most visited child; ties go to the earliest.
func (n *node) robustChild() *node {
	best := n.children[0]
	for _, child := range n.children[1:] {
		if child.visits > best.visits {
			best = child
		}
	}
	return best
}

// ChildStat reports the statistics of one root child.
type ChildStat struct {
	Move   board.Move
	Visits int
	// Value is the mean result from the root player's point of view.
	Value float64
}

// MCTSResult is the outcome of an MCTS decision.
type MCTSResult struct {
	BestMove    board.Move
	Simulations int
	RootVisits  int
	Unexpanded  int
	Children    []ChildStat
	Elapsed     time.Duration
}

// MCTS is a Monte Carlo Tree Search engine. It owns its random source and is
// not safe for concurrent use. The tree is rebuilt for every decision.
type MCTS struct {
	opts MCTSOptions
	rng  *rand.Rand
}

// NewMCTS creates an MCTS engine drawing randomness from rng.
func NewMCTS(opts MCTSOptions, rng *rand.Rand) *MCTS {
	return &MCTS{opts: opts.withDefaults(), rng: rng}
}

// Options returns the effective options.
func (e *MCTS) Options() MCTSOptions {
	return e.opts
}

// ChooseMove returns the most visited root move after the simulation budget.
func (e *MCTS) ChooseMove(s board.State) (board.Move, error) {
	res, err := e.Search(s)
	if err != nil {
		return board.NoMove, err
	}
	return res.BestMove, nil
}

// Search runs simulations until the count or time budget is exhausted. The
// deadline is checked only between whole simulations, and at least one
// simulation always runs so that the root has a child to choose.
func (e *MCTS) Search(s board.State) (MCTSResult, error) {
	if s.IsTerminal() {
		return MCTSResult{}, fmt.Errorf("mcts: %w (%s)", ErrNoLegalMove, s.Status())
	}

	tm := NewTimeManager(e.opts.TimeLimit)
	tm.Start()

	if moves := s.LegalMoves(); len(moves) == 1 {
		return MCTSResult{BestMove: moves[0], Elapsed: tm.Elapsed()}, nil
	}

	root := newNode(s, board.NoMove, nil)

	sims := 0
	for sims < e.opts.Simulations && (sims == 0 || !tm.ShouldStop()) {
		e.simulate(root)
		sims++
	}

	best := root.robustChild()
	res := MCTSResult{
		BestMove:    best.move,
		Simulations: sims,
		RootVisits:  root.visits,
		Unexpanded:  len(root.untried),
		Children:    make([]ChildStat, len(root.children)),
		Elapsed:     tm.Elapsed(),
	}
	for i, child := range root.children {
		res.Children[i] = ChildStat{
			Move:   child.move,
			Visits: child.visits,
			Value:  child.value / float64(child.visits),
		}
	}

	log.Debug().
		Int("simulations", sims).
		Int("root_visits", root.visits).
		Str("move", best.move.String()).
		Int("visits", best.visits).
		Dur("elapsed", res.Elapsed).
		Msg("mcts decision")

	return res, nil
}

// simulate runs one selection, expansion, rollout and backpropagation cycle.
func (e *MCTS) simulate(root *node) {
	n := root

	// Selection
	for len(n.untried) == 0 && len(n.children) > 0 {
		n = n.selectChild(e.opts.Exploration)
	}

	// Expansion
	if len(n.untried) > 0 {
		n = n.expand()
	}

	// Simulation
	var result float64
	if n.terminal {
		result = terminalValue(n.state)
	} else {
		pos := n.state.Position()
		result = rollout(&pos, e.opts.Policy, e.rng, e.opts.RolloutDepth)
	}

	backpropagate(n, result)
}

// terminalValue scores a finished game from White's point of view.
func terminalValue(s board.State) float64 {
	res, err := s.Result()
	if err != nil {
		return 0
	}
	return float64(res)
}

// backpropagate adds a White-relative result to every node from n up to the
// root. Each node is credited from the point of view of the player who moved
// into it, which flips sign every ply.
func backpropagate(n *node, white float64) {
	for ; n != nil; n = n.parent {
		n.visits++
		mover := n.state.SideToMove().Other()
		n.value += white * float64(mover.Sign())
	}
}
