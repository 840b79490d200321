package agent

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

// Kind names an agent implementation.
type Kind string

const (
	KindRandom  Kind = "random"
	KindGreedy  Kind = "greedy"
	KindMinimax Kind = "minimax"
	KindMCTS    Kind = "mcts"
)

var kindDescriptions = map[Kind]string{
	KindRandom:  "uniformly random legal move (options: seed)",
	KindGreedy:  "best material after one ply",
	KindMinimax: "alpha-beta with transposition table and iterative deepening (options: depth, time, tt)",
	KindMCTS:    "Monte Carlo Tree Search with UCB1 (options: sims, time, rollout, policy, c, seed)",
}

// Kinds returns the known agent kinds in alphabetical order.
func Kinds() []Kind {
	kinds := lo.Keys(kindDescriptions)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Describe returns a one-line description of kind.
func Describe(kind Kind) string {
	return kindDescriptions[kind]
}

// Spec is a parsed agent description such as "minimax:depth=4,time=1s" or
// "mcts:sims=400,policy=capture_bias,seed=7". Zero values mean "default".
type Spec struct {
	Kind         Kind          `yaml:"kind" json:"kind"`
	Depth        int           `yaml:"depth,omitempty" json:"depth,omitempty"`
	TimeLimit    time.Duration `yaml:"time,omitempty" json:"time,omitempty"`
	TTSizeMB     int           `yaml:"tt,omitempty" json:"tt,omitempty"`
	Simulations  int           `yaml:"sims,omitempty" json:"sims,omitempty"`
	RolloutDepth int           `yaml:"rollout,omitempty" json:"rollout,omitempty"`
	Policy       string        `yaml:"policy,omitempty" json:"policy,omitempty"`
	Exploration  float64       `yaml:"c,omitempty" json:"c,omitempty"`
	Seed         *uint64       `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ParseSpec parses "kind[:key=value,...]". Numeric options must be positive.
func ParseSpec(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	kindText, opts, _ := strings.Cut(text, ":")

	spec := Spec{Kind: Kind(strings.ToLower(strings.TrimSpace(kindText)))}
	if _, ok := kindDescriptions[spec.Kind]; !ok {
		return Spec{}, configErr(kindText, "", nil,
			fmt.Sprintf("unknown agent kind (available: %s)", strings.Join(lo.Map(Kinds(), func(k Kind, _ int) string { return string(k) }), ", ")))
	}

	if strings.TrimSpace(opts) == "" {
		return spec, nil
	}

	for _, kv := range strings.Split(opts, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			return Spec{}, configErr(string(spec.Kind), kv, "", "expected key=value")
		}
		if err := spec.set(strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)); err != nil {
			return Spec{}, err
		}
	}
	return spec, nil
}

// MustParseSpec is ParseSpec for literals known to be valid.
func MustParseSpec(text string) Spec {
	spec, err := ParseSpec(text)
	if err != nil {
		panic(err)
	}
	return spec
}

func (s *Spec) set(key, value string) error {
	name := string(s.Kind)
	positiveInt := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return configErr(name, key, value, "must be a positive integer")
		}
		*dst = n
		return nil
	}

	allowed := map[Kind][]string{
		KindRandom:  {"seed"},
		KindGreedy:  {},
		KindMinimax: {"depth", "time", "tt"},
		KindMCTS:    {"sims", "simulations", "time", "rollout", "rollout_depth", "policy", "c", "exploration", "seed"},
	}
	if !lo.Contains(allowed[s.Kind], key) {
		return configErr(name, key, value, "unknown option")
	}

	switch key {
	case "depth":
		return positiveInt(&s.Depth)
	case "tt":
		return positiveInt(&s.TTSizeMB)
	case "sims", "simulations":
		return positiveInt(&s.Simulations)
	case "rollout", "rollout_depth":
		return positiveInt(&s.RolloutDepth)
	case "time":
		d, err := parseDuration(value)
		if err != nil || d <= 0 {
			return configErr(name, key, value, "must be a positive duration")
		}
		s.TimeLimit = d
	case "policy":
		if _, err := engine.ParseRolloutPolicy(value); err != nil {
			return configErr(name, key, value, "must be random or capture_bias")
		}
		s.Policy = value
	case "c", "exploration":
		c, err := strconv.ParseFloat(value, 64)
		if err != nil || !(c > 0) || math.IsInf(c, 0) {
			return configErr(name, key, value, "must be a positive number")
		}
		s.Exploration = c
	case "seed":
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return configErr(name, key, value, "must be a non-negative integer")
		}
		s.Seed = &seed
	}
	return nil
}

// parseDuration accepts Go durations ("500ms") and bare seconds ("1.5").
func parseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(value)
}

// WithSeed returns a copy of s using seed.
func (s Spec) WithSeed(seed uint64) Spec {
	s.Seed = &seed
	return s
}

// Stochastic reports whether the agent draws random numbers.
func (s Spec) Stochastic() bool {
	return s.Kind == KindRandom || s.Kind == KindMCTS
}

// withDefaults fills unset options with the engine defaults.
func (s Spec) withDefaults() Spec {
	switch s.Kind {
	case KindMinimax:
		if s.Depth == 0 && s.TimeLimit == 0 {
			s.Depth = engine.DefaultDepth
		}
		if s.Depth == 0 {
			s.Depth = engine.MaxSearchDepth
		}
	case KindMCTS:
		if s.Simulations == 0 {
			s.Simulations = engine.DefaultSimulations
		}
		if s.RolloutDepth == 0 {
			s.RolloutDepth = engine.DefaultRolloutDepth
		}
		if s.Policy == "" {
			s.Policy = engine.RolloutCaptureBias.String()
		}
		if s.Exploration == 0 {
			s.Exploration = engine.DefaultExploration
		}
	}
	return s
}

// String returns the canonical spec text; ParseSpec(s.String()) yields s.
func (s Spec) String() string {
	var opts []string
	add := func(key, value string) { opts = append(opts, key+"="+value) }

	if s.Depth != 0 {
		add("depth", strconv.Itoa(s.Depth))
	}
	if s.Simulations != 0 {
		add("sims", strconv.Itoa(s.Simulations))
	}
	if s.TimeLimit != 0 {
		add("time", s.TimeLimit.String())
	}
	if s.RolloutDepth != 0 {
		add("rollout", strconv.Itoa(s.RolloutDepth))
	}
	if s.Policy != "" {
		add("policy", s.Policy)
	}
	if s.Exploration != 0 {
		add("c", strconv.FormatFloat(s.Exploration, 'g', -1, 64))
	}
	if s.TTSizeMB != 0 {
		add("tt", strconv.Itoa(s.TTSizeMB))
	}
	if s.Seed != nil {
		add("seed", strconv.FormatUint(*s.Seed, 10))
	}

	if len(opts) == 0 {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + strings.Join(opts, ",")
}

// Config returns the option part of the canonical spec, or "default".
func (s Spec) Config() string {
	_, opts, ok := strings.Cut(s.String(), ":")
	if !ok {
		return "default"
	}
	return opts
}

// New builds an agent from spec, applying defaults to unset options and
// validating the rest.
func New(spec Spec) (Agent, error) {
	if spec.Depth < 0 || spec.Simulations < 0 || spec.RolloutDepth < 0 || spec.TTSizeMB < 0 {
		return nil, configErr(string(spec.Kind), "", nil, "numeric options must not be negative")
	}

	full := spec.withDefaults()
	switch spec.Kind {
	case KindRandom:
		return &Random{spec: spec, rng: newRand(spec.Seed)}, nil
	case KindGreedy:
		return NewGreedy(), nil
	case KindMinimax:
		a, err := newMinimax(full)
		if err != nil {
			return nil, err
		}
		a.spec = spec
		return a, nil
	case KindMCTS:
		a, err := newMCTS(full)
		if err != nil {
			return nil, err
		}
		a.spec = spec
		return a, nil
	default:
		return nil, configErr(string(spec.Kind), "", nil, "unknown agent kind")
	}
}

// Parse parses text and builds the agent.
func Parse(text string) (Agent, error) {
	spec, err := ParseSpec(text)
	if err != nil {
		return nil, err
	}
	return New(spec)
}

func noMove(s board.State) error {
	return fmt.Errorf("%w (%s)", engine.ErrNoLegalMove, s.Status())
}
