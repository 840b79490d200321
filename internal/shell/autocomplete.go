package shell

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
)

// ShellCompleter completes command names, options and arguments for readline.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"show":  {Options: []string{"-flip"}},
	"s":     {Options: []string{"-flip"}},
	"png":   {Options: []string{"-size", "-flip", "-coords"}},
	"help":  {Args: []string{"agent", "move", "png", "perft"}},
	"perft": {Args: []string{"1", "2", "3", "4", "5"}},
}

var commandNames = []string{
	"new", "fen", "moves", "move", "m", "go", "undo", "show", "s", "png",
	"agent", "status", "stats", "perft", "help", "quit", "exit",
}

var boolValues = []string{"true", "false"}

// agentSpecs suggests a bare kind plus a typical configuration for each kind.
func agentSpecs() []string {
	specs := lo.Map(agent.Kinds(), func(k agent.Kind, _ int) string { return string(k) })
	return append(specs, "minimax:depth=", "mcts:sims=")
}

// moveCompletions lists the legal moves of s in both notations.
func moveCompletions(s board.State) []string {
	var out []string
	for _, m := range s.LegalMoves() {
		out = append(out, m.String(), s.SAN(m))
	}
	out = lo.Uniq(out)
	sort.Strings(out)
	return out
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "flip", "coords":
				completions = boolValues
			case "size":
				completions = []string{"32", "48", "64", "96"}
			}
		}

		if completions == nil {
			switch cmdName {
			case "move", "m":
				completions = moveCompletions(c.sc.state)
			case "go", "agent":
				completions = agentSpecs()
			default:
				if metadata, ok := commandMetadata[cmdName]; ok {
					if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
						completions = metadata.Options
					} else {
						completions = metadata.Args
					}
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
