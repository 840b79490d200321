package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/diagram"
	"github.com/hailam/minichess/internal/engine"
)

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.state = board.InitialState()
	sc.undo = nil
	return msg(sc.renderState()), nil
}

func (sc *ShellController) setFEN(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.state.FEN()), nil
	}
	s, err := board.StateFromFEN(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.state = s
	sc.undo = nil
	return msg(sc.renderState()), nil
}

func (sc *ShellController) listMoves(cmd *shellcmd) (*Response, error) {
	moves := sc.state.LegalMoves()
	if len(moves) == 0 {
		return msg("no legal moves (" + sc.state.Status().String() + ")"), nil
	}
	lines := lo.Map(moves, func(m board.Move, _ int) string {
		return fmt.Sprintf("%-6s %s", m, sc.state.SAN(m))
	})
	return msg(fmt.Sprintf("%d legal moves:\n%s", len(moves), strings.Join(lines, "\n"))), nil
}

// parseMove accepts coordinate notation or SAN.
func (sc *ShellController) parseMove(text string) (board.Move, error) {
	m, err := sc.state.ParseMove(text)
	if err == nil {
		return m, nil
	}
	if m, sanErr := sc.state.ParseSAN(text); sanErr == nil {
		return m, nil
	}
	return board.NoMove, err
}

func (sc *ShellController) apply(m board.Move) (string, error) {
	san := sc.state.SAN(m)
	next, err := sc.state.Apply(m)
	if err != nil {
		return "", err
	}
	sc.undo = append(sc.undo, sc.state)
	sc.state = next
	return san, nil
}

func (sc *ShellController) playMove(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: move <move>, e.g. move b1c3 or move Nc3")
	}
	if sc.state.IsTerminal() {
		return nil, fmt.Errorf("game is over: %s", sc.state.Status())
	}
	m, err := sc.parseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	san, err := sc.apply(m)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("played %s\n%s", san, sc.renderState())), nil
}

func (sc *ShellController) goMove(cmd *shellcmd) (*Response, error) {
	ag := sc.opponent
	if len(cmd.args) > 0 {
		var err error
		if ag, err = agent.Parse(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	if sc.state.IsTerminal() {
		return nil, fmt.Errorf("game is over: %s", sc.state.Status())
	}

	var m board.Move
	var info string
	start := time.Now()

	switch a := ag.(type) {
	case *agent.Minimax:
		res, err := a.Search(sc.state)
		if err != nil {
			return nil, err
		}
		m = res.BestMove
		info = fmt.Sprintf("depth %d, score %s, nodes %d, pv %s",
			res.DepthReached, engine.ScoreToString(res.Score), res.Nodes,
			strings.Join(sc.state.MovesToSAN(res.PV), " "))
	case *agent.MCTS:
		res, err := a.Search(sc.state)
		if err != nil {
			return nil, err
		}
		m = res.BestMove
		info = fmt.Sprintf("%d simulations, %s", res.Simulations, topChildren(sc.state, res.Children, 3))
	default:
		var err error
		if m, err = ag.ChooseMove(sc.state); err != nil {
			return nil, err
		}
	}

	san, err := sc.apply(m)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s plays %s (%s)", ag.Name(), san, time.Since(start).Round(time.Millisecond))
	if info != "" {
		sb.WriteString("\n" + info)
	}
	sb.WriteString("\n" + sc.renderState())
	return msg(sb.String()), nil
}

func topChildren(s board.State, children []engine.ChildStat, n int) string {
	sorted := append([]engine.ChildStat(nil), children...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Visits > sorted[j].Visits })
	parts := lo.Map(lo.Subset(sorted, 0, uint(n)), func(c engine.ChildStat, _ int) string {
		return fmt.Sprintf("%s %d visits %.2f", s.SAN(c.Move), c.Visits, c.Value)
	})
	return strings.Join(parts, "; ")
}

func (sc *ShellController) undoMove(cmd *shellcmd) (*Response, error) {
	if len(sc.undo) == 0 {
		return nil, errors.New("nothing to undo")
	}
	sc.state = sc.undo[len(sc.undo)-1]
	sc.undo = sc.undo[:len(sc.undo)-1]
	return msg(sc.renderState()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if v, ok := cmd.options["flip"]; ok {
		flip, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		sc.flip = flip
	}
	return msg(sc.renderState()), nil
}

func (sc *ShellController) png(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: png <file> [-size N] [-flip true] [-coords false]")
	}
	opts := diagram.Options{
		Flip:              sc.flip,
		Coordinates:       true,
		HighlightLastMove: true,
	}
	if v, ok := cmd.options["size"]; ok {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("size must be a positive integer, got %q", v)
		}
		opts.SquareSize = size
	}
	for name, dst := range map[string]*bool{"flip": &opts.Flip, "coords": &opts.Coordinates} {
		if v, ok := cmd.options[name]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			*dst = b
		}
	}
	if err := diagram.SavePNG(cmd.args[0], sc.state, opts); err != nil {
		return nil, err
	}
	return msg("wrote " + cmd.args[0]), nil
}

func (sc *ShellController) setAgent(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		lines := []string{"current: " + sc.opponent.Name(), "available:"}
		for _, k := range agent.Kinds() {
			lines = append(lines, fmt.Sprintf("  %-8s %s", k, agent.Describe(k)))
		}
		return msg(strings.Join(lines, "\n")), nil
	}
	ag, err := agent.Parse(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.opponent = ag
	return msg("opponent set to " + ag.Name()), nil
}

func (sc *ShellController) status(cmd *shellcmd) (*Response, error) {
	s := sc.state
	var sb strings.Builder
	fmt.Fprintf(&sb, "FEN: %s\n", s.FEN())
	fmt.Fprintf(&sb, "%s to move, ply %d, half-move clock %d, repetitions %d\n",
		s.SideToMove(), s.Ply(), s.HalfMoveClock(), s.Repetitions())
	pos := s.Position()
	fmt.Fprintf(&sb, "material %+d\n", engine.Material(&pos))
	st := s.Status()
	if st == board.Ongoing {
		sb.WriteString("status: ongoing")
		if s.InCheck() {
			sb.WriteString(", in check")
		}
	} else {
		res, _ := s.Result()
		fmt.Fprintf(&sb, "status: %s, result %s", st, res)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) stats(cmd *shellcmd) (*Response, error) {
	if sc.store == nil {
		return nil, errors.New("storage is disabled; start with --store")
	}
	all, err := sc.store.AllAgentStats()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return msg("no games recorded"), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-32s %6s %5s %5s %5s %7s\n", "Agent", "Games", "Won", "Drawn", "Lost", "Score")
	for _, st := range all {
		fmt.Fprintf(&sb, "%-32s %6d %5d %5d %5d %6.1f%%\n",
			st.Agent, st.GamesPlayed, st.Wins, st.Draws, st.Losses, st.GetWinRate())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) perft(cmd *shellcmd) (*Response, error) {
	depth := 3
	if len(cmd.args) > 0 {
		d, err := strconv.Atoi(cmd.args[0])
		if err != nil || d < 0 {
			return nil, fmt.Errorf("depth must be a non-negative integer, got %q", cmd.args[0])
		}
		depth = d
	}
	pos := sc.state.Position()
	start := time.Now()
	nodes := engine.Perft(&pos, depth)
	return msg(fmt.Sprintf("perft(%d) = %d (%s)", depth, nodes, time.Since(start).Round(time.Millisecond))), nil
}
