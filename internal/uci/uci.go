// Package uci speaks the Universal Chess Interface for the Gardner 5x5
// variant, so GUIs and match tools that support UCI_Variant can drive the
// minimax engine.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

const variant = "gardner"

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Minimax
	state  board.State

	out   io.Writer
	outMu sync.Mutex

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a protocol handler writing responses to out.
func New(eng *engine.Minimax, out io.Writer) *UCI {
	return &UCI{
		engine: eng,
		state:  board.InitialState(),
		out:    out,
	}
}

func (u *UCI) println(a ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, a...)
}

func (u *UCI) printf(format string, a ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, a...)
}

// Run reads commands from in until "quit" or end of input. A running search
// is stopped before Run returns.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	defer u.handleStop()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println(u.state.Render())
			u.println("Fen:", u.state.FEN())
		case "perft":
			u.handlePerft(args)
		default:
			log.Debug().Str("cmd", cmd).Msg("unknown uci command")
		}
	}
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name MiniChess")
	u.println("id author MiniChess Team")
	u.println()
	u.printf("option name Hash type spin default %d min 1 max 1024\n", engine.DefaultTTSizeMB)
	u.println("option name Clear Hash type button")
	u.printf("option name UCI_Variant type combo default %s var %s\n", variant, variant)
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.state = board.InitialState()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves b2b3 b4b3
//   - position fen <fen>
//   - position fen <fen> moves b2b3
//
// An invalid FEN or move leaves the previous position in place.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var s board.State
	switch args[0] {
	case "startpos":
		s = board.InitialState()
	case "fen":
		var err error
		s, err = board.StateFromFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string invalid fen: %v\n", err)
			return
		}
	default:
		return
	}

	if movesAt < len(args) {
		for _, text := range args[movesAt+1:] {
			m, err := s.ParseMove(text)
			if err != nil {
				u.printf("info string invalid move %s: %v\n", text, err)
				return
			}
			s = s.MustApply(m)
		}
	}
	u.state = s
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search in the background. The best move is printed
// when it finishes or when "stop" arrives.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := parseGoOptions(args)
	limits := u.calculateLimits(opts)
	s := u.state
	sign := s.SideToMove().Sign()

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(s, info, sign)
	}

	go func() {
		defer close(u.searchDone)

		res, err := u.engine.SearchWithLimits(ctx, s, limits)
		if err != nil || res.BestMove == board.NoMove {
			// Only send 0000 for checkmate/stalemate (no legal moves)
			moves := s.LegalMoves()
			if len(moves) == 0 {
				u.println("bestmove 0000")
				return
			}
			log.Warn().Err(err).Msg("search returned no move, using fallback")
			u.printf("bestmove %s\n", moves[0])
			return
		}
		u.printf("bestmove %s\n", res.BestMove)
	}()
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	millis := func(i int) time.Duration {
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "depth":
			if hasValue {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if hasValue {
				opts.MoveTime = millis(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if hasValue {
				opts.WTime = millis(i + 1)
				i++
			}
		case "btime":
			if hasValue {
				opts.BTime = millis(i + 1)
				i++
			}
		case "winc":
			if hasValue {
				opts.WInc = millis(i + 1)
				i++
			}
		case "binc":
			if hasValue {
				opts.BInc = millis(i + 1)
				i++
			}
		case "movestogo":
			if hasValue {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts GoOptions to engine.SearchLimits. Without any
// limit the engine's configured limits apply.
func (u *UCI) calculateLimits(opts GoOptions) engine.SearchLimits {
	if opts.Infinite {
		return engine.SearchLimits{Depth: engine.MaxSearchDepth}
	}

	limits := engine.SearchLimits{Depth: opts.Depth}
	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
	} else if opts.WTime > 0 || opts.BTime > 0 {
		limits.MoveTime = u.calculateTimeForMove(opts)
	}

	if limits.Depth == 0 && limits.MoveTime == 0 {
		return u.engine.Limits()
	}
	return limits
}

// calculateTimeForMove determines how much time to spend on this move.
func (u *UCI) calculateTimeForMove(opts GoOptions) time.Duration {
	ourTime, ourInc := opts.WTime, opts.WInc
	if u.state.SideToMove() == board.Black {
		ourTime, ourInc = opts.BTime, opts.BInc
	}

	movesRemaining := opts.MovesToGo
	if movesRemaining == 0 {
		movesRemaining = u.estimateMovesRemaining()
	}

	// Base allocation plus 90% of the increment
	moveTime := ourTime/time.Duration(movesRemaining) + ourInc*90/100

	// Never use more than 90% of remaining time
	if maxTime := ourTime * 90 / 100; moveTime > maxTime {
		moveTime = maxTime
	}
	if moveTime < 10*time.Millisecond {
		moveTime = 10 * time.Millisecond
	}

	log.Debug().
		Dur("allocated", moveTime).
		Int("moves_remaining", movesRemaining).
		Dur("our_time", ourTime).
		Dur("our_inc", ourInc).
		Msg("time for move")
	return moveTime
}

// estimateMovesRemaining estimates remaining moves based on piece count.
func (u *UCI) estimateMovesRemaining() int {
	pos := u.state.Position()
	switch pieces := pos.AllOccupied.PopCount(); {
	case pieces > 14:
		return 25
	case pieces > 8:
		return 20
	default:
		return 15
	}
}

// sendInfo outputs one completed iteration. UCI scores are relative to the
// side to move.
func (u *UCI) sendInfo(root board.State, info engine.SearchInfo, sign int) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	score := info.Score * sign
	switch {
	case score > engine.MateScore-engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.MateScore-score+1)/2))
	case score < -engine.MateScore+engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", -(engine.MateScore+score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	// Stop the PV at the first move that is not legal in the line so far.
	var pv []string
	s := root
	for _, m := range info.PV {
		next, err := s.Apply(m)
		if err != nil {
			break
		}
		pv = append(pv, m.String())
		s = next
	}
	if len(pv) > 0 {
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.searchDone
	u.cancel = nil
}

// handleSetOption processes "setoption name <name> [value <value>]".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}

	val := strings.Join(value, " ")
	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil || mb < 1 {
			u.printf("info string invalid hash size %q\n", val)
			return
		}
		u.handleStop()
		u.engine.ResizeTT(mb)
	case "clear hash":
		u.handleStop()
		u.engine.Clear()
	case "uci_variant":
		if !strings.EqualFold(val, variant) {
			u.printf("info string unsupported variant %q\n", val)
		}
	default:
		log.Debug().Strs("name", name).Msg("unknown option")
	}
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 4
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d >= 0 {
			depth = d
		}
	}

	pos := u.state.Position()
	start := time.Now()
	nodes := engine.Perft(&pos, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
