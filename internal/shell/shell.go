// Package shell implements the interactive minichess command line.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/storage"
)

var (
	errNoData            = errors.New("no data in command")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into command, positional arguments and
// "-name value" options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}

	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") && len(fields[i]) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			cmd.options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		cmd.args = append(cmd.args, fields[i])
	}
	return cmd, nil
}

// Response is the text a command prints.
type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	cfg   *config.Config
	store *storage.Storage
	term  *termenv.Output

	state    board.State
	undo     []board.State
	opponent agent.Agent
	flip     bool
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController builds a controller reading from the terminal. store
// may be nil.
func NewShellController(cfg *config.Config, store *storage.Storage) (*ShellController, error) {
	sc, err := newController(cfg, store, os.Stdout, termenv.NewOutput(os.Stdout))
	if err != nil {
		return nil, err
	}

	historyFile := filepath.Join(os.TempDir(), "minichess_history")
	if dir, err := storage.GetDataDir(); err == nil {
		historyFile = filepath.Join(dir, "history")
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mminichess>\033[0m ",
		HistoryFile:     historyFile,
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stdout()
	return sc, nil
}

func newController(cfg *config.Config, store *storage.Storage, out io.Writer, term *termenv.Output) (*ShellController, error) {
	sc := &ShellController{
		out:   out,
		cfg:   cfg,
		store: store,
		term:  term,
		state: board.InitialState(),
	}
	opp, err := defaultOpponent(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("default agent: %w", err)
	}
	sc.opponent = opp
	return sc, nil
}

// defaultOpponent builds the configured agent, filling in the table size and
// move time from the engine settings when the agent spec leaves them out.
func defaultOpponent(ec config.EngineConfig) (agent.Agent, error) {
	spec, err := agent.ParseSpec(ec.Agent)
	if err != nil {
		return nil, err
	}
	if spec.Kind == agent.KindMinimax && spec.TTSizeMB == 0 && ec.TTSizeMB > 0 {
		spec.TTSizeMB = ec.TTSizeMB
	}
	if (spec.Kind == agent.KindMinimax || spec.Kind == agent.KindMCTS) && spec.TimeLimit == 0 && ec.MoveTime > 0 {
		spec.TimeLimit = ec.MoveTime
	}
	return agent.New(spec)
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Execute runs one command line and prints its response.
func (sc *ShellController) Execute(line string) error {
	resp, err := sc.dispatch(line)
	if errors.Is(err, errQuit) {
		return err
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) dispatch(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if errors.Is(err, errNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "fen":
		return sc.setFEN(cmd)
	case "moves":
		return sc.listMoves(cmd)
	case "move", "m":
		return sc.playMove(cmd)
	case "go":
		return sc.goMove(cmd)
	case "undo":
		return sc.undoMove(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "png":
		return sc.png(cmd)
	case "agent":
		return sc.setAgent(cmd)
	case "status":
		return sc.status(cmd)
	case "stats":
		return sc.stats(cmd)
	case "perft":
		return sc.perft(cmd)
	case "help":
		return sc.help(cmd)
	case "quit", "exit":
		return nil, errQuit
	default:
		log.Debug().Msgf("you said: %q", line)
		return nil, fmt.Errorf("unknown command %q (try help)", cmd.cmd)
	}
}

// Loop reads commands until EOF, interrupt or quit, then signals sig.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	sc.showMessage(sc.renderState())
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)

		if err := sc.Execute(line); err != nil {
			sig <- syscall.SIGINT
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
