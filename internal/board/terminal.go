package board

import "errors"

// FiftyMoveLimit is the half-move clock value (in plies) at which the game is drawn.
const FiftyMoveLimit = 100

// ErrNotTerminal is returned by Result for a game still in progress.
var ErrNotTerminal = errors.New("game is not finished")

// Status classifies a state.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	FiftyMoveDraw
	RepetitionDraw
	InsufficientMaterial
)

func (st Status) String() string {
	switch st {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveDraw:
		return "fifty-move rule"
	case RepetitionDraw:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return "unknown"
	}
}

// IsDraw reports whether the status ends the game without a winner.
func (st Status) IsDraw() bool {
	return st != Ongoing && st != Checkmate
}

// Outcome is a finished game's result from White's point of view.
type Outcome int8

const (
	BlackWin Outcome = -1
	Draw     Outcome = 0
	WhiteWin Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// Winner returns the winning color, or NoColor for a draw.
func (o Outcome) Winner() Color {
	switch o {
	case WhiteWin:
		return White
	case BlackWin:
		return Black
	default:
		return NoColor
	}
}

// Status classifies the state in priority order: checkmate, stalemate,
// fifty-move rule, threefold repetition, bare kings.
func (s State) Status() Status {
	pos := s.pos
	if !pos.HasLegalMoves() {
		if pos.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if pos.HalfMoveClock >= FiftyMoveLimit {
		return FiftyMoveDraw
	}
	// Two earlier occurrences plus the current one make three.
	if s.Repetitions() >= 2 {
		return RepetitionDraw
	}
	if pos.IsInsufficientMaterial() {
		return InsufficientMaterial
	}
	return Ongoing
}

// IsTerminal reports whether the game has ended.
func (s State) IsTerminal() bool {
	return s.Status() != Ongoing
}

// Result returns the outcome of a finished game. Checkmate is a loss for the
// side to move; every other terminal status is a draw.
func (s State) Result() (Outcome, error) {
	return s.Status().Outcome(s.pos.SideToMove)
}

// Outcome converts a terminal status into a result, given the side to move.
func (st Status) Outcome(toMove Color) (Outcome, error) {
	switch {
	case st == Ongoing:
		return Draw, ErrNotTerminal
	case st == Checkmate && toMove == White:
		return BlackWin, nil
	case st == Checkmate:
		return WhiteWin, nil
	default:
		return Draw, nil
	}
}
