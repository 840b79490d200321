package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustState(t *testing.T, fen string) State {
	t.Helper()
	s, err := StateFromFEN(fen)
	require.NoError(t, err)
	return s
}

func TestCheckmateCorneredKing(t *testing.T) {
	// Black king a1, white queen b2 defended by the king on c3.
	s := mustState(t, "5/5/2K2/1Q3/k4 b 0 1")

	t.Log(s)

	assert.True(t, s.InCheck())
	assert.Empty(t, s.LegalMoves())
	assert.Equal(t, Checkmate, s.Status())
	assert.True(t, s.IsTerminal())

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, WhiteWin, res)
}

func TestStalemate(t *testing.T) {
	s := mustState(t, "4K/5/5/2Q2/k4 b 0 1")

	assert.False(t, s.InCheck())
	assert.Empty(t, s.LegalMoves())
	assert.Equal(t, Stalemate, s.Status())

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, Draw, res)
}

func TestBlackDeliversMate(t *testing.T) {
	s := mustState(t, "2r1Q/5/1k3/5/K4 b 0 1")

	m, err := s.ParseMove("c5c1")
	require.NoError(t, err)

	next, err := s.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, Checkmate, next.Status())

	res, err := next.Result()
	require.NoError(t, err)
	assert.Equal(t, BlackWin, res)
}

func TestDrawRules(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Status
	}{
		{"bare kings", "4k/5/5/5/K4 w 0 1", InsufficientMaterial},
		{"fifty move rule", "4k/5/5/5/KR3 w 100 40", FiftyMoveDraw},
		{"clock below limit", "4k/5/5/5/KR3 w 99 40", Ongoing},
		{"initial position", StartFEN, Ongoing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, tc.fen)
			assert.Equal(t, tc.want, s.Status())
			assert.Equal(t, tc.want != Ongoing, s.IsTerminal())
		})
	}
}

func TestThreefoldRepetition(t *testing.T) {
	s := InitialState()
	shuffle := []string{"b1a3", "b5c3", "a3b1", "c3b5"}

	for round := 0; round < 2; round++ {
		for _, text := range shuffle {
			require.False(t, s.IsTerminal(), "terminal too early before %s in round %d", text, round)
			m, err := s.ParseMove(text)
			require.NoError(t, err)
			s, err = s.Apply(m)
			require.NoError(t, err)
		}
		assert.Equal(t, round+1, s.Repetitions())
	}

	assert.NotEmpty(t, s.LegalMoves())
	assert.Equal(t, RepetitionDraw, s.Status())

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, Draw, res)
}

func TestResultOnOngoingGame(t *testing.T) {
	_, err := InitialState().Result()
	require.ErrorIs(t, err, ErrNotTerminal)
}

// Every non-empty-move state is terminal only through a draw rule.
func TestTerminalConsistency(t *testing.T) {
	var walk func(s State, depth int)
	walk = func(s State, depth int) {
		moves := s.LegalMoves()
		st := s.Status()
		drawRule := s.HalfMoveClock() >= FiftyMoveLimit || s.Repetitions() >= 2 || s.pos.IsInsufficientMaterial()
		require.Equal(t, len(moves) == 0 || drawRule, s.IsTerminal(), s.FEN())
		if len(moves) > 0 && st != Ongoing {
			require.True(t, st.IsDraw())
		}
		if depth == 0 {
			return
		}
		for _, m := range moves {
			walk(s.MustApply(m), depth-1)
		}
	}
	walk(InitialState(), 3)
}
