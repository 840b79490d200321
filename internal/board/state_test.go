package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func TestInitialStateMoveOrder(t *testing.T) {
	s := InitialState()

	assert.Equal(t, White, s.SideToMove())
	assert.Equal(t, StartFEN, s.FEN())
	assert.Equal(t,
		[]string{"a2a3", "b2b3", "c2c3", "d2d3", "e2e3", "b1a3", "b1c3"},
		moveStrings(s.LegalMoves()))
}

func TestLegalMovesDeterministic(t *testing.T) {
	s := InitialState().MustApply(NewMove(C2, C3, 0))
	assert.Equal(t, s.LegalMoves(), s.LegalMoves())

	other := InitialState().MustApply(NewMove(C2, C3, 0))
	assert.Equal(t, s.LegalMoves(), other.LegalMoves())
	assert.Equal(t, s.Hash(), other.Hash())
}

func TestApplyDoesNotModifyReceiver(t *testing.T) {
	s := InitialState()
	before := s.FEN()

	next, err := s.Apply(s.LegalMoves()[0])
	require.NoError(t, err)

	assert.Equal(t, before, s.FEN())
	assert.Equal(t, 0, s.Ply())
	assert.Empty(t, s.History())
	assert.Equal(t, NoMove, s.LastMove())

	assert.Equal(t, 1, next.Ply())
	assert.Equal(t, Black, next.SideToMove())
	assert.Equal(t, []uint64{s.Hash()}, next.History())
	assert.Equal(t, "a2a3", next.LastMove().String())
}

func TestSiblingStatesShareHistory(t *testing.T) {
	root := InitialState().MustApply(NewMove(B2, B3, 0))
	moves := root.LegalMoves()
	require.GreaterOrEqual(t, len(moves), 2)

	a := root.MustApply(moves[0])
	b := root.MustApply(moves[1])

	assert.Equal(t, a.History(), b.History())
	assert.Len(t, root.History(), 1)
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestApplyIllegalMove(t *testing.T) {
	s := InitialState()

	tests := []struct {
		name string
		move Move
	}{
		{"no move", NoMove},
		{"double pawn push", NewMove(A2, A4, 0)},
		{"black piece", NewMove(A4, A3, 0)},
		{"king into own piece", NewMove(E1, D2, 0)},
		{"wrong flags", NewMove(B1, C3, FlagCapture)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Apply(tc.move)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIllegalMove))

			var ime *IllegalMoveError
			require.ErrorAs(t, err, &ime)
			assert.Equal(t, tc.move, ime.Move)
			assert.Equal(t, StartFEN, ime.FEN)
		})
	}

	assert.Panics(t, func() { s.MustApply(NewMove(A2, A4, 0)) })
}

func TestParseMove(t *testing.T) {
	s := mustState(t, "5/1k3/1pq2/2R2/4K w 0 1")

	m, err := s.ParseMove("c2c3")
	require.NoError(t, err)
	assert.True(t, m.IsCapture())
	assert.Equal(t, C2, m.From())
	assert.Equal(t, C3, m.To())

	_, err = s.ParseMove("c2c4")
	require.ErrorIs(t, err, ErrIllegalMove)

	_, err = s.ParseMove("c2")
	require.Error(t, err)

	_, err = s.ParseMove("c2c3n")
	require.Error(t, err)
}

func TestPromotionAlwaysQueen(t *testing.T) {
	s := mustState(t, "4k/1P3/5/5/K4 w 0 1")

	moves := s.LegalMoves()
	require.Equal(t, []string{"b4b5q", "a1b1", "a1a2", "a1b2"}, moveStrings(moves))
	require.True(t, moves[0].IsPromotion())
	assert.Equal(t, Queen, moves[0].Promotion())

	next := s.MustApply(moves[0])
	assert.Equal(t, WhiteQueen, next.PieceAt(B5))
	assert.True(t, next.InCheck())
	assert.Equal(t, 0, next.HalfMoveClock())
}

func playMoves(t *testing.T, s State, moves ...string) State {
	t.Helper()
	for _, text := range moves {
		m, err := s.ParseMove(text)
		require.NoError(t, err, text)
		s, err = s.Apply(m)
		require.NoError(t, err, text)
	}
	return s
}

func TestHalfMoveClock(t *testing.T) {
	s := playMoves(t, InitialState(), "b1a3", "b5c3")
	assert.Equal(t, 2, s.HalfMoveClock())

	s = playMoves(t, s, "b2b3")
	assert.Equal(t, 0, s.HalfMoveClock(), "pawn move resets the clock")

	s = playMoves(t, s, "c3b1", "a3b5")
	assert.Equal(t, 2, s.HalfMoveClock())

	s = playMoves(t, s, "b1d2")
	assert.Equal(t, 0, s.HalfMoveClock(), "capture resets the clock")
	assert.Equal(t, 6, s.Ply())
	assert.Equal(t, 4, s.Position().FullMoveNumber)
}

// Applying any legal move never leaves the mover's king attacked.
func TestLegalMovesKeepKingSafe(t *testing.T) {
	var walk func(s State, depth int) int
	walk = func(s State, depth int) int {
		if depth == 0 {
			return 1
		}
		n := 0
		for _, m := range s.LegalMoves() {
			mover := s.SideToMove()
			next := s.MustApply(m)
			pos := next.Position()
			require.False(t, pos.IsSquareAttacked(pos.KingSquare[mover], next.SideToMove()),
				"%s leaves king attacked in %s", m, s.FEN())
			n += walk(next, depth-1)
		}
		return n
	}
	assert.Equal(t, 4775, walk(InitialState(), 4))
}

func TestRender(t *testing.T) {
	want := "" +
		"5 r n b q k\n" +
		"4 p p p p p\n" +
		"3 . . . . .\n" +
		"2 P P P P P\n" +
		"1 R N B Q K\n" +
		"  a b c d e"
	assert.Equal(t, want, InitialState().Render())
}
