package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"k4/5/1K3/5/2R1q w 0 1",
		"2r1Q/5/1k3/5/K4 b 0 1",
		"5/1k3/1pq2/2R2/4K w 7 12",
		"4k/1P3/5/5/K4 w 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			require.NoError(t, err)
			assert.Equal(t, fen, pos.FEN())
			assert.Equal(t, pos.computeHash(), pos.Hash)
		})
	}
}

func TestFENOptionalClocks(t *testing.T) {
	pos, err := ParseFEN("rnbqk/ppppp/5/PPPPP/RNBQK w")
	require.NoError(t, err)
	assert.Equal(t, StartFEN, pos.FEN())
	assert.Equal(t, NewPosition().Hash, pos.Hash)
}

func TestFENSideToMoveChangesHash(t *testing.T) {
	w, err := ParseFEN("4k/5/5/5/KR3 w 0 1")
	require.NoError(t, err)
	b, err := ParseFEN("4k/5/5/5/KR3 b 0 1")
	require.NoError(t, err)

	assert.Equal(t, w.Hash^ZobristSideToMove(), b.Hash)
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		wantErr error
	}{
		{"empty", "", nil},
		{"missing side", "rnbqk/ppppp/5/PPPPP/RNBQK", nil},
		{"too few ranks", "rnbqk/ppppp/5/PPPPP w", nil},
		{"rank too long", "rnbqk/pppppp/5/PPPPP/RNBQK w", nil},
		{"digits overflow", "rnbqk/ppppp/33/PPPPP/RNBQK w", nil},
		{"rank too short", "rnbqk/pppp/5/PPPPP/RNBQK w", nil},
		{"bad digit", "rnbqk/ppppp/6/PPPPP/RNBQK w", nil},
		{"bad piece", "rnbqk/ppppx/5/PPPPP/RNBQK w", nil},
		{"bad side", "rnbqk/ppppp/5/PPPPP/RNBQK x", nil},
		{"bad clock", "rnbqk/ppppp/5/PPPPP/RNBQK w x 1", nil},
		{"bad move number", "rnbqk/ppppp/5/PPPPP/RNBQK w 0 0", nil},
		{"two white kings", "4k/5/5/5/K3K w", ErrTooManyKings},
		{"pawn on back rank", "P3k/5/5/5/K4 w", ErrPawnOnBackRank},
		{"negative clock", "4k/5/5/5/K4 w -1 1", ErrNegativeHalfMove},
		{"opponent in check", "k4/R4/5/5/K4 w", ErrOpponentInCheck},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestStateFromFENHasNoHistory(t *testing.T) {
	s, err := StateFromFEN("4k/5/5/5/KR3 w 30 20")
	require.NoError(t, err)
	assert.Empty(t, s.History())
	assert.Equal(t, 0, s.Repetitions())
	assert.Equal(t, 30, s.HalfMoveClock())
}
