package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSAN(t *testing.T) {
	tests := []struct {
		fen  string
		move string
		san  string
	}{
		{StartFEN, "b1c3", "Nc3"},
		{StartFEN, "c2c3", "c3"},
		{"5/1k3/1pq2/2R2/4K w 0 1", "c2c3", "Rxc3"},
		{"4k/1P3/5/5/K4 w 0 1", "b4b5q", "b5=Q+"},
		{"k4/5/1K3/5/2R1q w 0 1", "c1c5", "Rc5#"},
		{"4k/5/5/5/N1N1K w 0 1", "a1b3", "Nab3"},
		{"4k/5/5/5/N1N1K w 0 1", "c1b3", "Ncb3"},
	}

	for _, tc := range tests {
		t.Run(tc.san, func(t *testing.T) {
			s := mustState(t, tc.fen)
			m, err := s.ParseMove(tc.move)
			require.NoError(t, err)
			assert.Equal(t, tc.san, s.SAN(m))

			parsed, err := s.ParseSAN(tc.san)
			require.NoError(t, err)
			assert.Equal(t, m, parsed)
		})
	}
}

func TestParseSANRejects(t *testing.T) {
	s := mustState(t, "4k/1P3/5/5/K4 w 0 1")

	_, err := s.ParseSAN("b5=N")
	require.Error(t, err)

	_, err = s.ParseSAN("Kc3")
	require.ErrorIs(t, err, ErrIllegalMove)

	_, err = s.ParseSAN("K")
	require.Error(t, err)
}

func TestMovesToSAN(t *testing.T) {
	s := InitialState()
	line := []string{"b1c3", "b5c3", "d2c3"}

	moves := make([]Move, 0, len(line))
	cur := s
	for _, text := range line {
		m, err := cur.ParseMove(text)
		require.NoError(t, err)
		moves = append(moves, m)
		cur = cur.MustApply(m)
	}

	assert.Equal(t, []string{"Nc3", "Nxc3", "dxc3"}, s.MovesToSAN(moves))
}
