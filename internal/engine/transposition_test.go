package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/minichess/internal/board"
)

func TestTranspositionTableSize(t *testing.T) {
	tt := NewTranspositionTable(1)
	assert.Equal(t, uint64(1024*1024/ttEntrySize), tt.Size())
	assert.Equal(t, tt.Size()-1, tt.mask)
}

func TestTranspositionTableProbe(t *testing.T) {
	tt := NewTranspositionTable(1)
	m := board.NewMove(board.B1, board.C3, 0)

	_, found := tt.Probe(0xDEADBEEF)
	assert.False(t, found)

	tt.Store(0xDEADBEEF, 3, 42, TTExact, m)
	entry, found := tt.Probe(0xDEADBEEF)
	require.True(t, found)
	assert.Equal(t, m, entry.BestMove)
	assert.Equal(t, int16(42), entry.Score)
	assert.Equal(t, int8(3), entry.Depth)
	assert.Equal(t, TTExact, entry.Flag)

	// Same slot, different key.
	_, found = tt.Probe(0xDEADBEEF + tt.Size())
	assert.False(t, found)

	assert.InDelta(t, 100.0/3.0, tt.HitRate(), 0.01)
}

func TestTranspositionTableReplacement(t *testing.T) {
	tt := NewTranspositionTable(1)
	const key = 0x1234
	other := key + tt.Size()

	tt.Store(key, 5, 10, TTExact, board.NoMove)

	// A shallower result from the same search does not replace a deeper one.
	tt.Store(other, 2, 20, TTLowerBound, board.NoMove)
	entry, found := tt.Probe(key)
	require.True(t, found)
	assert.Equal(t, int8(5), entry.Depth)

	// Equal depth replaces.
	tt.Store(other, 5, 30, TTUpperBound, board.NoMove)
	_, found = tt.Probe(key)
	assert.False(t, found)
	entry, found = tt.Probe(other)
	require.True(t, found)
	assert.Equal(t, int16(30), entry.Score)

	// Any result replaces an entry from an earlier search.
	tt.NewSearch()
	tt.Store(key, 1, 40, TTExact, board.NoMove)
	entry, found = tt.Probe(key)
	require.True(t, found)
	assert.Equal(t, int8(1), entry.Depth)

	tt.Clear()
	_, found = tt.Probe(key)
	assert.False(t, found)
	assert.Zero(t, tt.HashFull())
}

func TestMateScoreAdjustment(t *testing.T) {
	for _, score := range []int{MateScore - 3, -MateScore + 7, 5, -9, 0} {
		for ply := 0; ply < 10; ply++ {
			assert.Equal(t, score, AdjustScoreFromTT(AdjustScoreToTT(score, ply), ply))
		}
	}

	// A mate found 3 plies from the root, stored at ply 2, is a mate in
	// 1 ply from that node.
	assert.Equal(t, MateScore-1, AdjustScoreToTT(MateScore-3, 2))
	assert.True(t, IsMateScore(MateScore-1))
	assert.False(t, IsMateScore(9))
}
