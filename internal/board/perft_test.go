package board

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perft counts leaf nodes of the legal move tree.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}
	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

// divide returns the perft count below each root move.
func divide(p *Position, depth int) map[string]int64 {
	out := map[string]int64{}
	moves := p.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		out[m.String()] = perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return out
}

func TestPerftInitialPosition(t *testing.T) {
	for _, tc := range []struct {
		depth int
		nodes int64
	}{
		{1, 7},
		{2, 53},
		{3, 506},
		{4, 4775},
	} {
		t.Run(fmt.Sprintf("depth%d", tc.depth), func(t *testing.T) {
			assert.Equal(t, tc.nodes, perft(NewPosition(), tc.depth))
		})
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	pos := NewPosition()
	counts := divide(pos, 3)
	require.Len(t, counts, 7)

	var sum int64
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, perft(pos, 3), sum)

	// At depth 1 every root move is one leaf.
	for move, n := range divide(pos, 1) {
		assert.Equal(t, int64(1), n, move)
	}
}

// TestMakeUnmakeRestoresPosition walks every move to depth 3 and checks that
// unmake restores the position exactly.
func TestMakeUnmakeRestoresPosition(t *testing.T) {
	var walk func(p *Position, depth int)
	walk = func(p *Position, depth int) {
		if depth == 0 {
			return
		}
		moves := p.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			before := *p
			undo := p.MakeMove(m)
			if p.Hash != p.computeHash() {
				t.Fatalf("incremental hash mismatch after %s in %s", m, before.FEN())
			}
			walk(p, depth-1)
			p.UnmakeMove(m, undo)
			if *p != before {
				t.Fatalf("unmake %s did not restore %s, got %s", m, before.FEN(), p.FEN())
			}
		}
	}
	walk(NewPosition(), 3)
}

func BenchmarkPerft4(b *testing.B) {
	pos := NewPosition()
	for i := 0; i < b.N; i++ {
		perft(pos, 4)
	}
}
