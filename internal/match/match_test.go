package match

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
)

func mustAgent(t *testing.T, spec string) agent.Agent {
	t.Helper()
	a, err := agent.Parse(spec)
	require.NoError(t, err)
	return a
}

func TestPlayGameReplays(t *testing.T) {
	rec, err := PlayGame(context.Background(), mustAgent(t, "greedy"), mustAgent(t, "random:seed=11"), Options{})
	require.NoError(t, err)

	assert.Equal(t, len(rec.Moves), rec.Plies)
	assert.LessOrEqual(t, rec.Plies, DefaultMaxPlies)

	s := board.InitialState()
	for _, text := range rec.Moves {
		m, err := s.ParseMove(text)
		require.NoError(t, err)
		s = s.MustApply(m)
	}
	assert.Equal(t, rec.FinalFEN, s.FEN())

	if rec.Adjudicated {
		assert.Equal(t, board.Ongoing, rec.Status)
		assert.Equal(t, board.Draw, rec.Outcome)
	} else {
		assert.True(t, s.IsTerminal())
		want, err := s.Result()
		require.NoError(t, err)
		assert.Equal(t, want, rec.Outcome)
	}
}

func TestPlayGameAdjudicates(t *testing.T) {
	rec, err := PlayGame(context.Background(), mustAgent(t, "random:seed=1"), mustAgent(t, "random:seed=2"), Options{MaxPlies: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, rec.Plies)
	assert.True(t, rec.Adjudicated)
	assert.Equal(t, board.Draw, rec.Outcome)
	assert.Equal(t, "adjudicated after max plies", rec.Reason())
}

func TestPlayGameFromFEN(t *testing.T) {
	rec, err := PlayGame(context.Background(), mustAgent(t, "minimax:depth=2"), mustAgent(t, "greedy"), Options{
		StartFEN: "k4/5/1K3/5/2R1q w 0 1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"c1c5"}, rec.Moves)
	assert.Equal(t, board.Checkmate, rec.Status)
	assert.Equal(t, board.WhiteWin, rec.Outcome)
	assert.Equal(t, "1-0", rec.Result())
	assert.Positive(t, rec.WhiteTime)
	assert.Zero(t, rec.BlackTime)
}

func TestPlayGameBadFEN(t *testing.T) {
	_, err := PlayGame(context.Background(), mustAgent(t, "greedy"), mustAgent(t, "greedy"), Options{StartFEN: "nonsense"})
	require.Error(t, err)
}

func TestPlayGameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PlayGame(ctx, mustAgent(t, "greedy"), mustAgent(t, "greedy"), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTallyAttributesSwappedGames(t *testing.T) {
	tally := Tally{AgentA: "a", AgentB: "b"}
	tally.Record(GameRecord{Outcome: board.WhiteWin, Plies: 10})
	tally.Record(GameRecord{Outcome: board.WhiteWin, Swapped: true, Plies: 20})
	tally.Record(GameRecord{Outcome: board.BlackWin, Swapped: true, Plies: 30})
	tally.Record(GameRecord{Outcome: board.Draw, Adjudicated: true, Plies: 40})

	assert.Equal(t, 2, tally.WhiteWins)
	assert.Equal(t, 1, tally.BlackWins)
	assert.Equal(t, 1, tally.Draws)
	assert.Equal(t, 2, tally.AWins)
	assert.Equal(t, 1, tally.BWins)
	assert.Equal(t, 1, tally.Adjudicated)
	assert.InDelta(t, 25.0, tally.AvgPlies(), 1e-9)
	assert.InDelta(t, 0.625, tally.Score(), 1e-9)
	assert.Contains(t, tally.String(), "By agent  -> a 2 | Draw 1 | b 1")
}

func TestWinRate(t *testing.T) {
	assert.Zero(t, WinRate(0, 0, 0))
	assert.InDelta(t, 0.5, WinRate(0, 4, 0), 1e-9)
	assert.InDelta(t, 0.625, WinRate(2, 1, 1), 1e-9)
	assert.InDelta(t, 0.75, WinRate(2, 2, 0), 1e-9)
}

func TestZVal(t *testing.T) {
	assert.InDelta(t, 1.95996, ZVal(95), 1e-4)
	assert.InDelta(t, 2.57583, ZVal(99), 1e-4)
}

func TestSummarize(t *testing.T) {
	records := []GameRecord{
		{Outcome: board.WhiteWin, Plies: 10, WhiteTime: time.Second},
		{Outcome: board.WhiteWin, Plies: 20, Swapped: true},
		{Outcome: board.Draw, Plies: 30, BlackTime: time.Second},
	}
	s := Summarize("a", "b", records)

	assert.Equal(t, 3, s.Games)
	assert.InDelta(t, 20.0, s.MeanPlies, 1e-9)
	assert.InDelta(t, 10.0, s.StdDevPlies, 1e-9)
	assert.InDelta(t, 0.5, s.ScoreA, 1e-9)
	assert.Less(t, s.ScoreLow, 0.5)
	assert.Greater(t, s.ScoreHigh, 0.5)
	assert.Equal(t, time.Second, s.WhiteTime)
	assert.Equal(t, time.Second, s.BlackTime)
	assert.Equal(t, []float64{10, 20, 30}, s.Lengths)
}

func TestScoreIntervalClamped(t *testing.T) {
	records := make([]GameRecord, 10)
	for i := range records {
		records[i] = GameRecord{Outcome: board.WhiteWin, Plies: 9}
	}
	s := Summarize("a", "b", records)

	assert.InDelta(t, 1.0, s.ScoreA, 1e-9)
	assert.InDelta(t, 1.0, s.ScoreLow, 1e-9)
	assert.InDelta(t, 1.0, s.ScoreHigh, 1e-9)
	assert.Zero(t, s.StdDevPlies)

	lo, hi := Summary{}.ScoreInterval(DefaultConfidence)
	assert.Zero(t, lo)
	assert.Equal(t, 1.0, hi)
}

func testMatch() Match {
	return Match{
		White:      agent.MustParseSpec("greedy"),
		Black:      agent.MustParseSpec("random"),
		Games:      4,
		SwapColors: true,
		MaxPlies:   60,
		Seed:       42,
		Parallel:   2,
	}
}

func TestRunnerRun(t *testing.T) {
	var seen []GameRecord
	r := &Runner{OnGame: func(g GameRecord) error {
		seen = append(seen, g)
		return nil
	}}

	m := testMatch()
	s, err := r.Run(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, m.ID(), s.ID)
	assert.Equal(t, 4, s.Games)
	assert.Equal(t, s.Games, s.WhiteWins+s.Draws+s.BlackWins)
	assert.Equal(t, s.WhiteWins+s.BlackWins, s.AWins+s.BWins)
	assert.Equal(t, "greedy", s.AgentA)
	assert.Equal(t, "random", s.AgentB)
	require.Len(t, seen, 4)

	for _, g := range seen {
		assert.Equal(t, g.Index%2 == 1, g.Swapped)
		if g.Swapped {
			assert.Equal(t, "greedy", g.Black)
		} else {
			assert.Equal(t, "greedy", g.White)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, s.Report(&buf))
	assert.Contains(t, buf.String(), "By color -> White")
	assert.Contains(t, buf.String(), "Score greedy")
}

func TestRunnerLogsEachGameOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(zerolog.SyncWriter(&buf)).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	m := testMatch()
	_, err := (&Runner{}).Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, m.Games, strings.Count(buf.String(), `"message":"game finished"`))
}

func TestRunnerDeterministic(t *testing.T) {
	m := testMatch()
	first, err := (&Runner{}).Run(context.Background(), m)
	require.NoError(t, err)

	m.Parallel = 1
	second, err := (&Runner{}).Run(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, first.Tally, second.Tally)
	assert.Equal(t, first.Lengths, second.Lengths)
}

func TestRunnerSeedsDiffer(t *testing.T) {
	m := testMatch()
	assert.NotEqual(t, m.GameSeed(0, "a"), m.GameSeed(1, "a"))
	assert.NotEqual(t, m.GameSeed(0, "a"), m.GameSeed(0, "b"))
}

func TestRunnerStopsOnCallbackError(t *testing.T) {
	boom := errors.New("disk full")
	r := &Runner{OnGame: func(GameRecord) error { return boom }}

	_, err := r.Run(context.Background(), testMatch())
	require.ErrorIs(t, err, boom)
}

func TestRunnerRejectsEmptyMatch(t *testing.T) {
	m := testMatch()
	m.Games = 0
	_, err := (&Runner{}).Run(context.Background(), m)
	require.Error(t, err)
}
