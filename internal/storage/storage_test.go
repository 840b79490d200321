package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/match"
)

func openMemory(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func game(id string, index int, white, black string, outcome board.Outcome) match.GameRecord {
	return match.GameRecord{
		ID:        id,
		Index:     index,
		White:     white,
		Black:     black,
		Moves:     []string{"b1a3", "b5c3"},
		Outcome:   outcome,
		Plies:     2,
		WhiteTime: time.Second,
		BlackTime: 2 * time.Second,
		PlayedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSaveAndLoadGame(t *testing.T) {
	s := openMemory(t)

	g := game("abc-0000", 0, "greedy", "random:seed=5", board.WhiteWin)
	g.Status = board.Checkmate
	require.NoError(t, s.SaveGame(g))

	got, err := s.LoadGame("abc-0000")
	require.NoError(t, err)
	assert.Equal(t, g.Moves, got.Moves)
	assert.Equal(t, board.WhiteWin, got.Outcome)
	assert.Equal(t, board.Checkmate, got.Status)
	assert.True(t, g.PlayedAt.Equal(got.PlayedAt))

	_, err = s.LoadGame("missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, s.SaveGame(match.GameRecord{}))
}

func TestListGamesInOrder(t *testing.T) {
	s := openMemory(t)

	for _, i := range []int{2, 0, 1} {
		id := "m1-000" + string(rune('0'+i))
		require.NoError(t, s.SaveGame(game(id, i, "greedy", "random", board.Draw)))
	}
	require.NoError(t, s.SaveGame(game("m2-0000", 0, "greedy", "random", board.Draw)))

	games, err := s.ListGames("m1")
	require.NoError(t, err)
	require.Len(t, games, 3)
	for i, g := range games {
		assert.Equal(t, i, g.Index)
	}
}

func TestAgentStatsAggregate(t *testing.T) {
	s := openMemory(t)

	require.NoError(t, s.SaveGame(game("m-0000", 0, "greedy", "random:seed=1", board.WhiteWin)))
	require.NoError(t, s.SaveGame(game("m-0001", 1, "random:seed=2", "greedy", board.WhiteWin)))
	require.NoError(t, s.SaveGame(game("m-0002", 2, "greedy", "random:seed=3", board.Draw)))

	greedy, err := s.AgentStats("greedy")
	require.NoError(t, err)
	assert.Equal(t, 3, greedy.GamesPlayed)
	assert.Equal(t, 1, greedy.Wins)
	assert.Equal(t, 1, greedy.Losses)
	assert.Equal(t, 1, greedy.Draws)
	assert.Equal(t, 2, greedy.AsWhite)
	assert.Equal(t, 1, greedy.AsBlack)
	assert.Equal(t, 6, greedy.TotalPlies)
	assert.Equal(t, 4*time.Second, greedy.ThinkTime)
	assert.InDelta(t, 50.0, greedy.GetWinRate(), 1e-9)

	// Seeds are dropped so every random game lands in one entry.
	random, err := s.AgentStats("random:seed=99")
	require.NoError(t, err)
	assert.Equal(t, "random", random.Agent)
	assert.Equal(t, 3, random.GamesPlayed)
	assert.Equal(t, 1, random.Wins)

	unknown, err := s.AgentStats("minimax:depth=9")
	require.NoError(t, err)
	assert.Zero(t, unknown.GamesPlayed)
	assert.Zero(t, unknown.GetWinRate())

	all, err := s.AllAgentStats()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "greedy", all[0].Agent)
	assert.Equal(t, "random", all[1].Agent)
}

func TestSelfPlayStats(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, s.SaveGame(game("self-0000", 0, "greedy", "greedy", board.BlackWin)))

	stats, err := s.AgentStats("greedy")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.GamesPlayed)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
}

func TestSummaries(t *testing.T) {
	s := openMemory(t)

	first := match.Summary{ID: "one", Tally: match.Tally{AgentA: "greedy", AgentB: "random", Games: 4, WhiteWins: 3, Draws: 1}}
	first.FinishedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := match.Summary{ID: "two", Tally: match.Tally{AgentA: "mcts", AgentB: "minimax", Games: 2}}
	second.FinishedAt = first.FinishedAt.Add(-time.Hour)

	require.NoError(t, s.SaveSummary(first))
	require.NoError(t, s.SaveSummary(second))
	require.Error(t, s.SaveSummary(match.Summary{}))

	got, err := s.LoadSummary("one")
	require.NoError(t, err)
	assert.Equal(t, first.Tally, got.Tally)

	_, err = s.LoadSummary("three")
	require.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListSummaries()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "two", all[0].ID)
	assert.Equal(t, "one", all[1].ID)
}

func TestOnDiskReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.SaveGame(game("disk-0000", 0, "greedy", "random", board.Draw)))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	g, err := s.LoadGame("disk-0000")
	require.NoError(t, err)
	assert.Equal(t, board.Draw, g.Outcome)
}

func TestStatsName(t *testing.T) {
	assert.Equal(t, "mcts:sims=50", StatsName("mcts:sims=50,seed=7"))
	assert.Equal(t, "greedy", StatsName("greedy"))
	assert.Equal(t, "not a spec!", StatsName("not a spec!"))
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dataDir)

	_, err = os.Stat(dataDir)
	require.NoError(t, err, "data directory was not created")

	dbDir, err := GetDatabaseDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "db"), dbDir)

	resultsDir, err := GetResultsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "results"), resultsDir)
}
