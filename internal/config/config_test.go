package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	cfg := &Config{}
	return cfg, cfg.Load(fs, args)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "minimax:depth=3", cfg.Match.White)
	assert.Equal(t, "mcts:sims=500", cfg.Match.Black)
	assert.Equal(t, 10, cfg.Match.Games)
	assert.True(t, cfg.Match.SwapColors)
	assert.Equal(t, 200, cfg.Match.MaxPlies)
	assert.Equal(t, 4, cfg.Engine.TTSizeMB)
	assert.False(t, cfg.Storage.Enabled)
	assert.NotEmpty(t, cfg.Settings())
}

func TestLoadFlags(t *testing.T) {
	cfg, err := load(t,
		"--white", "random:seed=3",
		"--games", "4",
		"--swap-colors=false",
		"--seed", "99",
		"--move-time", "250ms",
		"--store",
	)
	require.NoError(t, err)

	assert.Equal(t, "random:seed=3", cfg.Match.White)
	assert.Equal(t, 4, cfg.Match.Games)
	assert.False(t, cfg.Match.SwapColors)
	assert.Equal(t, uint64(99), cfg.Match.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.MoveTime)
	assert.True(t, cfg.Storage.Enabled)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("MINICHESS_MATCH_GAMES", "7")
	t.Setenv("MINICHESS_LOG_LEVEL", "debug")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Match.Games)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Flags win over the environment.
	cfg, err = load(t, "--games", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Match.Games)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minichess.yaml")
	content := `
match:
  white: greedy
  black: "mcts:sims=50"
  max_plies: 80
storage:
  dir: /tmp/minichess-db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := load(t, "--config", path, "--black", "random")
	require.NoError(t, err)

	assert.Equal(t, "greedy", cfg.Match.White)
	assert.Equal(t, "random", cfg.Match.Black)
	assert.Equal(t, 80, cfg.Match.MaxPlies)
	assert.Equal(t, "/tmp/minichess-db", cfg.Storage.Dir)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero games", []string{"--games", "0"}, "games"},
		{"zero parallel", []string{"--parallel", "0"}, "parallel"},
		{"bad level", []string{"--log-level", "loud"}, "log level"},
		{"missing file", []string{"--config", "/does/not/exist.yaml"}, "reading config"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadMatrix(t *testing.T) {
	doc := `
defaults:
  games: 12
  seed: 1000
experiments:
  - id: BASE001
    type: baseline
    description: Minimax(3) vs Random
    white: "minimax:depth=3"
    black: random
  - id: H2H002
    type: head_to_head
    white: "mcts:sims=100"
    black: "minimax:depth=2"
    games: 4
    swap_colors: false
    seed: 5
`
	m, err := ReadMatrix(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, m.Experiments, 2)

	base := m.Experiments[0]
	assert.Equal(t, 12, base.Games)
	assert.Equal(t, 200, base.MaxPlies)
	assert.Equal(t, uint64(1000), base.Seed)
	assert.True(t, base.Swap())

	h2h := m.Experiments[1]
	assert.Equal(t, 4, h2h.Games)
	assert.Equal(t, uint64(5), h2h.Seed)
	assert.False(t, h2h.Swap())

	assert.Len(t, m.Filter(), 2)
	assert.Equal(t, []Experiment{h2h}, m.Filter(HeadToHead))
	assert.Empty(t, m.Filter(Degradation))
}

func TestReadMatrixErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "experiments:\n  - id: X\n    colour: white\n", "colour"},
		{"missing id", "experiments:\n  - type: baseline\n    white: greedy\n    black: random\n", "missing id"},
		{"duplicate id", "experiments:\n  - {id: A, type: baseline, white: greedy, black: random}\n  - {id: A, type: baseline, white: greedy, black: random}\n", "duplicate id"},
		{"bad type", "experiments:\n  - {id: A, type: tournament, white: greedy, black: random}\n", "unknown type"},
		{"missing agent", "experiments:\n  - {id: A, type: baseline, white: greedy}\n", "required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMatrix(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadMatrixEmpty(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Experiments)
}
