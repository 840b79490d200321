package storage

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash"
	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/match"
)

// Key prefixes
const (
	prefixGame    = "game/"
	prefixSummary = "summary/"
	prefixStats   = "stats/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// AgentStats aggregates every stored game of one agent configuration.
type AgentStats struct {
	Agent       string        `json:"agent"`
	GamesPlayed int           `json:"games_played"`
	Wins        int           `json:"wins"`
	Losses      int           `json:"losses"`
	Draws       int           `json:"draws"`
	AsWhite     int           `json:"as_white"`
	AsBlack     int           `json:"as_black"`
	TotalPlies  int           `json:"total_plies"`
	ThinkTime   time.Duration `json:"think_time"`
	LastPlayed  time.Time     `json:"last_played"`
}

// GetWinRate returns the score as a percentage (0-100), counting a draw as
// half a win.
func (s *AgentStats) GetWinRate() float64 {
	return match.WinRate(s.Wins, s.Draws, s.Losses) * 100
}

func (s *AgentStats) record(g match.GameRecord, color board.Color) {
	s.GamesPlayed++
	s.TotalPlies += g.Plies
	if g.PlayedAt.After(s.LastPlayed) {
		s.LastPlayed = g.PlayedAt
	}

	if color == board.White {
		s.AsWhite++
		s.ThinkTime += g.WhiteTime
	} else {
		s.AsBlack++
		s.ThinkTime += g.BlackTime
	}

	switch g.Outcome.Winner() {
	case board.NoColor:
		s.Draws++
	case color:
		s.Wins++
	default:
		s.Losses++
	}
}

// Options selects where the database lives.
type Options struct {
	// Dir is the database directory; empty means GetDatabaseDir.
	Dir string
	// InMemory keeps everything in RAM and ignores Dir.
	InMemory bool
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the default data directory.
func NewStorage() (*Storage, error) {
	return Open(Options{})
}

// Open opens the database described by opts.
func Open(opts Options) (*Storage, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = GetDatabaseDir(); err != nil {
				return nil, err
			}
		} else if _, err := ensureDir(dir); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(dir)
	}
	bopts.Logger = nil // Disable logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StatsName returns the name games of an agent are aggregated under: its
// spec without the seed, so every game of a match counts towards one entry.
func StatsName(name string) string {
	spec, err := agent.ParseSpec(name)
	if err != nil {
		return name
	}
	spec.Seed = nil
	return spec.String()
}

func statsKey(name string) []byte {
	return []byte(prefixStats + strconv.FormatUint(xxhash.Sum64String(name), 16))
}

// SaveGame stores g and updates the statistics of both agents in the same
// transaction.
func (s *Storage) SaveGame(g match.GameRecord) error {
	if g.ID == "" {
		return errors.New("game record has no id")
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixGame+g.ID), data); err != nil {
			return err
		}
		for _, side := range []struct {
			name  string
			color board.Color
		}{{g.White, board.White}, {g.Black, board.Black}} {
			name := StatsName(side.name)
			stats, err := loadStats(txn, name)
			if err != nil {
				return err
			}
			stats.record(g, side.color)
			if err := setJSON(txn, statsKey(name), stats); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadGame returns the game stored under id.
func (s *Storage) LoadGame(id string) (match.GameRecord, error) {
	var g match.GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(prefixGame+id), &g)
	})
	return g, err
}

// ListGames returns the games of the match with the given id, in play order.
func (s *Storage) ListGames(matchID string) ([]match.GameRecord, error) {
	var games []match.GameRecord
	err := scan(s.db, prefixGame+matchID+"-", func(val []byte) error {
		var g match.GameRecord
		if err := json.Unmarshal(val, &g); err != nil {
			return err
		}
		games = append(games, g)
		return nil
	})
	sort.Slice(games, func(i, j int) bool { return games[i].Index < games[j].Index })
	return games, err
}

// SaveSummary stores a match summary under its id, replacing an earlier run
// of the same configuration.
func (s *Storage) SaveSummary(sum match.Summary) error {
	if sum.ID == "" {
		return errors.New("summary has no id")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(prefixSummary+sum.ID), sum)
	})
}

// LoadSummary returns the summary stored under id.
func (s *Storage) LoadSummary(id string) (match.Summary, error) {
	var sum match.Summary
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(prefixSummary+id), &sum)
	})
	return sum, err
}

// ListSummaries returns every stored summary, oldest first.
func (s *Storage) ListSummaries() ([]match.Summary, error) {
	var sums []match.Summary
	err := scan(s.db, prefixSummary, func(val []byte) error {
		var sum match.Summary
		if err := json.Unmarshal(val, &sum); err != nil {
			return err
		}
		sums = append(sums, sum)
		return nil
	})
	sort.SliceStable(sums, func(i, j int) bool { return sums[i].FinishedAt.Before(sums[j].FinishedAt) })
	return sums, err
}

// AgentStats returns the aggregate for an agent, or empty stats if it has
// never played.
func (s *Storage) AgentStats(name string) (*AgentStats, error) {
	var stats *AgentStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn, StatsName(name))
		return err
	})
	return stats, err
}

// AllAgentStats returns every agent's aggregate, best score first.
func (s *Storage) AllAgentStats() ([]*AgentStats, error) {
	var all []*AgentStats
	err := scan(s.db, prefixStats, func(val []byte) error {
		stats := &AgentStats{}
		if err := json.Unmarshal(val, stats); err != nil {
			return err
		}
		all = append(all, stats)
		return nil
	})
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].GetWinRate() != all[j].GetWinRate() {
			return all[i].GetWinRate() > all[j].GetWinRate()
		}
		return all[i].Agent < all[j].Agent
	})
	return all, err
}

func loadStats(txn *badger.Txn, name string) (*AgentStats, error) {
	stats := &AgentStats{Agent: name}
	err := getJSON(txn, statsKey(name), stats)
	if errors.Is(err, ErrNotFound) {
		return stats, nil // Use empty stats
	}
	return stats, err
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func scan(db *badger.DB, prefix string, fn func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
