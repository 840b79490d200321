// Package config loads settings for the minichess commands. Values come from
// defaults, an optional config file, MINICHESS_* environment variables and
// command-line flags, later sources overriding earlier ones.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MINICHESS"

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// StorageConfig locates the badger database holding game records.
type StorageConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Dir      string `mapstructure:"dir"`
	InMemory bool   `mapstructure:"in_memory"`
}

// MatchConfig describes a batch of games between two agent specs.
type MatchConfig struct {
	White      string `mapstructure:"white"`
	Black      string `mapstructure:"black"`
	Games      int    `mapstructure:"games"`
	SwapColors bool   `mapstructure:"swap_colors"`
	MaxPlies   int    `mapstructure:"max_plies"`
	Seed       uint64 `mapstructure:"seed"`
	Parallel   int    `mapstructure:"parallel"`
	PrintEvery int    `mapstructure:"print_every"`
	StartFEN   string `mapstructure:"start_fen"`
}

// EngineConfig holds defaults for interactive play.
type EngineConfig struct {
	Agent    string        `mapstructure:"agent"`
	TTSizeMB int           `mapstructure:"tt_mb"`
	MoveTime time.Duration `mapstructure:"move_time"`
}

type Config struct {
	File    string        `mapstructure:"config"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Match   MatchConfig   `mapstructure:"match"`
	Engine  EngineConfig  `mapstructure:"engine"`

	v *viper.Viper
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"config":      "config",
	"log-level":   "log.level",
	"pretty":      "log.pretty",
	"store":       "storage.enabled",
	"db-dir":      "storage.dir",
	"white":       "match.white",
	"black":       "match.black",
	"games":       "match.games",
	"swap-colors": "match.swap_colors",
	"max-plies":   "match.max_plies",
	"seed":        "match.seed",
	"parallel":    "match.parallel",
	"print-every": "match.print_every",
	"fen":         "match.start_fen",
	"agent":       "engine.agent",
	"tt":          "engine.tt_mb",
	"move-time":   "engine.move_time",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.dir", "")
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("match.white", "minimax:depth=3")
	v.SetDefault("match.black", "mcts:sims=500")
	v.SetDefault("match.games", 10)
	v.SetDefault("match.swap_colors", true)
	v.SetDefault("match.max_plies", 200)
	v.SetDefault("match.seed", 1)
	v.SetDefault("match.parallel", 1)
	v.SetDefault("match.print_every", 1)
	v.SetDefault("match.start_fen", "")
	v.SetDefault("engine.agent", "minimax:depth=4")
	v.SetDefault("engine.tt_mb", 4)
	v.SetDefault("engine.move_time", time.Duration(0))
}

// RegisterFlags adds the shared flags to fs. Commands may add their own
// flags to the same set before calling Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML, TOML or JSON config file")
	fs.String("log-level", "info", "log level: debug, info, warn, error, disabled")
	fs.Bool("pretty", true, "human-readable console logs instead of JSON")
	fs.Bool("store", false, "persist games and summaries to the database")
	fs.String("db-dir", "", "database directory (default: user data dir)")
	fs.String("white", "minimax:depth=3", "agent spec for White")
	fs.String("black", "mcts:sims=500", "agent spec for Black")
	fs.Int("games", 10, "number of games to play")
	fs.Bool("swap-colors", true, "swap colours on every odd game")
	fs.Int("max-plies", 200, "adjudicate a draw after this many plies")
	fs.Uint64("seed", 1, "base seed for stochastic agents")
	fs.Int("parallel", 1, "number of games played concurrently")
	fs.Int("print-every", 1, "log progress every N games")
	fs.String("fen", "", "start position instead of the initial one")
	fs.String("agent", "minimax:depth=4", "default opponent spec in the shell")
	fs.Int("tt", 4, "transposition table size in MB")
	fs.Duration("move-time", 0, "default think time for the shell opponent")
}

// Load parses args with fs, binds every registered flag that has a
// configuration key, reads the config file if one was named and decodes the
// result into c.
func (c *Config) Load(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	c.v = v
	return c.Validate()
}

// Validate checks the numeric match settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Match.Games <= 0 {
		errs = append(errs, fmt.Errorf("games must be positive, got %d", c.Match.Games))
	}
	if c.Match.MaxPlies <= 0 {
		errs = append(errs, fmt.Errorf("max-plies must be positive, got %d", c.Match.MaxPlies))
	}
	if c.Match.Parallel <= 0 {
		errs = append(errs, fmt.Errorf("parallel must be positive, got %d", c.Match.Parallel))
	}
	if c.Match.PrintEvery < 0 {
		errs = append(errs, fmt.Errorf("print-every must not be negative, got %d", c.Match.PrintEvery))
	}
	if c.Engine.TTSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("tt must be positive, got %d", c.Engine.TTSizeMB))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// Settings returns every resolved key, for logging at startup.
func (c *Config) Settings() map[string]any {
	if c.v == nil {
		return nil
	}
	return c.v.AllSettings()
}

// SetupLogging configures the global logger from c.Log.
func (c *Config) SetupLogging() {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !c.Log.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}
