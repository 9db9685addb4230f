package explore

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// Config validation errors
var (
	ErrInvalidCapacity  = errors.New("capacity must be positive")
	ErrInvalidMaxAllocs = errors.New("max_allocs must be positive")
	ErrInvalidLogLevel  = errors.New("log_level must be debug, info, warn, or error")
)

// Config carries the explorer's startup defaults. Every field can be
// overridden through EXPLORER_-prefixed environment variables, optionally
// loaded from a .env file.
type Config struct {
	// Capacity is the default byte capacity offered in the create panel.
	Capacity uint32 `envconfig:"CAPACITY" default:"1024"`
	// MaxAllocs is the default maximum concurrent allocation count.
	MaxAllocs uint32 `envconfig:"MAX_ALLOCS" default:"131072"`

	// CellWidth and CellHeight are the pixel dimensions of one byte cell in
	// the visualization grid. Both must be powers of two.
	CellWidth  int `envconfig:"CELL_WIDTH" default:"16"`
	CellHeight int `envconfig:"CELL_HEIGHT" default:"16"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads a .env file if one is present, then processes
// EXPLORER_-prefixed environment variables over the defaults.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("EXPLORER", &cfg)
	if err != nil {
		return Config{}, cerrors.Wrap(err, "failed to process explorer environment")
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Capacity == 0 {
		return ErrInvalidCapacity
	}
	if c.MaxAllocs == 0 {
		return ErrInvalidMaxAllocs
	}

	err := CheckPow2(uint(c.CellWidth), "cell_width")
	if err != nil {
		return err
	}

	err = CheckPow2(uint(c.CellHeight), "cell_height")
	if err != nil {
		return err
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

// SlogLevel maps the configured log level onto a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
