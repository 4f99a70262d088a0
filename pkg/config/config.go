package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load()

	return env.Parse(cfg)
}

// Config holds the configuration for the replayer.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Replay    ReplayConfig    `envPrefix:"REPLAY_"`
	Publisher PublisherConfig `envPrefix:"PUBLISHER_"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Name     string `env:"NAME" envDefault:"bookreplay"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// ReplayConfig holds the session parameters of the reconstruction engine.
type ReplayConfig struct {
	// OpeningTime is the continuous-session cutoff in HHMMSSmmm session time.
	OpeningTime int64 `env:"OPENING_TIME" envDefault:"93000000"`
	// ImmediateWindow is the transact-time distance, in milliseconds, within
	// which an order and a fill referencing it are treated as one execution.
	ImmediateWindow int64 `env:"IMMEDIATE_WINDOW" envDefault:"1000"`
	// Depth is the number of aggregated price levels emitted per side and end.
	Depth int `env:"DEPTH" envDefault:"5"`

	OrderFile string `env:"ORDER_FILE" envDefault:"order_new.csv"`
	TradeFile string `env:"TRADE_FILE" envDefault:"trade_new.csv"`
	BookFile  string `env:"BOOK_FILE" envDefault:"book_new.csv"`
	// SearchDepth is how many parent directories are walked when locating inputs.
	SearchDepth int `env:"SEARCH_DEPTH" envDefault:"4"`
}

// PublisherConfig holds the optional snapshot feed publisher settings.
type PublisherConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKER"`
	Topic   string   `env:"TOPIC" envDefault:"book-snapshots"`
}
