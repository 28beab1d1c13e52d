package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/kode4food/bedrock/journal"
	"github.com/kode4food/bedrock/player"
	"github.com/kode4food/bedrock/room"
)

type (
	// Config is the host configuration, loaded from BEDROCK_ variables
	Config struct {
		LogLevel    string          `env:"LOG_LEVEL"`
		RecentRooms int             `env:"RECENT_ROOMS"`
		Journal     JournalConfig   `envPrefix:"JOURNAL_"`
		Hibernate   HibernateConfig `envPrefix:"HIBERNATE_"`
		Player      PlayerConfig    `envPrefix:"PLAYER_"`
	}

	// JournalConfig enables the Redis journal and sizes its recorder
	JournalConfig struct {
		Enabled      bool          `env:"ENABLED"`
		Addr         string        `env:"ADDR"`
		Password     string        `env:"PASSWORD"`
		DB           int           `env:"DB"`
		Prefix       string        `env:"PREFIX"`
		WorkerCount  int           `env:"WORKER_COUNT"`
		MaxQueueSize int           `env:"MAX_QUEUE_SIZE"`
		SaveTimeout  time.Duration `env:"SAVE_TIMEOUT"`
	}

	// HibernateConfig selects where closed sessions are kept
	HibernateConfig struct {
		Driver string `env:"DRIVER"`
		Path   string `env:"PATH"`
		DSN    string `env:"DSN"`
	}

	PlayerConfig struct {
		JumpHeight   int           `env:"JUMP_HEIGHT"`
		JumpDuration time.Duration `env:"JUMP_DURATION"`
	}
)

const EnvPrefix = "BEDROCK_"

// Hibernate drivers
const (
	DriverNone     = "none"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

const (
	DefaultLogLevel  = "info"
	DefaultRedisAddr = "localhost:6379"
	DefaultBoltPath  = "bedrock.db"
)

var (
	ErrUnknownDriver = errors.New("unknown hibernate driver")
	ErrDSNRequired   = errors.New("postgres hibernate driver requires a dsn")
)

func DefaultConfig() Config {
	rec := journal.DefaultRecorderConfig()
	return Config{
		LogLevel:    DefaultLogLevel,
		RecentRooms: room.DefaultRecentSize,
		Journal: JournalConfig{
			Addr:         DefaultRedisAddr,
			Prefix:       journal.DefaultPrefix,
			WorkerCount:  rec.WorkerCount,
			MaxQueueSize: rec.MaxQueueSize,
			SaveTimeout:  rec.SaveTimeout,
		},
		Hibernate: HibernateConfig{
			Driver: DriverNone,
			Path:   DefaultBoltPath,
		},
		Player: PlayerConfig{
			JumpHeight:   player.DefaultJumpHeight,
			JumpDuration: player.DefaultJumpDuration,
		},
	}
}

// LoadConfig overlays the process environment onto DefaultConfig
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom overlays the provided variables onto DefaultConfig
func LoadConfigFrom(environ map[string]string) (Config, error) {
	return parseConfig(env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
}

func parseConfig(opts env.Options) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot be defaulted
func (c Config) Validate() error {
	switch c.Hibernate.Driver {
	case DriverNone, DriverBolt, "":
		return nil
	case DriverPostgres:
		if c.Hibernate.DSN == "" {
			return ErrDSNRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDriver, c.Hibernate.Driver)
	}
}

func (j JournalConfig) store() journal.StoreConfig {
	return journal.StoreConfig{
		Addr:     j.Addr,
		Password: j.Password,
		DB:       j.DB,
		Prefix:   j.Prefix,
	}
}

func (j JournalConfig) recorder() journal.RecorderConfig {
	return journal.RecorderConfig{
		WorkerCount:  j.WorkerCount,
		MaxQueueSize: j.MaxQueueSize,
		SaveTimeout:  j.SaveTimeout,
	}
}
