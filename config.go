package bedrock

import (
	"time"

	"go.uber.org/zap"
)

type (
	// Config controls the ambient behavior of a Kernel. The zero value is
	// usable; missing fields fall back to the defaults below
	Config struct {
		// Logger receives handler fault diagnostics
		Logger *zap.Logger

		// Clock stamps events whose drafts carry no timestamp
		Clock func() time.Time

		// OnFault is called after a handler failure has been isolated
		OnFault FaultHandler
	}

	// Fault describes a handler failure that the Kernel swallowed
	Fault struct {
		Command Command
		Err     error
	}

	// FaultHandler observes isolated handler failures
	FaultHandler func(Fault)
)

func DefaultConfig() Config {
	return Config{
		Logger: zap.NewNop(),
		Clock:  time.Now,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	return c
}
