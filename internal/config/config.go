package config

import (
	"time"

	"github.com/creasty/defaults"
)

// Configuration carries everything the run command needs to assemble the
// service. Values come from defaults first, then environment variables and
// flags on top.
type Configuration struct {
	Server   Server
	Database Database
	Render   Render
}

// Server configures the HTTP listener.
type Server struct {
	HTTPPort      int `default:"8080"`
	StaticsFolder string
	ServerMode    string `default:"dev"`
}

// Database locates the DuckDB file backing the metadata store. The dataset
// tables live in the same database.
type Database struct {
	Path string `default:"dashlite.db"`
}

// Render bounds dashboard execution.
type Render struct {
	NumWorkers      int           `default:"4"`
	MaxRowsPerChart int           `default:"10000"`
	DefaultTimeout  time.Duration `default:"30s"`
}

// Option mutates a Configuration during construction.
type Option func(*Configuration)

func WithDatabasePath(path string) Option {
	return func(c *Configuration) {
		c.Database.Path = path
	}
}

func WithServerMode(mode string) Option {
	return func(c *Configuration) {
		c.Server.ServerMode = mode
	}
}

func WithHTTPPort(port int) Option {
	return func(c *Configuration) {
		c.Server.HTTPPort = port
	}
}

// NewConfigurationWithOptionsAndDefaults builds a Configuration with every
// default applied, then the given options on top.
func NewConfigurationWithOptionsAndDefaults(opts ...Option) *Configuration {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
