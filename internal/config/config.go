// Package config loads runtime settings from AGENTMATRIX_* environment
// variables, with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// EnvPrefix prefixes every variable read by Load.
	EnvPrefix = "AGENTMATRIX_"

	// DefaultHTTPPort is the default address for the HTTP API
	DefaultHTTPPort = ":8080"

	// DefaultMCPPort is the default address for the MCP server
	DefaultMCPPort = ":8081"
)

// Config holds all runtime settings.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	MCPAddr  string `env:"MCP_ADDR" envDefault:":8081"`
	// MCPEnabled starts the MCP server next to the HTTP API.
	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Store selects the persistence backend: file, memory, redis, postgres or sqlite.
	Store       string `env:"STORE" envDefault:"file"`
	FilePath    string `env:"FILE_PATH" envDefault:"./data/registry.json"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/agentmatrix.db"`
	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"agentmatrix:"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	LLMBaseURL        string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com"`
	LLMAPIKey         string        `env:"LLM_API_KEY"`
	LLMChatModel      string        `env:"LLM_CHAT_MODEL" envDefault:"gpt-4"`
	LLMEmbeddingModel string        `env:"LLM_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	SimulatorEnabled  bool          `env:"SIMULATOR_ENABLED" envDefault:"true"`
	SimulatorInterval time.Duration `env:"SIMULATOR_INTERVAL" envDefault:"5s"`

	ImportTimeout time.Duration `env:"IMPORT_TIMEOUT" envDefault:"30s"`

	// CORSOrigins lists allowed browser origins; empty allows all.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads a .env file if present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c *Config) Validate() error {
	switch c.Store {
	case "file", "memory", "sqlite":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("%sREDIS_URL is required for the redis store", EnvPrefix)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("%sPOSTGRES_DSN is required for the postgres store", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
