// Package config loads process configuration from PUFFER_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	Validate bool  // PUFFER_VALIDATE
	Seed     int64 // PUFFER_SEED

	LogLevel string // PUFFER_LOG_LEVEL
	LogJSON  bool   // PUFFER_LOG_JSON

	Addr      string // PUFFER_ADDR
	JWTSecret string // PUFFER_JWT_SECRET

	DBDriver string // PUFFER_DB_DRIVER: sqlite or pgx
	DBDSN    string // PUFFER_DB_DSN
	RedisURL string // PUFFER_REDIS_URL

	TeamsFile string // PUFFER_TEAMS_FILE
	Envs      int    // PUFFER_ENVS
	Episodes  int    // PUFFER_EPISODES
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Addr:     ":8080",
		DBDriver: "sqlite",
		Envs:     4,
		Episodes: 8,
	}
}

// Load reads dotenv (if it exists; empty means ".env") into the process
// environment without overriding variables already set, then builds a
// Config from the environment.
func Load(dotenv string) (Config, error) {
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.boolean("PUFFER_VALIDATE", &c.Validate)
	p.int64("PUFFER_SEED", &c.Seed)
	p.str("PUFFER_LOG_LEVEL", &c.LogLevel)
	p.boolean("PUFFER_LOG_JSON", &c.LogJSON)
	p.str("PUFFER_ADDR", &c.Addr)
	p.str("PUFFER_JWT_SECRET", &c.JWTSecret)
	p.str("PUFFER_DB_DRIVER", &c.DBDriver)
	p.str("PUFFER_DB_DSN", &c.DBDSN)
	p.str("PUFFER_REDIS_URL", &c.RedisURL)
	p.str("PUFFER_TEAMS_FILE", &c.TeamsFile)
	p.integer("PUFFER_ENVS", &c.Envs)
	p.integer("PUFFER_EPISODES", &c.Episodes)
	if p.err != nil {
		return Config{}, p.err
	}

	switch c.DBDriver {
	case "sqlite", "pgx":
	default:
		return Config{}, fmt.Errorf("PUFFER_DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if c.Envs < 1 {
		return Config{}, fmt.Errorf("PUFFER_ENVS: need at least 1, got %d", c.Envs)
	}
	return c, nil
}

// parser records the first parse error and skips the rest.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) boolean(key string, dst *bool) {
	if v, ok := p.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = b
	}
}

func (p *parser) int64(key string, dst *int64) {
	if v, ok := p.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = n
	}
}

func (p *parser) integer(key string, dst *int) {
	n := int64(*dst)
	p.int64(key, &n)
	*dst = int(n)
}
