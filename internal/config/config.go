// Package config loads the actdb CLI configuration from a CUE file.
//
// A file may set any subset of the fields; the rest take their defaults:
//
//	db:        "actdb.db"
//	verify:    false
//	log_level: "info"    // "debug" | "info" | "warn" | "error"
//
// Command-line flags override file values.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema constrains the file and supplies defaults.
const schema = `
db:        string | *"actdb.db"
verify:    bool | *false
log_level: "debug" | "info" | "warn" | "error" | *"info"
`

// Config is the decoded configuration.
type Config struct {
	DB       string `json:"db"`
	Verify   bool   `json:"verify"`
	LogLevel string `json:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{DB: "actdb.db", Verify: false, LogLevel: "info"}
}

// Load reads and validates the CUE file at path.
// An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse validates CUE source against the schema and decodes it.
// filename is used in error positions only.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	base := ctx.CompileString(schema, cue.Filename("schema.cue"))
	if err := base.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", filename, err)
	}

	v := base.Unify(user)
	if err := v.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", filename, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", filename, err)
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level. Unknown values map to Info.
func (c Config) Level() slog.Level {
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
