package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/shenxiangzhuang/shapley/game"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Addr        string `env:"SHAPLEY_ADDR" envDefault:":8080"`
	MaxPlayers  int    `env:"SHAPLEY_MAX_PLAYERS" envDefault:"20"`
	ReadLimit   int64  `env:"SHAPLEY_READ_LIMIT" envDefault:"1048576"`
	LogLevel    string `env:"SHAPLEY_LOG_LEVEL" envDefault:"info"`
	MetricsPath string `env:"SHAPLEY_METRICS_PATH" envDefault:"/metrics"`
}

// EnvFileVar names the variable that points Load at a dotenv file other
// than ./.env.
const EnvFileVar = "SHAPLEY_ENV_FILE"

// ErrUnset is returned by GetEnvVariable for a variable that is unset or
// blank.
var ErrUnset = errors.New("environment variable not set")

// Load reads a dotenv file, then parses the environment into a validated
// Config. Variables already set in the environment take precedence over the
// file. The file is $SHAPLEY_ENV_FILE when set, which must then exist;
// otherwise an optional ./.env.
func Load() (Config, error) {
	path, err := GetEnvVariable(EnvFileVar)
	explicit := err == nil
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return Parse()
}

// Parse reads the environment into a validated Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges. MaxPlayers bounds every query's cost at
// 2^MaxPlayers subsets.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("SHAPLEY_ADDR must not be empty")
	}
	if c.MaxPlayers <= 0 || c.MaxPlayers > game.MaxPlayers {
		return fmt.Errorf("SHAPLEY_MAX_PLAYERS must be in [1, %d], got %d", game.MaxPlayers, c.MaxPlayers)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("SHAPLEY_READ_LIMIT must be positive, got %d", c.ReadLimit)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.MetricsPath == "" || c.MetricsPath[0] != '/' {
		return fmt.Errorf("SHAPLEY_METRICS_PATH must start with '/', got %q", c.MetricsPath)
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("SHAPLEY_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// GetEnvVariable returns the trimmed value of name, or ErrUnset when it is
// unset or blank.
func GetEnvVariable(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("variable name is empty")
	}
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", fmt.Errorf("%s: %w", name, ErrUnset)
	}
	return v, nil
}
