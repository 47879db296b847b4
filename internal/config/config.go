// Package config provides Viper-based configuration loading for the game
// room server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// StaticDir, when non-empty, is served at / for the frontend assets.
	StaticDir string `mapstructure:"static_dir"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds the game variant defaults and room identity settings.
type GameConfig struct {
	// Rows and Cols are the default connector board size.
	Rows int `mapstructure:"rows"`
	Cols int `mapstructure:"cols"`
	// RunLength is the default winning run length.
	RunLength int `mapstructure:"run_length"`
	// MissBudget is the default word-guess miss budget.
	MissBudget int `mapstructure:"miss_budget"`
	// RoomIDLength is the length of generated room join codes.
	RoomIDLength int `mapstructure:"room_id_length"`
	// Words overrides the built-in secret word list when non-empty.
	Words []string `mapstructure:"words"`
}

// TransportConfig holds websocket connection settings.
type TransportConfig struct {
	// MoveRate is the sustained per-connection message rate (per second).
	MoveRate float64 `mapstructure:"move_rate"`
	// MoveBurst is the per-connection rate limiter burst.
	MoveBurst int `mapstructure:"move_burst"`
	// MaxMessageBytes caps the size of a single inbound message.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes"`
	// SendBuffer is the per-connection outbound queue length. Events are
	// dropped, not blocked on, when the queue is full.
	SendBuffer int `mapstructure:"send_buffer"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Game      GameConfig      `mapstructure:"game"`
	Transport TransportConfig `mapstructure:"transport"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTransport(c.Transport); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.Rows < 1 {
		errs = append(errs, fmt.Sprintf("game.rows must be >= 1, got %d", g.Rows))
	}
	if g.Cols < 1 {
		errs = append(errs, fmt.Sprintf("game.cols must be >= 1, got %d", g.Cols))
	}
	if g.RunLength < 2 {
		errs = append(errs, fmt.Sprintf("game.run_length must be >= 2, got %d", g.RunLength))
	}
	if g.RunLength > g.Rows && g.RunLength > g.Cols {
		errs = append(errs, fmt.Sprintf("game.run_length %d cannot fit a %dx%d board", g.RunLength, g.Rows, g.Cols))
	}
	if g.MissBudget < 1 {
		errs = append(errs, fmt.Sprintf("game.miss_budget must be >= 1, got %d", g.MissBudget))
	}
	if g.RoomIDLength < 4 || g.RoomIDLength > 32 {
		errs = append(errs, fmt.Sprintf("game.room_id_length must be 4-32, got %d", g.RoomIDLength))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	var errs []string
	if t.MoveRate <= 0 {
		errs = append(errs, fmt.Sprintf("transport.move_rate must be > 0, got %g", t.MoveRate))
	}
	if t.MoveBurst < 1 {
		errs = append(errs, fmt.Sprintf("transport.move_burst must be >= 1, got %d", t.MoveBurst))
	}
	if t.MaxMessageBytes < 64 {
		errs = append(errs, fmt.Sprintf("transport.max_message_bytes must be >= 64, got %d", t.MaxMessageBytes))
	}
	if t.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("transport.send_buffer must be >= 1, got %d", t.SendBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with PARLOR_ prefix
	v.SetEnvPrefix("PARLOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.static_dir", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("game.rows", 6)
	v.SetDefault("game.cols", 7)
	v.SetDefault("game.run_length", 4)
	v.SetDefault("game.miss_budget", 6)
	v.SetDefault("game.room_id_length", 6)

	v.SetDefault("transport.move_rate", 5.0)
	v.SetDefault("transport.move_burst", 10)
	v.SetDefault("transport.max_message_bytes", 1024)
	v.SetDefault("transport.send_buffer", 64)
}
