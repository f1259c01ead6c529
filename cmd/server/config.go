package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server process configuration. Environment variables
// provide defaults; flags override them.
type Config struct {
	ConfigDir     string        `env:"PROGRESSION_CONFIG_DIR" envDefault:"config"`
	Profile       string        `env:"PROGRESSION_PROFILE"`
	GRPCAddr      string        `env:"PROGRESSION_GRPC_ADDR" envDefault:":9090"`
	HTTPAddr      string        `env:"PROGRESSION_HTTP_ADDR" envDefault:":8080"`
	WatchInterval time.Duration `env:"PROGRESSION_WATCH_INTERVAL" envDefault:"5s"`
	LogLevel      slog.Level    `env:"PROGRESSION_LOG_LEVEL" envDefault:"INFO"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.ConfigDir, "config", cfg.ConfigDir, "directory holding balance/default.yaml")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "balance profile merged over the defaults")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address; empty disables it")
	fs.DurationVar(&cfg.WatchInterval, "watch", cfg.WatchInterval, "config poll interval; 0 disables reloads")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.GRPCAddr == "" {
		return Config{}, errors.New("grpc-addr is required")
	}
	return cfg, nil
}
