package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// logConfig is read from the environment.
type logConfig struct {
	Level string `env:"VOXDROP_LOG_LEVEL" envDefault:"info"`
	File  string `env:"VOXDROP_LOG_FILE"`
}

var logSettings logConfig

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "voxdrop").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "voxdrop.log"), nil
}

// setupLog configures the default logger. It writes to stderr unless
// VOXDROP_LOG_FILE is set.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid VOXDROP_LOG_LEVEL: %w", err)
	}
	logSettings = cfg

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if cfg.File == "" {
		return func() error { return nil }, nil
	}
	return logToFile(cfg.File)
}

// logToFile redirects the default logger to path, or to voxdrop.log in the
// user cache directory when path is empty.
func logToFile(path string) (func() error, error) {
	if path == "" {
		p, err := getLogFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return nil, err //nolint:wrapcheck
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	log.SetOutput(f)
	return f.Close, nil
}
