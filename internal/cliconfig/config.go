// Package cliconfig loads the dockhand command line tool's configuration file.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the connection settings of the dockhand cli.
type Config struct {
	Host       string
	APIVersion string
	CertPath   string
}

const defaultConfigPath = "~/.config/dockhand/config.toml"

// Load locates and parses the cli config, falling back to defaults when missing.
// A missing file is not an error, the environment and built-in defaults apply then.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Host       string `toml:"host"`
		APIVersion string `toml:"api_version"`
		CertPath   string `toml:"cert_path"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Host:       strings.TrimSpace(raw.Host),
		APIVersion: strings.TrimSpace(raw.APIVersion),
		CertPath:   strings.TrimSpace(raw.CertPath),
	}
	if cfg.CertPath != "" {
		cfg.CertPath = mustExpand(cfg.CertPath)
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
