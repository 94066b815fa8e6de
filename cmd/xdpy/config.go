package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional xdpy config file, supplying defaults the
// flags and environment can override.
type fileConfig struct {
	Display  string `toml:"display"`
	AuthFile string `toml:"auth_file"`
	LogLevel string `toml:"log_level"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveDisplay picks the display specifier: flag, then config file,
// then the DISPLAY environment variable.
func resolveDisplay(flag string, cfg fileConfig) (string, error) {
	switch {
	case flag != "":
		return flag, nil
	case cfg.Display != "":
		return cfg.Display, nil
	}
	if d := os.Getenv("DISPLAY"); d != "" {
		return d, nil
	}
	return "", fmt.Errorf("no display: pass --display or set DISPLAY")
}

// resolveAuthFile picks the Xauthority path: flag, config file,
// XAUTHORITY, then ~/.Xauthority. An empty result means "connect without
// credentials".
func resolveAuthFile(flag string, cfg fileConfig) string {
	switch {
	case flag != "":
		return flag
	case cfg.AuthFile != "":
		return cfg.AuthFile
	}
	if p := os.Getenv("XAUTHORITY"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".Xauthority")
}
