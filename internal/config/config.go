// Package config implements the on-disk configuration surface, the
// direct generalization of the teacher's config/config.go to this
// domain's settings: default parallelism, default benchmark, and a
// cache-root override.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Config holds user-configurable defaults for the runner and scorer
// tools.
type Config struct {
	DefaultParallelism int    `json:"default_parallelism"`
	DefaultBenchmark   string `json:"default_benchmark"`
	CacheRoot          string `json:"cache_root"`
	PrintCommands      bool   `json:"print_commands"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		DefaultParallelism: 4,
		DefaultBenchmark:   "",
		CacheRoot:          "./.runner-cache",
		PrintCommands:      false,
	}
}

// Path returns ~/.config/trexrunner/config.json (or XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "" // refuse to fall back to /tmp (security risk)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "trexrunner", "config.json")
}

// Load loads config from disk; returns defaults on error.
func Load() Config {
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("trexrunner: warning: config parse error: %v", err)
	}
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
