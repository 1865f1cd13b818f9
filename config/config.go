// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: JSON configuration store for texelfocus.
// Usage: config.Get().GetString("highlight", "style", ...). Loaded once from
//        ~/.config/texelfocus/config.json; a missing file is not an error.

package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const configName = "config.json"

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

var (
	mu      sync.RWMutex
	once    sync.Once
	current Config
	loadErr error
)

// Get returns the configuration, loading it on first use. Defaults are
// always applied, so lookups work even when the file is absent or broken.
func Get() Config {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Err returns the most recent load error, nil when the file was absent.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// Set replaces the in-memory configuration. Defaults are re-applied so
// callers cannot strip required keys.
func Set(cfg Config) {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		cfg = make(Config)
	}
	applyDefaults(cfg)
	current = cfg
}

// Reload re-reads the configuration from disk.
func Reload() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loadErr = loadLocked()
	return loadErr
}

// Save persists the current configuration.
func Save() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	path, err := configPath()
	if err != nil {
		return err
	}
	return writeConfig(path, current)
}

func initStore() {
	mu.Lock()
	defer mu.Unlock()
	current = make(Config)
	loadErr = loadLocked()
}

func loadLocked() error {
	path, err := configPath()
	if err != nil {
		log.Printf("Config: Failed to resolve config path: %v", err)
		current = make(Config)
		applyDefaults(current)
		return err
	}

	cfg, exists, readErr := readConfig(path)
	if readErr != nil {
		log.Printf("Config: Failed to read %s: %v", path, readErr)
		cfg = make(Config)
	}
	if cfg == nil {
		cfg = make(Config)
	}
	applyDefaults(cfg)
	current = cfg

	if readErr == nil && exists {
		log.Printf("Config: Loaded %s", path)
	}
	return readErr
}

func configRoot() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "texelfocus"), nil
}

func configPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, configName), nil
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if cfg == nil {
		cfg = make(Config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
