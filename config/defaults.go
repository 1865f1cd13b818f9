// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Built-in defaults for the texelfocus configuration.

package config

import "path/filepath"

func applyDefaults(c Config) {
	c.RegisterDefaults("highlight", Section{
		"style": "catppuccin-mocha",
	})
	c.RegisterDefaults("history", Section{
		"path":        "",
		"max_entries": 10000,
	})
	c.RegisterDefaults("searchbar", Section{
		"debounce_ms":     150,
		"max_suggestions": 8,
	})
}

// DefaultHistoryPath is where the history database lives when history.path
// is left empty.
func DefaultHistoryPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "history.db"), nil
}
