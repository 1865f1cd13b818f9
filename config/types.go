// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/types.go
// Summary: Typed access helpers for config store data.

package config

import "strconv"

// Section returns the named section or nil if missing. An empty name means
// the top level.
func (c Config) Section(name string) Section {
	if c == nil {
		return nil
	}
	if name == "" {
		return Section(c)
	}
	if raw, ok := c[name]; ok {
		switch v := raw.(type) {
		case Section:
			return v
		case map[string]interface{}:
			return Section(v)
		}
	}
	return nil
}

// RegisterDefaults fills a section's missing keys without overwriting
// existing ones.
func (c Config) RegisterDefaults(name string, defaults Section) {
	if c == nil || defaults == nil {
		return
	}
	section := c.Section(name)
	if section == nil {
		section = make(Section)
		c[name] = section
	}
	for key, value := range defaults {
		if _, ok := section[key]; !ok {
			section[key] = value
		}
	}
}

// GetString retrieves a string value from the config.
func (c Config) GetString(section, key, defaultValue string) string {
	s := c.Section(section)
	if s == nil {
		return defaultValue
	}
	if val, ok := s[key].(string); ok {
		return val
	}
	return defaultValue
}

// GetInt retrieves an integer value. JSON numbers arrive as float64; string
// values are parsed for hand-edited files.
func (c Config) GetInt(section, key string, defaultValue int) int {
	s := c.Section(section)
	if s == nil {
		return defaultValue
	}
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from the config.
func (c Config) GetBool(section, key string, defaultValue bool) bool {
	s := c.Section(section)
	if s == nil {
		return defaultValue
	}
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	}
	return defaultValue
}
