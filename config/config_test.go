// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
)

func resetStore() {
	once = sync.Once{}
	current = nil
	loadErr = nil
}

func TestDefaultsAppliedWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	cfg := Get()
	if Err() != nil {
		t.Fatalf("missing file should not be an error: %v", Err())
	}
	if got := cfg.GetString("highlight", "style", ""); got == "" {
		t.Fatal("expected highlight.style default")
	}
	if got := cfg.GetInt("searchbar", "debounce_ms", 0); got != 150 {
		t.Fatalf("searchbar.debounce_ms = %d, want 150", got)
	}
	if got := cfg.GetInt("searchbar", "max_suggestions", 0); got != 8 {
		t.Fatalf("searchbar.max_suggestions = %d, want 8", got)
	}
}

func TestSaveWritesUpdates(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	cfg := Get()
	cfg.Section("highlight")["style"] = "monokai"
	if err := Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var disk Config
	if err := json.Unmarshal(data, &disk); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if got := disk.GetString("highlight", "style", ""); got != "monokai" {
		t.Fatalf("highlight.style on disk = %q, want monokai", got)
	}
}

func TestReloadPicksUpDiskChanges(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	Get()
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	if err := writeConfig(path, Config{
		"searchbar": map[string]interface{}{"debounce_ms": 300},
	}); err != nil {
		t.Fatalf("writeConfig: %v", err)
	}

	if err := Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	cfg := Get()
	if got := cfg.GetInt("searchbar", "debounce_ms", 0); got != 300 {
		t.Fatalf("searchbar.debounce_ms = %d, want 300", got)
	}
	// Defaults backfill sections the file omitted.
	if got := cfg.GetInt("searchbar", "max_suggestions", 0); got != 8 {
		t.Fatalf("searchbar.max_suggestions = %d, want 8", got)
	}
	if got := cfg.GetInt("history", "max_entries", 0); got != 10000 {
		t.Fatalf("history.max_entries = %d, want 10000", got)
	}
}

func TestTypedGetterCoercions(t *testing.T) {
	cfg := Config{
		"sec": map[string]interface{}{
			"float":     float64(42),
			"strInt":    "7",
			"strBool":   "true",
			"numBool":   float64(1),
			"wrongType": []interface{}{},
			"stringVal": "hello",
		},
	}
	if got := cfg.GetInt("sec", "float", 0); got != 42 {
		t.Errorf("GetInt float = %d, want 42", got)
	}
	if got := cfg.GetInt("sec", "strInt", 0); got != 7 {
		t.Errorf("GetInt string = %d, want 7", got)
	}
	if !cfg.GetBool("sec", "strBool", false) {
		t.Error("GetBool string = false, want true")
	}
	if !cfg.GetBool("sec", "numBool", false) {
		t.Error("GetBool number = false, want true")
	}
	if got := cfg.GetInt("sec", "wrongType", 9); got != 9 {
		t.Errorf("GetInt wrong type = %d, want default 9", got)
	}
	if got := cfg.GetString("sec", "stringVal", ""); got != "hello" {
		t.Errorf("GetString = %q, want hello", got)
	}
	if got := cfg.GetString("missing", "key", "fallback"); got != "fallback" {
		t.Errorf("GetString missing section = %q, want fallback", got)
	}
}
