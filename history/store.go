// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: history/store.go
// Summary: SQLite FTS5 store for search-bar history.
//
// Provides suggestion lookups over past queries and commands with:
//   - Async batch appends, sync use-count bumps on activation
//   - Trigram substring matching (LIKE fallback for short needles)
//   - Bucketed frecency ranking (recent use outweighs raw counts)

package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry kinds.
const (
	KindQuery   = "query"
	KindCommand = "command"
)

// Entry is one remembered input.
type Entry struct {
	ID       int64
	Text     string
	Kind     string
	Uses     int64
	LastUsed time.Time
	Created  time.Time
}

// Stats summarizes the store contents.
type Stats struct {
	Entries  int64
	LastUsed time.Time
}

// History stores past inputs and serves ranked suggestions.
type History interface {
	// Append records text. Repeated appends of the same text bump its use
	// count. Appends are queued for batch writing.
	Append(text, kind string) error

	// Touch synchronously bumps the use count of an existing entry.
	// Called when a suggestion is activated, so ranking reacts at once.
	Touch(text string) error

	// Search returns entries containing needle, best-ranked first.
	// An empty needle returns the most recently used entries.
	Search(needle string, limit int) ([]Entry, error)

	// Recent returns the most recently used entries.
	Recent(limit int) ([]Entry, error)

	// Stats reports entry count and newest use time.
	Stats() (Stats, error)

	// Flush blocks until all queued appends are written.
	Flush() error

	// Close flushes pending writes and closes the store.
	Close() error
}

// Config holds configuration for the SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BatchSize is the number of appends to accumulate before flushing.
	// Default: 64
	BatchSize int

	// BatchTimeout is how long to wait before flushing a partial batch.
	// Default: 2s
	BatchTimeout time.Duration

	// ChannelBuffer is the size of the async append channel.
	// Default: 256
	ChannelBuffer int

	// MaxEntries caps the table size. The oldest entries by last_used are
	// pruned at open and after each batch flush. Zero means unbounded.
	MaxEntries int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:        dbPath,
		BatchSize:     64,
		BatchTimeout:  2 * time.Second,
		ChannelBuffer: 256,
		MaxEntries:    10000,
	}
}

type appendEntry struct {
	text string
	kind string
	when time.Time
}

// SQLiteHistory implements History using SQLite FTS5.
type SQLiteHistory struct {
	config Config
	db     *sql.DB

	// Async batching
	batchChan chan appendEntry
	stopCh    chan struct{}
	doneCh    chan struct{}
	flushCh   chan chan struct{}

	mu sync.RWMutex
}

// Increment when schema changes require rebuilding the FTS index.
const historySchemaVersion = 1

const historySchema = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- Main entry table
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL DEFAULT 'query',
    uses INTEGER NOT NULL DEFAULT 1,
    last_used INTEGER NOT NULL,    -- UnixNano
    created INTEGER NOT NULL       -- UnixNano
);

-- Index for recency ordering
CREATE INDEX IF NOT EXISTS idx_entries_last_used ON entries(last_used);
`

// FTS schema - separate so it can be rebuilt on version changes
const historyFTSSchema = `
-- FTS5 virtual table with trigram tokenizer for substring matching
CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
    text,
    content='entries',
    content_rowid='id',
    tokenize='trigram'
);

-- Triggers to keep FTS5 in sync
CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
    INSERT INTO entries_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TRIGGER IF NOT EXISTS entries_au AFTER UPDATE OF text ON entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, text) VALUES ('delete', old.id, old.text);
    INSERT INTO entries_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, text) VALUES ('delete', old.id, old.text);
END;
`

// Open creates a SQLite-backed history store with default configuration.
func Open(dbPath string) (*SQLiteHistory, error) {
	return OpenWithConfig(DefaultConfig(dbPath))
}

// OpenWithConfig creates a history store with custom configuration.
func OpenWithConfig(config Config) (*SQLiteHistory, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 64
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 2 * time.Second
	}
	if config.ChannelBuffer <= 0 {
		config.ChannelBuffer = 256
	}

	dir := filepath.Dir(config.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Pragmas for performance and concurrency
	dsn := config.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=cache_size(-8000)" + // 8MB cache
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	needsReindex, err := checkAndMigrateSchema(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	if _, err := db.Exec(historyFTSSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create FTS schema: %w", err)
	}

	if needsReindex {
		log.Printf("[HISTORY] Schema version changed, rebuilding FTS index...")
		if err := rebuildFTSIndex(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to rebuild FTS index: %w", err)
		}
		log.Printf("[HISTORY] FTS index rebuild complete")
	}

	h := &SQLiteHistory{
		config:    config,
		db:        db,
		batchChan: make(chan appendEntry, config.ChannelBuffer),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		flushCh:   make(chan chan struct{}),
	}

	// Enforce the cap up front; a lowered MaxEntries trims an old database.
	h.pruneLocked()

	go h.batchWriter()

	return h, nil
}

// checkAndMigrateSchema compares the stored schema version with the current
// one. Returns true when the FTS index must be rebuilt.
func checkAndMigrateSchema(db *sql.DB) (bool, error) {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// No row or no table yet, treat as version 0.
		currentVersion = 0
	}

	if currentVersion == historySchemaVersion {
		return false, nil
	}

	log.Printf("[HISTORY] Migrating schema from version %d to %d", currentVersion, historySchemaVersion)

	migrations := []string{
		"DROP TRIGGER IF EXISTS entries_ai",
		"DROP TRIGGER IF EXISTS entries_au",
		"DROP TRIGGER IF EXISTS entries_ad",
		"DROP TABLE IF EXISTS entries_fts",
	}
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return false, fmt.Errorf("migration failed on '%s': %w", stmt, err)
		}
	}

	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", historySchemaVersion); err != nil {
		return false, fmt.Errorf("failed to update schema version: %w", err)
	}

	return true, nil
}

// rebuildFTSIndex repopulates the FTS table from the entries table.
func rebuildFTSIndex(db *sql.DB) error {
	var count int64
	db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	log.Printf("[HISTORY] Rebuilding index for %d entries...", count)

	if _, err := db.Exec("INSERT INTO entries_fts(rowid, text) SELECT id, text FROM entries"); err != nil {
		return fmt.Errorf("failed to populate FTS index: %w", err)
	}
	return nil
}

// batchWriter runs in a background goroutine, batching appends and flushing
// periodically.
func (h *SQLiteHistory) batchWriter() {
	defer close(h.doneCh)

	batch := make([]appendEntry, 0, h.config.BatchSize)
	timer := time.NewTimer(h.config.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		h.flushBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-h.batchChan:
			batch = append(batch, entry)
			if len(batch) >= h.config.BatchSize {
				flush()
				timer.Reset(h.config.BatchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(h.config.BatchTimeout)

		case done := <-h.flushCh:
			// Manual flush request - drain channel first
			draining := true
			for draining {
				select {
				case entry := <-h.batchChan:
					batch = append(batch, entry)
				default:
					draining = false
				}
			}
			flush()
			close(done)

		case <-h.stopCh:
			// Drain channel and flush before exit
			for {
				select {
				case entry := <-h.batchChan:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

// flushBatch writes a batch in a single transaction. Duplicate texts fold
// into a use-count bump.
func (h *SQLiteHistory) flushBatch(batch []appendEntry) {
	if len(batch) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.db.Begin()
	if err != nil {
		log.Printf("[HISTORY] Failed to begin transaction: %v", err)
		return
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (text, kind, uses, last_used, created)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(text) DO UPDATE SET
			uses = uses + 1,
			last_used = excluded.last_used
	`)
	if err != nil {
		log.Printf("[HISTORY] Failed to prepare statement: %v", err)
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		nano := e.when.UnixNano()
		if _, err := stmt.Exec(e.text, e.kind, nano, nano); err != nil {
			log.Printf("[HISTORY] Failed to append %q: %v", e.text, err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[HISTORY] Failed to commit batch: %v", err)
		return
	}

	h.pruneLocked()
}

// pruneLocked drops the oldest entries by last_used once the table exceeds
// the configured cap. Callers hold the write lock (or have exclusive access,
// as during Open). The FTS delete trigger keeps the index in step.
func (h *SQLiteHistory) pruneLocked() {
	if h.config.MaxEntries <= 0 {
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM entries WHERE id IN (
			SELECT id FROM entries ORDER BY last_used DESC LIMIT -1 OFFSET ?
		)
	`, h.config.MaxEntries)
	if err != nil {
		log.Printf("[HISTORY] Prune failed: %v", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("[HISTORY] Pruned %d entries beyond the %d cap", n, h.config.MaxEntries)
	}
}

// Append queues text for batch writing.
func (h *SQLiteHistory) Append(text, kind string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if kind == "" {
		kind = KindQuery
	}

	entry := appendEntry{text: text, kind: kind, when: time.Now()}
	select {
	case h.batchChan <- entry:
		return nil
	default:
		log.Printf("[HISTORY] Append queue full, dropping %q", text)
		return nil
	}
}

// Touch synchronously bumps the use count of an existing entry.
func (h *SQLiteHistory) Touch(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(
		"UPDATE entries SET uses = uses + 1, last_used = ? WHERE text = ?",
		time.Now().UnixNano(), text,
	)
	return err
}

// frecencyOrder ranks hits by use count weighted into recency buckets, so
// an entry used twice this hour outranks one used twenty times last month.
const frecencyOrder = `
ORDER BY e.uses * (CASE
    WHEN e.last_used >= ?1 THEN 8
    WHEN e.last_used >= ?2 THEN 4
    WHEN e.last_used >= ?3 THEN 2
    ELSE 1
END) DESC, e.last_used DESC
`

func frecencyCutoffs(now time.Time) (hour, day, week int64) {
	return now.Add(-time.Hour).UnixNano(),
		now.Add(-24 * time.Hour).UnixNano(),
		now.Add(-7 * 24 * time.Hour).UnixNano()
}

// Search returns entries containing needle, best-ranked first.
// Trigram tokenization needs at least 3 characters; shorter needles fall
// back to LIKE, which works for any length.
func (h *SQLiteHistory) Search(needle string, limit int) ([]Entry, error) {
	if needle == "" {
		return h.Recent(limit)
	}
	if limit <= 0 {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	hour, day, week := frecencyCutoffs(time.Now())

	var rows *sql.Rows
	var err error

	if len(needle) < 3 {
		likePattern := "%" + strings.ReplaceAll(strings.ReplaceAll(needle, "%", "\\%"), "_", "\\_") + "%"
		rows, err = h.db.Query(`
			SELECT e.id, e.text, e.kind, e.uses, e.last_used, e.created
			FROM entries e
			WHERE e.text LIKE ?4 ESCAPE '\'
		`+frecencyOrder+`
			LIMIT ?5
		`, hour, day, week, likePattern, limit)
	} else {
		// Double quotes make the trigram match a literal substring, so
		// needles like "ls -la" survive FTS5 query syntax.
		quoted := `"` + strings.ReplaceAll(needle, `"`, `""`) + `"`
		rows, err = h.db.Query(`
			SELECT e.id, e.text, e.kind, e.uses, e.last_used, e.created
			FROM entries_fts
			JOIN entries e ON e.id = entries_fts.rowid
			WHERE entries_fts MATCH ?4
		`+frecencyOrder+`
			LIMIT ?5
		`, hour, day, week, quoted, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent returns the most recently used entries.
func (h *SQLiteHistory) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.Query(`
		SELECT e.id, e.text, e.kind, e.uses, e.last_used, e.created
		FROM entries e
		ORDER BY e.last_used DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent failed: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var lastUsed, created int64
		if err := rows.Scan(&e.ID, &e.Text, &e.Kind, &e.Uses, &lastUsed, &created); err != nil {
			continue // Skip malformed rows
		}
		e.LastUsed = time.Unix(0, lastUsed)
		e.Created = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats reports entry count and newest use time.
func (h *SQLiteHistory) Stats() (Stats, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var s Stats
	if err := h.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&s.Entries); err != nil {
		return Stats{}, err
	}

	var lastUsed sql.NullInt64
	if err := h.db.QueryRow("SELECT MAX(last_used) FROM entries").Scan(&lastUsed); err != nil {
		return Stats{}, err
	}
	if lastUsed.Valid {
		s.LastUsed = time.Unix(0, lastUsed.Int64)
	}
	return s, nil
}

// Flush blocks until all queued appends are written.
func (h *SQLiteHistory) Flush() error {
	done := make(chan struct{})
	select {
	case h.flushCh <- done:
		<-done
	case <-h.stopCh:
		// Already stopped
	}
	return nil
}

// Close flushes pending writes and closes the database.
func (h *SQLiteHistory) Close() error {
	close(h.stopCh)
	<-h.doneCh

	return h.db.Close()
}

// Compile-time interface check
var _ History = (*SQLiteHistory)(nil)
