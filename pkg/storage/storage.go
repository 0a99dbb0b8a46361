package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/sw33tLie/cardscope/internal/utils"
	"github.com/sw33tLie/cardscope/pkg/card"
)

const historyKey = "scans"

// DB is the scan history: an ordered list of completed scans, newest first.
// The whole list is serialized as one JSON blob on every mutation and read
// back once at Open; insertion order is the only ordering, records are never
// re-sorted by timestamp.
type DB struct {
	sql  *sql.DB
	lock *utils.DBLock

	mu    sync.Mutex
	cards []card.ScannedCard
}

// Open opens (creating if needed) the history database at path. An empty
// path resolves to the default location under the user config directory.
// A missing or corrupt history deserializes to an empty list.
func Open(path string) (*DB, error) {
	absPath, err := utils.GetAbsDBPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, err
	}

	dsn := "file:" + absPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scan_history (
  key     TEXT PRIMARY KEY,
  payload BLOB NOT NULL
);
	`); err != nil {
		return nil, err
	}

	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		return nil, err
	}

	d := &DB{sql: db, lock: lock}
	d.cards = d.load()
	return d, nil
}

// load reads the persisted list once. Absence and corruption both yield an
// empty history rather than an error.
func (d *DB) load() []card.ScannedCard {
	var payload []byte
	err := d.sql.QueryRow("SELECT payload FROM scan_history WHERE key = ?", historyKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		utils.Log.Debug("scan history read failed, starting empty: ", err)
		return nil
	}

	var cards []card.ScannedCard
	if err := json.Unmarshal(payload, &cards); err != nil {
		utils.Log.Debug("scan history corrupt, starting empty: ", err)
		return nil
	}
	return cards
}

// Add inserts a scan at the head of the history and persists the whole
// collection.
func (d *DB) Add(c card.ScannedCard) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cards = append([]card.ScannedCard{c}, d.cards...)
	return d.persist()
}

// Clear empties the history and persists.
func (d *DB) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cards = nil
	return d.persist()
}

// List returns a copy of the history, newest first.
func (d *DB) List() []card.ScannedCard {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]card.ScannedCard, len(d.cards))
	copy(out, d.cards)
	return out
}

// Len returns the number of stored scans.
func (d *DB) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards)
}

func (d *DB) persist() error {
	payload, err := json.Marshal(d.cards)
	if err != nil {
		return fmt.Errorf("serialize scan history: %w", err)
	}

	if err := d.lock.Lock(); err != nil {
		return err
	}
	defer d.lock.Unlock()

	_, err = d.sql.Exec(
		"INSERT INTO scan_history(key, payload) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET payload = excluded.payload",
		historyKey, payload,
	)
	if err != nil {
		return fmt.Errorf("persist scan history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}
