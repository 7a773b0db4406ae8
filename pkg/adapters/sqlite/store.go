// Package sqlite implements core.Store on an embedded SQLite database.
//
// The database holds two tables: marks, keyed by object hash, and lists, keyed
// by an autoincrement integer with a non-unique index on name. List records are
// stored whole as JSON, so every write replaces the full record.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/aretw0/tracker/pkg/core"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - empty file
// 1 - marks and lists tables, lists.name index
const currentSchemaVersion = core.SchemaVersion

var _ core.Store = (*Store)(nil)

// Store is a core.Store backed by a SQLite file.
type Store struct {
	mu      sync.RWMutex
	path    string
	db      *sql.DB
	logger  *slog.Logger
	version int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore prepares a store for the database at path. Nothing is opened until Init.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Init opens the database, applies pragmas and upgrades the schema.
// Calling it on an open store is a no-op. Every failure wraps core.ErrStoreUnavailable.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %w", core.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", core.ErrStoreUnavailable, s.path, err)
	}
	// SQLite has a single writer; one connection keeps pragmas and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: connect: %w", core.ErrStoreUnavailable, err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	version, err := runMigrations(ctx, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	s.db = db
	s.version = version
	s.logger.Debug("store opened", "path", s.path, "schema_version", version)
	return nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// runMigrations upgrades the schema step by step based on user_version.
func runMigrations(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return version, fmt.Errorf("%w: found %d, supported %d", core.ErrSchemaTooNew, version, currentSchemaVersion)
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return version, err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return version, fmt.Errorf("set user_version: %w", err)
	}
	return currentSchemaVersion, nil
}

func migrateToV1(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, core.ErrClosed
	}
	return s.db, nil
}

func (s *Store) All(ctx context.Context) (core.MarkedMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT hash_id, value FROM marks")
	if err != nil {
		return nil, fmt.Errorf("query marks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(core.MarkedMap)
	for rows.Next() {
		var hashID string
		var value bool
		if err := rows.Scan(&hashID, &value); err != nil {
			return nil, fmt.Errorf("scan mark: %w", err)
		}
		out[hashID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate marks: %w", err)
	}
	return out, nil
}

func (s *Store) Marked(ctx context.Context, hashID string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return false, false, err
	}

	var value bool
	err = db.QueryRowContext(ctx, "SELECT value FROM marks WHERE hash_id = ?", hashID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("get mark %s: %w", hashID, err)
	}
	return value, true, nil
}

const upsertMark = `INSERT INTO marks (hash_id, value) VALUES (?, ?)
	ON CONFLICT(hash_id) DO UPDATE SET value = excluded.value`

func (s *Store) SetMarked(ctx context.Context, hashID string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, upsertMark, hashID, value); err != nil {
		return fmt.Errorf("put mark %s: %w", hashID, err)
	}
	return nil
}

func (s *Store) SetMarkedBatch(ctx context.Context, values core.MarkedMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertMark)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer func() { _ = stmt.Close() }()
		for hashID, value := range values {
			if _, err := stmt.ExecContext(ctx, hashID, value); err != nil {
				return fmt.Errorf("put mark %s: %w", hashID, err)
			}
		}
		return nil
	})
}

// listRecord is the JSON payload of a lists row. The row key lives in its own
// column and is not duplicated here.
type listRecord struct {
	Name  string                   `json:"name"`
	Query string                   `json:"query"`
	Items map[string]core.ListItem `json:"items"`
	Order *int                     `json:"order,omitempty"`
}

func encodeList(l *core.List) ([]byte, error) {
	items := l.Items
	if items == nil {
		items = map[string]core.ListItem{}
	}
	return json.Marshal(listRecord{Name: l.Name, Query: l.Query, Items: items, Order: l.Order})
}

func decodeList(id int64, payload []byte) (core.List, error) {
	var rec listRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return core.List{}, fmt.Errorf("decode list %d: %w", id, err)
	}
	if rec.Items == nil {
		rec.Items = make(map[string]core.ListItem)
	}
	return core.List{ID: id, Name: rec.Name, Query: rec.Query, Items: rec.Items, Order: rec.Order}, nil
}

func (s *Store) ListAdd(ctx context.Context, list *core.List) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	payload, err := encodeList(list)
	if err != nil {
		return 0, err
	}

	if list.ID != 0 {
		if err := putList(ctx, db, list.ID, list.Name, payload); err != nil {
			return 0, err
		}
		return list.ID, nil
	}

	res, err := db.ExecContext(ctx, "INSERT INTO lists (name, payload) VALUES (?, ?)", list.Name, payload)
	if err != nil {
		return 0, fmt.Errorf("insert list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert list id: %w", err)
	}
	list.ID = id
	return id, nil
}

func (s *Store) ListUpdate(ctx context.Context, list *core.List) error {
	if list.ID == 0 {
		return fmt.Errorf("update list without id: %w", core.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	payload, err := encodeList(list)
	if err != nil {
		return err
	}
	return putList(ctx, db, list.ID, list.Name, payload)
}

func putList(ctx context.Context, db *sql.DB, id int64, name string, payload []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO lists (id, name, payload) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, payload = excluded.payload`,
		id, name, payload,
	)
	if err != nil {
		return fmt.Errorf("put list %d: %w", id, err)
	}
	return nil
}

func (s *Store) ListGet(ctx context.Context, id int64) (core.List, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return core.List{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, "SELECT payload FROM lists WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.List{}, false, nil
	}
	if err != nil {
		return core.List{}, false, fmt.Errorf("get list %d: %w", id, err)
	}
	l, err := decodeList(id, payload)
	if err != nil {
		return core.List{}, false, err
	}
	return l, true, nil
}

func (s *Store) ListGetByName(ctx context.Context, name string) (core.List, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return core.List{}, false, err
	}

	var id int64
	var payload []byte
	err = db.QueryRowContext(ctx,
		"SELECT id, payload FROM lists WHERE name = ? ORDER BY id LIMIT 1", name,
	).Scan(&id, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.List{}, false, nil
	}
	if err != nil {
		return core.List{}, false, fmt.Errorf("get list by name %q: %w", name, err)
	}
	l, err := decodeList(id, payload)
	if err != nil {
		return core.List{}, false, err
	}
	return l, true, nil
}

func (s *Store) ListGetAll(ctx context.Context) ([]core.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT id, payload FROM lists ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.List
	for rows.Next() {
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		l, err := decodeList(id, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return out, nil
}

func (s *Store) ListRemove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	return nil
}

func (s *Store) ListRemoveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM lists"); err != nil {
		return fmt.Errorf("delete lists: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM marks"); err != nil {
			return fmt.Errorf("clear marks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM lists"); err != nil {
			return fmt.Errorf("clear lists: %w", err)
		}
		return nil
	})
}

// Close closes the database. A closed store can be reopened with Init.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	Open          bool   `json:"open"`
	SchemaVersion int    `json:"schema_version"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Path:          s.path,
		Open:          s.db != nil,
		SchemaVersion: s.version,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
