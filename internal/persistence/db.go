// Package persistence provides SQLite-backed fun fact storage.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/us-states/internal/funfacts"
)

const schemaVersion = "1"

// DB wraps a SQLite connection and implements funfacts.Store.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

var (
	_ funfacts.Store  = (*DB)(nil)
	_ funfacts.Pinger = (*DB)(nil)
)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fun_facts (
		state_code TEXT PRIMARY KEY,
		funfacts_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SaveMeta("schema_version", schemaVersion)
}

// row is the on-disk shape of a funfacts.Record.
type row struct {
	StateCode    string `db:"state_code"`
	FunfactsJSON string `db:"funfacts_json"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func (r row) record() (*funfacts.Record, error) {
	var facts []string
	if err := json.Unmarshal([]byte(r.FunfactsJSON), &facts); err != nil {
		return nil, fmt.Errorf("decode fun facts for %s: %w", r.StateCode, err)
	}
	return &funfacts.Record{
		StateCode: r.StateCode,
		Funfacts:  facts,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}, nil
}

func encodeFacts(facts []string) (string, error) {
	if facts == nil {
		facts = []string{}
	}
	data, err := json.Marshal(facts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FindOne returns the record for code.
func (db *DB) FindOne(ctx context.Context, code string) (*funfacts.Record, error) {
	var r row
	err := db.conn.GetContext(ctx, &r,
		"SELECT state_code, funfacts_json, created_at, updated_at FROM fun_facts WHERE state_code = ?",
		code,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", funfacts.ErrRecordNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("select fun facts %s: %w", code, err)
	}
	return r.record()
}

// FindAll returns every record ordered by state code.
func (db *DB) FindAll(ctx context.Context) ([]funfacts.Record, error) {
	var rows []row
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT state_code, funfacts_json, created_at, updated_at FROM fun_facts ORDER BY state_code",
	)
	if err != nil {
		return nil, fmt.Errorf("select fun facts: %w", err)
	}

	out := make([]funfacts.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Create inserts a new record.
func (db *DB) Create(ctx context.Context, code string, facts []string) (*funfacts.Record, error) {
	factsJSON, err := encodeFacts(facts)
	if err != nil {
		return nil, fmt.Errorf("encode fun facts for %s: %w", code, err)
	}

	// One statement, so no read-to-write lock upgrade. An existing
	// record affects zero rows.
	now := db.now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO fun_facts (state_code, funfacts_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(state_code) DO NOTHING`,
		code, factsJSON, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert fun facts %s: %w", code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", funfacts.ErrRecordExists, code)
	}

	slog.Debug("fun facts inserted", "state", code, "count", len(facts))
	return &funfacts.Record{
		StateCode: code,
		Funfacts:  append([]string(nil), facts...),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Save overwrites the stored list for rec.StateCode.
func (db *DB) Save(ctx context.Context, rec *funfacts.Record) (*funfacts.Record, error) {
	factsJSON, err := encodeFacts(rec.Funfacts)
	if err != nil {
		return nil, fmt.Errorf("encode fun facts for %s: %w", rec.StateCode, err)
	}

	now := db.now().UTC()
	res, err := db.conn.ExecContext(ctx,
		"UPDATE fun_facts SET funfacts_json = ?, updated_at = ? WHERE state_code = ?",
		factsJSON, now.UnixNano(), rec.StateCode,
	)
	if err != nil {
		return nil, fmt.Errorf("update fun facts %s: %w", rec.StateCode, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", funfacts.ErrRecordNotFound, rec.StateCode)
	}
	return db.FindOne(ctx, rec.StateCode)
}

// SaveMeta stores a key-value pair in store metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO store_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
