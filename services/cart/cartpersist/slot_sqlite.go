package cartpersist

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

type snapshotRow struct {
	Key     string `db:"cart_key"`
	Payload string `db:"payload"`
}

type sqliteSlot struct {
	db *sqlx.DB
}

// NewSQLiteSlot opens or creates the database at path and applies the schema
func NewSQLiteSlot(path string) (Slot, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("error creating database dir for %s: %w", path, err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		_, err = db.Exec(pragma)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	_, err = db.Exec(schemaSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &sqliteSlot{db: db}, nil
}

func (s *sqliteSlot) Read(c context.Context, key string) ([]byte, bool, error) {
	row := snapshotRow{}
	err := s.db.GetContext(c, &row, `SELECT cart_key, payload FROM cart_snapshots WHERE cart_key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading snapshot %s: %w", key, err)
	}
	return []byte(row.Payload), true, nil
}

func (s *sqliteSlot) Write(c context.Context, key string, data []byte) error {
	_, err := s.db.NamedExecContext(c, `
		INSERT INTO cart_snapshots (cart_key, payload, updated_at)
		VALUES (:cart_key, :payload, CURRENT_TIMESTAMP)
		ON CONFLICT(cart_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		snapshotRow{Key: key, Payload: string(data)})
	if err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", key, err)
	}
	return nil
}

func (s *sqliteSlot) Close() error {
	return s.db.Close()
}
