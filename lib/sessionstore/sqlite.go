package sessionstore

import (
	"context"
	"database/sql"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SqliteStore keeps session state in a local sqlite database so it
// survives restarts of the host process.
type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(path string) (SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return SqliteStore{}, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		return SqliteStore{}, err
	}
	return SqliteStore{db: db}, nil
}

func NewSqliteStoreFromDB(db *sql.DB) (SqliteStore, error) {
	_, err := db.Exec(schema)
	if err != nil {
		return SqliteStore{}, err
	}
	return SqliteStore{db: db}, nil
}

func (s SqliteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(
		ctx,
		"SELECT value FROM session_state WHERE key = ?",
		key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s SqliteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO session_state (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s SqliteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(
		ctx,
		"DELETE FROM session_state WHERE key = ?",
		key,
	)
	return err
}
