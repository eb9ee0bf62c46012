package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/airwatch/internal/settings"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc}
}

// Open opens a SQLite database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
	}
	s := New(db, time.UTC)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

// GetSettings returns the stored settings, or the defaults when none were saved.
func (s *Store) GetSettings() (settings.Settings, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM settings WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return settings.Default(), nil
	}
	if err != nil {
		return settings.Settings{}, err
	}

	var st settings.Settings
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		return settings.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return st, nil
}

func (s *Store) SaveSettings(st settings.Settings) error {
	doc, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (id, document, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, string(doc), time.Now().UTC())
	return err
}
