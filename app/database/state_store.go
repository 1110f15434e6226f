package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const cursorKey = "last_quote_number"

type StateStore struct {
	db *DB
}

func NewStateStore(db *DB) *StateStore {
	return &StateStore{db: db}
}

// GetCursor returns 0 when no cursor has been stored yet.
func (s *StateStore) GetCursor() (int, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, cursorKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}

	cursor, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse stored cursor %q: %w", value, err)
	}

	return cursor, nil
}

func (s *StateStore) SetCursor(value int) error {
	_, err := s.db.Exec(`
		INSERT INTO state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, cursorKey, strconv.Itoa(value), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}

	return nil
}
