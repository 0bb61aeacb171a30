package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Preference slots. Values are stored verbatim.
const (
	KeyEndpoint = "rpc"
	KeyWallets  = "wallets"
)

// Preferences is what was saved by earlier sessions. Empty means unset.
type Preferences struct {
	Endpoint string
	Wallets  string
}

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("preferences path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
        key TEXT NOT NULL PRIMARY KEY,
        value TEXT NOT NULL
    )`)
	return err
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads both slots.
func (s *Store) Load() (Preferences, error) {
	var p Preferences
	var err error

	if p.Endpoint, err = s.get(KeyEndpoint); err != nil {
		return Preferences{}, err
	}
	if p.Wallets, err = s.get(KeyWallets); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// SaveEndpoint stores the RPC endpoint URL.
func (s *Store) SaveEndpoint(endpoint string) error {
	return s.set(KeyEndpoint, endpoint)
}

// ResetEndpoint removes the saved endpoint so the default applies again.
func (s *Store) ResetEndpoint() error {
	_, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, KeyEndpoint)
	return err
}

// SaveWallets stores the raw address-list text.
func (s *Store) SaveWallets(text string) error {
	return s.set(KeyWallets, text)
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO preferences(key, value) VALUES(?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("saving preference %q: %w", key, err)
	}
	return nil
}
