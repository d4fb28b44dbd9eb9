package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// NewBoltDB opens (creating if needed) the embedded bbolt database at path.
func NewBoltDB(path string) (*bolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create bolt directory %s: %w", dir, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	slog.Info("Opened bolt database", slog.String("path", path))
	return db, nil
}

// CloseBoltDB closes the bbolt database.
func CloseBoltDB(db *bolt.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Failed to close bolt database", slog.String("error", err.Error()))
		return
	}
	slog.Info("Bolt database closed")
}
