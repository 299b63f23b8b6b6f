package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/birdstrike/internal/logger"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Path string
}

// Open creates the database file if needed and migrates the schema
func (store *SQLiteStore) Open() error {
	if store.Path == "" {
		return fmt.Errorf("sqlite database path is empty")
	}
	if dir := filepath.Dir(store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(store.Path), newGormConfig())
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	GetLogger().Debug("sqlite database opened", logger.String("path", store.Path))
	return store.attach(db, "SQLite")
}
