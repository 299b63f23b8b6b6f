package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	DSN string // e.g. user:pass@tcp(host:3306)/birdstrike?parseTime=true
}

// Open connects to the server and migrates the schema
func (store *MySQLStore) Open() error {
	if store.DSN == "" {
		return fmt.Errorf("mysql dsn is empty")
	}

	db, err := gorm.Open(mysql.Open(store.DSN), newGormConfig())
	if err != nil {
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	return store.attach(db, "MySQL")
}
