// Package datastore exports merged tables to a relational database through gorm.
package datastore

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/birdstrike/internal/conf"
	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
)

const (
	insertBatchSize    = 500
	slowQueryThreshold = 200 * time.Millisecond
)

// Interface abstracts the underlying database implementation
type Interface interface {
	Open() error
	SaveRun(run *Run, merged *dataset.Table) error
	GetRun(id string) (*Run, error)
	Close() error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New returns the store selected by the database settings, not yet opened.
func New(settings *conf.DatabaseSettings) (Interface, error) {
	switch settings.Type {
	case "sqlite", "":
		return &SQLiteStore{Path: settings.Path}, nil
	case "mysql":
		return &MySQLStore{DSN: settings.DSN}, nil
	default:
		return nil, errors.Newf("unsupported database type %q", settings.Type).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// Export opens the configured database, stores run and its merged rows, and closes it.
func Export(settings *conf.DatabaseSettings, run *Run, merged *dataset.Table) (err error) {
	store, err := New(settings)
	if err != nil {
		return err
	}
	if err := store.Open(); err != nil {
		return databaseError(err, "open", settings.Type)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = databaseError(cerr, "close", settings.Type)
		}
	}()

	if err := store.SaveRun(run, merged); err != nil {
		return databaseError(err, "save", settings.Type)
	}
	return nil
}

// SaveRun inserts run and one MergedRecord per row of merged in a single transaction.
func (ds *DataStore) SaveRun(run *Run, merged *dataset.Table) error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	records, err := buildRecords(run.ID, merged)
	if err != nil {
		return err
	}
	run.MergedRows = len(records)

	start := time.Now()
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Records").Create(run).Error; err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save merged records: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	GetLogger().Info("run exported",
		logger.String("run_id", run.ID),
		logger.Int("records", len(records)),
		logger.Duration("duration", time.Since(start)))
	return nil
}

// GetRun loads a run with its records ordered by row index.
func (ds *DataStore) GetRun(id string) (*Run, error) {
	if ds.DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var run Run
	err := ds.DB.Preload("Records", func(db *gorm.DB) *gorm.DB {
		return db.Order("row_index")
	}).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Close releases the connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}
	return sqlDB.Close()
}

// attach migrates db and makes it the store's connection. On failure the pool is
// closed and the store stays unopened.
func (ds *DataStore) attach(db *gorm.DB, dbType string) error {
	if err := performAutoMigration(db, dbType); err != nil {
		if sqlDB, dberr := db.DB(); dberr == nil {
			_ = sqlDB.Close()
		}
		return err
	}
	ds.DB = db
	return nil
}

// performAutoMigration creates or updates the export tables
func performAutoMigration(db *gorm.DB, dbType string) error {
	if err := db.AutoMigrate(&Run{}, &MergedRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}
	GetLogger().Debug("database migrated", logger.String("db_type", dbType))
	return nil
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.NewGormLoggerAdapter(GetLogger(), slowQueryThreshold)}
}

func buildRecords(runID string, merged *dataset.Table) ([]MergedRecord, error) {
	dateCol := merged.ColumnIndex("Date")
	genusCol := merged.ColumnIndex("Genus")
	speciesCol := merged.ColumnIndex("Species")

	rows := merged.Records()
	records := make([]MergedRecord, len(rows))
	for r, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("failed to encode row %d: %w", r, err)
		}
		rec := MergedRecord{
			RunID:    runID,
			RowIndex: r,
			Genus:    merged.Cell(r, genusCol).Text(),
			Species:  merged.Cell(r, speciesCol).Text(),
			Data:     string(data),
		}
		if d, ok := merged.Cell(r, dateCol).Date(); ok {
			rec.Date = d.Time(time.UTC)
		}
		records[r] = rec
	}
	return records, nil
}

func databaseError(err error, operation, dbType string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Context("db_type", dbType).
		Build()
}
