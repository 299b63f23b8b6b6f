package datastore

import "time"

// Run is one pipeline execution whose merged table was exported
type Run struct {
	ID              string `gorm:"primaryKey;size:36"`
	StartedAt       time.Time
	FinishedAt      time.Time
	LightLevelsPath string
	CollisionsPath  string
	FlightCallsPath string
	OutputPath      string
	LightLevelRows  int // rows after cleaning
	CollisionRows   int // rows after cleaning
	FlightCallRows  int // rows after cleaning
	MergedRows      int
	Records         []MergedRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// MergedRecord is one row of the merged table
type MergedRecord struct {
	ID       uint      `gorm:"primaryKey"`
	RunID    string    `gorm:"index;size:36"`
	RowIndex int       // position in the sorted output, from 0
	Date     time.Time `gorm:"index"`
	Genus    string    `gorm:"index:idx_merged_records_species"`
	Species  string    `gorm:"index:idx_merged_records_species"`
	Data     string    `gorm:"type:text"` // every column of the row as a JSON object
}

// TableName overrides the default table name
func (Run) TableName() string { return "runs" }

// TableName overrides the default table name
func (MergedRecord) TableName() string { return "merged_records" }
