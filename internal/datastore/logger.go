package datastore

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the datastore logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}
