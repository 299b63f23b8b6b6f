package report

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the report logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("report")
}
