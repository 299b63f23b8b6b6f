package cleaner

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the cleaner logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("cleaner")
}
