package output

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the output logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("output")
}
