package loader

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the loader logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("loader")
}
