package pipeline

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the pipeline logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("pipeline")
}
