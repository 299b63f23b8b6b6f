package normalize

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the normalize logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("normalize")
}
