package merger

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the merger logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("merger")
}
