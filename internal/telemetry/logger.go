package telemetry

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the telemetry logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
