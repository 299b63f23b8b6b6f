package conf

import "github.com/tphakala/birdstrike/internal/logger"

// GetLogger returns the conf logger. It is fetched from the global logger on each
// call, since the central logger is only installed after settings are loaded.
func GetLogger() logger.Logger {
	return logger.Global().Module("conf")
}
