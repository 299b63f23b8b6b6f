// Package errors - telemetry integration (optional)
package errors

import (
	"regexp"
	"sync/atomic"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// reporterHolder lets atomic.Pointer carry an interface value
type reporterHolder struct {
	reporter TelemetryReporter
}

var globalTelemetryReporter atomic.Pointer[reporterHolder]

// SetTelemetryReporter sets the global telemetry reporter; nil disables reporting
func SetTelemetryReporter(reporter TelemetryReporter) {
	if reporter == nil {
		globalTelemetryReporter.Store(nil)
		return
	}
	globalTelemetryReporter.Store(&reporterHolder{reporter: reporter})
}

// GetTelemetryReporter returns the current telemetry reporter
func GetTelemetryReporter() TelemetryReporter {
	holder := globalTelemetryReporter.Load()
	if holder == nil {
		return nil
	}
	return holder.reporter
}

// reportToTelemetry reports an error to the configured telemetry system
func reportToTelemetry(ee *EnhancedError) {
	reporter := GetTelemetryReporter()
	if reporter != nil && reporter.IsEnabled() && !ee.IsReported() {
		reporter.ReportError(ee)
	}
}

var (
	urlQueryRegex = regexp.MustCompile(`(https?://[^?\s]+)\?\S*`)
	homePathRegex = regexp.MustCompile(`(/home|/Users)/[^/\s]+`)
)

// ScrubMessage removes URL query strings and user home directories from a message
// before it leaves the machine.
func ScrubMessage(message string) string {
	scrubbed := urlQueryRegex.ReplaceAllString(message, "$1?[REDACTED]")
	return homePathRegex.ReplaceAllString(scrubbed, "$1/[USER]")
}
