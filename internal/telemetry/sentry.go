// Package telemetry forwards enhanced errors to Sentry when the user opts in.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/birdstrike/internal/conf"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
)

const flushTimeout = 2 * time.Second

// SentryReporter implements errors.TelemetryReporter on a private hub
type SentryReporter struct {
	hub *sentry.Hub
}

// Init installs a Sentry reporter as the error package's telemetry reporter when
// settings enable it. The returned function flushes pending events and uninstalls
// the reporter; it is safe to call when telemetry is disabled.
func Init(settings *conf.SentrySettings, version string) (func(), error) {
	if !settings.Enabled {
		errors.SetTelemetryReporter(nil)
		return func() {}, nil
	}

	reporter, err := newSentryReporter(sentry.ClientOptions{
		Dsn:              settings.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "", // never send the hostname
		Release:          fmt.Sprintf("birdstrike@%s", version),
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return func() {}, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(reporter)
	GetLogger().Info("error telemetry enabled")

	return func() {
		reporter.Flush(flushTimeout)
		errors.SetTelemetryReporter(nil)
	}, nil
}

func newSentryReporter(opts sentry.ClientOptions) (*SentryReporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// IsEnabled reports whether the reporter has a client
func (r *SentryReporter) IsEnabled() bool {
	return r != nil && r.hub != nil && r.hub.Client() != nil
}

// ReportError sends a scrubbed copy of ee and marks it reported.
func (r *SentryReporter) ReportError(ee *errors.EnhancedError) {
	if !r.IsEnabled() {
		return
	}

	message := errors.ScrubMessage(ee.Error())
	category := string(ee.Category)
	title := fmt.Sprintf("%s error in %s", category, ee.Component)

	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", category)
		if ctx := ee.GetContext(); len(ctx) > 0 {
			scope.SetContext("error", scrubContext(ctx))
		}
		scope.SetFingerprint([]string{category, ee.Component})

		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = message
		event.Exception = []sentry.Exception{{Type: title, Value: message}}
		r.hub.CaptureEvent(event)
	})
	ee.MarkReported()

	GetLogger().Debug("error reported",
		logger.String("component", ee.Component),
		logger.String("category", category))
}

// Flush waits for queued events
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	if !r.IsEnabled() {
		return true
	}
	return r.hub.Flush(timeout)
}

func scrubContext(ctx map[string]any) sentry.Context {
	out := make(sentry.Context, len(ctx))
	for k, v := range ctx {
		if s, ok := v.(string); ok {
			out[k] = errors.ScrubMessage(s)
			continue
		}
		out[k] = v
	}
	return out
}

// beforeSend strips user, host and device data from every event
func beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}
	return event
}
