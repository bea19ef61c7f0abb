package errorreporting

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
)

// Patterns scrubbed from outgoing error messages.
var scrubPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),
	// API keys and secrets
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)["\s:=]+[a-zA-Z0-9_-]{16,}`),
	// IP addresses
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

// Init initializes Sentry error reporting. A missing DSN disables
// reporting without error.
func Init(environment string) error {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return nil
	}

	sampleRate := 1.0
	if os.Getenv("ENV") == "production" {
		sampleRate = 0.1 // Sample 10% in production
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          getRelease(),
		TracesSampleRate: sampleRate,
		BeforeSend:       beforeSend,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	return nil
}

// getRelease returns the release version from environment or default
func getRelease() string {
	if release := os.Getenv("SENTRY_RELEASE"); release != "" {
		return release
	}
	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// beforeSend scrubs sensitive data from events before they leave the
// process.
func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event.Exception != nil {
		for i := range event.Exception {
			event.Exception[i].Value = scrub(event.Exception[i].Value)
		}
	}
	if event.Message != "" {
		event.Message = scrub(event.Message)
	}
	if event.Extra != nil {
		for key, value := range event.Extra {
			if str, ok := value.(string); ok {
				event.Extra[key] = scrub(str)
			}
		}
	}
	if event.Request != nil {
		if event.Request.Headers != nil {
			delete(event.Request.Headers, "Authorization")
			delete(event.Request.Headers, "Cookie")
		}
		event.Request.QueryString = ""
	}
	return event
}

func scrub(text string) string {
	result := text
	for _, pattern := range scrubPatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// Scrub exposes the scrubbing function for callers that log raw panic
// payloads.
func Scrub(text string) string { return scrub(text) }

// CaptureError captures an error and sends it to Sentry
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for all events to be sent to Sentry
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsSentryEnabled returns true if Sentry is configured
func IsSentryEnabled() bool {
	return os.Getenv("SENTRY_DSN") != ""
}
