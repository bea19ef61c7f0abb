package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/onnwee/forcemap/internal/apierr"
	"github.com/onnwee/forcemap/internal/errorreporting"
	"github.com/onnwee/forcemap/internal/logger"
)

// RecoverWithSentry recovers from handler panics, reports them to
// Sentry when configured, and returns a structured 500.
func RecoverWithSentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				logger.FromContext(r.Context()).Error("Panic recovered",
					"error", err,
					"stack", string(stack),
					"method", r.Method,
					"path", r.URL.Path,
				)

				if errorreporting.IsSentryEnabled() {
					hub := sentry.CurrentHub().Clone()
					hub.Scope().SetRequest(r)
					hub.Scope().SetLevel(sentry.LevelError)
					hub.Scope().SetTag("method", r.Method)
					hub.Scope().SetTag("path", r.URL.Path)

					if e, ok := err.(error); ok {
						hub.CaptureException(e)
					} else {
						hub.CaptureMessage(errorreporting.Scrub(string(stack)))
					}
				}

				apierr.Internal("internal server error").Write(r.Context(), w)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
