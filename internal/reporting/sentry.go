// Package reporting forwards server errors and panics to Sentry.
//
// Everything here is a no-op until Init succeeds with a non-empty DSN.
package reporting

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled atomic.Bool

// Init configures the Sentry client. An empty dsn leaves reporting disabled.
func Init(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		ServerName:       "csv-parser-api",
		AttachStacktrace: true,
	}); err != nil {
		return err
	}
	enabled.Store(true)
	return nil
}

// Enabled reports whether Init configured a client.
func Enabled() bool {
	return enabled.Load()
}

// CaptureError reports err with request details attached as tags.
func CaptureError(r *http.Request, err error, tags map[string]string) {
	if !enabled.Load() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Middleware reports panics and re-panics so an outer recoverer still
// produces the 500 response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !enabled.Load() {
			next.ServeHTTP(w, r)
			return
		}
		defer func() {
			if rec := recover(); rec != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Recover(rec)
				panic(rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Flush waits up to timeout for queued events to be sent.
func Flush(timeout time.Duration) {
	if !enabled.Load() {
		return
	}
	sentry.Flush(timeout)
}
