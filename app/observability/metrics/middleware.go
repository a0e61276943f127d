package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMiddleware records the registration and login instruments from
// request outcomes, so handler code stays free of metric plumbing.
// sessionCookieName identifies the session cookie; logout only decrements
// the active-session gauge when that cookie was actually sent, since a
// cookie-less logout still answers 200 without closing anything.
func HTTPMiddleware(m *AppMetrics, sessionCookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			ctx := r.Context()
			status := attribute.Int("http.status_code", ww.Status())

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/users":
				m.RegisterRequestsTotal.Add(ctx, 1, metric.WithAttributes(status))
				m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(status))
			case r.Method == http.MethodPost && r.URL.Path == "/login":
				m.LoginRequestsTotal.Add(ctx, 1, metric.WithAttributes(status))
				if ww.Status() == http.StatusUnauthorized {
					m.LoginFailuresTotal.Add(ctx, 1)
				} else if ww.Status() == http.StatusOK {
					m.SessionsActive.Add(ctx, 1)
				}
			case r.URL.Path == "/logout" && ww.Status() == http.StatusOK:
				if _, err := r.Cookie(sessionCookieName); err == nil {
					m.SessionsActive.Add(ctx, -1)
				}
			}
		})
	}
}
