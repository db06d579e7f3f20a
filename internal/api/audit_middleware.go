package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/example/condo-admin/internal/security"
	"github.com/example/condo-admin/internal/session"
	"github.com/example/condo-admin/pkg/audit"
)

// Auditor receives one record per handled request. *audit.Trail satisfies it.
type Auditor interface {
	Record(actor, action, entity, entityID, detail string) *audit.Entry
}

// AuditMiddleware records who did what. It must run after Authenticate so
// the session claims are in the request context; the actor is the token
// subject, not the display name.
func AuditMiddleware(a Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(sw, r)
			dur := time.Since(start)

			actor := ""
			if claims, ok := session.CurrentSession(r.Context()); ok {
				actor = claims.Subject
			}

			detail := fmt.Sprintf("status=%d dur_ms=%d cid=%s",
				sw.status, dur.Milliseconds(), security.CorrelationIDFromContext(r.Context()))
			a.Record(actor, r.Method, r.URL.Path, "", detail)
		})
	}
}
