package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/abdulachik/cinetrivia/internal/metrics"
	"github.com/abdulachik/cinetrivia/internal/supersede"
)

const (
	// SessionCookie holds the anonymous session id ratings are stored under.
	SessionCookie = "cinetrivia_session"

	// WidgetHeader lets API clients name the widget a request belongs to,
	// e.g. one per open dialog.
	WidgetHeader = "X-Widget-ID"
)

type sessionKey struct{}

// Session makes sure every request carries a session id, issuing a cookie
// for new visitors.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

// SessionID returns the session id stored by Session.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// widgetKey scopes a supersede key to the session. The header, when sent,
// replaces the default widget name.
func widgetKey(r *http.Request, widget string) string {
	if h := strings.TrimSpace(r.Header.Get(WidgetHeader)); h != "" {
		widget = h
	}
	return SessionID(r.Context()) + ":" + widget
}

// begin starts a request that supersedes earlier ones for the same widget.
func (s *Server) begin(r *http.Request, widget string) (context.Context, *supersede.Ticket) {
	return s.tracker.Begin(r.Context(), widgetKey(r, widget))
}

// stale reports whether the request was replaced by a newer one for the same
// widget, counting it when so.
func stale(ctx context.Context, ticket *supersede.Ticket, kind string, err error) bool {
	if supersede.Superseded(ctx, err) || ticket.Commit() != nil {
		slog.Debug("request superseded", "kind", kind, "key", ticket.Key())
		metrics.SupersededTotal.WithLabelValues(kind).Inc()
		return true
	}
	return false
}
