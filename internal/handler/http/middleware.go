package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/logger"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/middleware"
)

// SessionHeader carries the session id for clients that do not keep cookies.
const SessionHeader = "X-Session-ID"

type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionConfig controls the anonymous session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// Session resolves the storefront session of each request. A signed-in user
// always gets "user:<id>", so the cart follows them between browsers.
// Anonymous callers are identified by the X-Session-ID header, then the
// session cookie; when neither holds a valid id a new one is issued.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
				id = "user:" + userID
			} else {
				id = anonymousSessionID(r, cfg.CookieName)
				if id == "" {
					id = uuid.NewString()
					http.SetCookie(w, &http.Cookie{
						Name:     cfg.CookieName,
						Value:    id,
						Path:     "/",
						MaxAge:   int(cfg.MaxAge.Seconds()),
						HttpOnly: true,
						Secure:   cfg.Secure,
						SameSite: http.SameSiteLaxMode,
					})
				}
				w.Header().Set(SessionHeader, id)
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, id)
			ctx = logger.WithSessionID(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func anonymousSessionID(r *http.Request, cookieName string) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); validSessionID(id) {
		return id
	}
	if c, err := r.Cookie(cookieName); err == nil && validSessionID(c.Value) {
		return c.Value
	}
	return ""
}

// Anonymous session ids are canonical UUIDs; anything else is ignored.
func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func sessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
