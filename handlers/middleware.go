package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"shouldcost/logger"
	"shouldcost/services"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionCookie names the cookie carrying the browser's page-state id.
const SessionCookie = "estimator_session"

// GetSession extracts the browser session from the request context.
func GetSession(r *http.Request) *services.Session {
	if val, ok := r.Context().Value(SessionKey).(*services.Session); ok {
		return val
	}
	return nil
}

// WithSession returns r carrying sess in its context.
func WithSession(r *http.Request, sess *services.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, sess))
}

// SessionMiddleware reads the "estimator_session" cookie, resolves the page
// state it names and stores it in the request context. Unknown or expired ids
// get a fresh session and a new cookie. Static assets and the health probe
// are passed through untouched.
func SessionMiddleware(registry *services.SessionRegistry) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		path := e.Request.URL.Path
		if strings.HasPrefix(path, "/static/") || path == "/healthz" {
			return e.Next()
		}

		var id string
		if cookie, err := e.Request.Cookie(SessionCookie); err == nil {
			id = cookie.Value
		}

		sess, created := registry.Resolve(id)
		if created {
			if id != "" {
				logger.Info(e.Request.Context(), "Session expired, issuing a new one", zap.String("previous", id))
			}
			http.SetCookie(e.Response, &http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		e.Request = WithSession(e.Request, sess)
		return e.Next()
	}
}

// currentSession returns the request's session, answering with an error
// toast when the middleware did not run.
func currentSession(e *core.RequestEvent) (*services.Session, error) {
	if sess := GetSession(e.Request); sess != nil {
		return sess, nil
	}
	logger.Error(e.Request.Context(), "Request reached a page handler without a session", nil, zap.String("path", e.Request.URL.Path))
	return nil, ErrorToast(e, http.StatusInternalServerError, "Session unavailable. Please reload the page.")
}

// RateLimit refuses requests once the session has used up its pricing API
// allowance. Bind it on routes that call the pricing API.
func RateLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess := GetSession(e.Request)
		if sess != nil && !sess.Allow() {
			logger.Warn(e.Request.Context(), "Session rate limit exceeded",
				zap.String("session", sess.ID),
				zap.String("path", e.Request.URL.Path))
			return ErrorToast(e, http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.")
		}
		return e.Next()
	}
}
