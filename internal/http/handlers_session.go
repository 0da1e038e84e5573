package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/duogate/internal/domain/auth"
)

// SessionServiceInterface defines the session operations used by the session handlers.
type SessionServiceInterface interface {
	SessionReader
	SessionMarker
	Logout(ctx context.Context, sessionID string) error
}

// SessionHandlers exposes the current session and logout.
type SessionHandlers struct {
	Svc          SessionServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionStatus struct {
	Authenticated     bool         `json:"authenticated"`
	TwoFactorVerified bool         `json:"two_factor_verified"`
	User              *sessionUser `json:"user,omitempty"`
	ExpiresAt         *time.Time   `json:"expires_at,omitempty"`
}

// Status reports whether the caller has a session and whether it passed the second factor.
// An unknown or expired cookie is cleared. GET /auth/status.
func (h *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, sessionStatus{})
		return
	}

	sess, err := h.Svc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		h.expireCookie(w, r)
		WriteJSON(w, http.StatusOK, sessionStatus{})
		return
	}
	WriteJSON(w, http.StatusOK, newSessionStatus(sess))
}

func newSessionStatus(sess *domainauth.Session) sessionStatus {
	expires := sess.ExpiresAt
	return sessionStatus{
		Authenticated:     true,
		TwoFactorVerified: sess.TwoFactorVerified,
		User:              &sessionUser{ID: sess.UserID, Email: sess.Email},
		ExpiresAt:         &expires,
	}
}

// Logout deletes the server-side session and expires the cookie. POST /auth/logout.
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.expireCookie(w, r)
	WriteJSON(w, http.StatusOK, struct {
		LoggedOut bool `json:"logged_out"`
	}{LoggedOut: true})
}

func (h *SessionHandlers) expireCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
