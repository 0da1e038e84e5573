// Package auth holds the first-factor session record the two-factor endpoints run under.
package auth

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned by session stores for unknown or evicted IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record for a principal that has completed the first factor.
// ID is the opaque value handed to the browser as a cookie.
type Session struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Email             string    `json:"email"`
	TwoFactorVerified bool      `json:"two_factor_verified"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its absolute expiry at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Remaining returns the lifetime left at now. It is zero once expired and for
// sessions without an expiry.
func (s Session) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() || s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
