package twofactor

import "time"

const (
	// StateTokenIdentifier marks a record as a Duo state token.
	StateTokenIdentifier = "DuoUserStateTokenable"
	// DefaultStateTokenLifetime bounds how long a redirect may take to come back.
	DefaultStateTokenLifetime = 15 * time.Minute
)

// StateToken is the plain record carried, protected, through the provider redirect.
// It binds the attempt to the user who started it.
type StateToken struct {
	Identifier string    `json:"identifier"`
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewStateToken builds a token for user issued at now.
func NewStateToken(id string, user User, now time.Time, lifetime time.Duration) StateToken {
	if lifetime <= 0 {
		lifetime = DefaultStateTokenLifetime
	}
	now = now.UTC()
	return StateToken{
		Identifier: StateTokenIdentifier,
		ID:         id,
		UserID:     user.ID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(lifetime),
	}
}

// Valid reports whether the token is well formed and unexpired at now.
func (t StateToken) Valid(now time.Time) bool {
	if t.Identifier != StateTokenIdentifier || t.UserID == "" {
		return false
	}
	return now.Before(t.ExpiresAt)
}

// MatchesPrincipal reports whether the token was issued to user.
func (t StateToken) MatchesPrincipal(user User) bool {
	return t.UserID != "" && t.UserID == user.ID
}
