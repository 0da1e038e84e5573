// Package dataprotect protects two-factor state tokens so they can travel through
// a third-party redirect without being forged, altered, or moved to another purpose.
package dataprotect

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/target/duogate/internal/data/cryptoutil"
	"github.com/target/duogate/internal/domain/twofactor"
	"github.com/target/duogate/internal/ports"
)

const (
	// DefaultPrefix is prepended in cleartext to every protected token.
	DefaultPrefix = "BwDuoUserId"
	// DefaultPurpose is bound into the ciphertext as additional data.
	DefaultPurpose = "DuoUserIdTokenDataProtector"
)

var _ ports.StateProtector = (*StateProtector)(nil)

// StateProtectorOptions configures a StateProtector.
type StateProtectorOptions struct {
	Sealer  cryptoutil.Sealer
	Purpose string
	Now     func() time.Time
}

// StateProtector seals StateTokens as "<prefix><base64url(nonce||ciphertext)>".
type StateProtector struct {
	sealer  cryptoutil.Sealer
	purpose []byte
	prefix  string
	now     func() time.Time
}

// NewStateProtector constructs a StateProtector. It panics when no sealer is supplied.
func NewStateProtector(opts StateProtectorOptions) *StateProtector {
	if opts.Sealer == nil {
		panic("dataprotect: sealer is required")
	}
	purpose := opts.Purpose
	if purpose == "" {
		purpose = DefaultPurpose
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &StateProtector{
		sealer:  opts.Sealer,
		purpose: []byte(purpose),
		prefix:  DefaultPrefix,
		now:     now,
	}
}

// Protect serializes and seals token.
func (p *StateProtector) Protect(token twofactor.StateToken) (string, error) {
	if token.UserID == "" {
		return "", errors.New("protect state: token is not bound to a user")
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("protect state: marshal: %w", err)
	}
	sealed, err := p.sealer.Seal(raw, p.purpose)
	if err != nil {
		return "", fmt.Errorf("protect state: seal: %w", err)
	}
	return p.prefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// TryUnprotect opens protected and returns the token when it is authentic and unexpired.
func (p *StateProtector) TryUnprotect(protected string) (twofactor.StateToken, bool) {
	encoded, ok := strings.CutPrefix(protected, p.prefix)
	if !ok || encoded == "" {
		return twofactor.StateToken{}, false
	}
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return twofactor.StateToken{}, false
	}
	raw, err := p.sealer.Open(sealed, p.purpose)
	if err != nil {
		return twofactor.StateToken{}, false
	}
	var token twofactor.StateToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return twofactor.StateToken{}, false
	}
	if !p.now().Before(token.ExpiresAt) {
		return twofactor.StateToken{}, false
	}
	return token, true
}
