package twofactor

import (
	"errors"
	"strings"
)

// CallbackDelimiter separates the authorization code from the state token.
const CallbackDelimiter = "|"

// ErrMalformedCallback is returned when a callback payload is not "code|state".
var ErrMalformedCallback = errors.New("malformed two-factor callback")

// Callback is a parsed redirect payload.
type Callback struct {
	Code  string
	State string
}

// ParseCallback splits payload into its code and state parts.
// Exactly one delimiter and two non-empty parts are required.
func ParseCallback(payload string) (Callback, error) {
	parts := strings.Split(payload, CallbackDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Callback{}, ErrMalformedCallback
	}
	return Callback{Code: parts[0], State: parts[1]}, nil
}

// String reassembles the wire form of the callback.
func (c Callback) String() string {
	return c.Code + CallbackDelimiter + c.State
}
