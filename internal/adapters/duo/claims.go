package duo

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/target/duogate/internal/ports"
)

const (
	assertionLifetime = 5 * time.Minute
	idTokenLeeway     = 60 * time.Second
)

var errUsernameMismatch = fmt.Errorf("%w: id_token preferred_username does not match", ports.ErrUntrustedExchange)

// authResult is the verdict block Duo embeds in the id_token.
type authResult struct {
	Result    string `json:"result"`
	Status    string `json:"status"`
	StatusMsg string `json:"status_msg"`
}

type idTokenClaims struct {
	PreferredUsername string     `json:"preferred_username"`
	AuthResult        authResult `json:"auth_result"`
	jwt.RegisteredClaims
}

// signAssertion builds the HS512 client assertion Duo expects on back-channel calls.
func (c *Client) signAssertion(audience string) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss": c.opts.ClientID,
		"sub": c.opts.ClientID,
		"aud": audience,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
	}
	return c.sign(claims)
}

// signAuthorizeRequest builds the request object carried on the authorize redirect.
func (c *Client) signAuthorizeRequest(username, state string) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"response_type":          "code",
		"scope":                  "openid",
		"client_id":              c.opts.ClientID,
		"redirect_uri":           c.opts.RedirectURI,
		"state":                  state,
		"duo_uname":              username,
		"iss":                    c.opts.ClientID,
		"aud":                    c.baseURL(),
		"exp":                    now.Add(assertionLifetime).Unix(),
		"nonce":                  uuid.NewString(),
		"use_duo_code_attribute": true,
	}
	return c.sign(claims)
}

func (c *Client) sign(claims jwt.MapClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := tok.SignedString([]byte(c.opts.ClientSecret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// verifyIDToken checks signature, audience, issuer, expiry and the bound username.
func (c *Client) verifyIDToken(raw, username string) (*idTokenClaims, error) {
	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return []byte(c.opts.ClientSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithAudience(c.opts.ClientID),
		jwt.WithIssuer(c.tokenURL()),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(idTokenLeeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: verify id_token: %w", ports.ErrUntrustedExchange, err)
	}
	// Duo lowercases usernames; stored emails keep the case the user typed.
	if !strings.EqualFold(claims.PreferredUsername, username) {
		return nil, errUsernameMismatch
	}
	return claims, nil
}
