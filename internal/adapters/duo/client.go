package duo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/duogate/internal/domain/twofactor"
	"github.com/target/duogate/internal/ports"
	"golang.org/x/oauth2"
)

const (
	healthCheckPath = "/oauth/v1/health_check"
	authorizePath   = "/oauth/v1/authorize"
	tokenPath       = "/oauth/v1/token"

	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

	minStateLength = 22
	maxStateLength = 1024

	maxHealthBody = 64 << 10
)

var (
	// ErrInvalidState is returned when the state does not fit Duo's length limits.
	ErrInvalidState = errors.New("duo state must be between 22 and 1024 characters")
	// ErrMissingUsername is returned when no username is supplied.
	ErrMissingUsername = errors.New("duo username is required")
	// ErrMissingIDToken is returned when the token response carries no id_token.
	ErrMissingIDToken = errors.New("duo token response missing id_token")
)

var _ ports.ProviderClient = (*Client)(nil)

// Client is a Duo Universal Prompt client bound to one tenant and redirect URI.
type Client struct {
	opts       ports.ClientOptions
	httpClient *http.Client
	oauth      *oauth2.Config
	now        func() time.Time
}

func newClient(opts ports.ClientOptions, httpClient *http.Client, now func() time.Time) *Client {
	opts.Host = strings.TrimSpace(opts.Host)
	c := &Client{opts: opts, httpClient: httpClient, now: now}
	// ClientSecret is left empty so it is never sent; Duo authenticates the assertion instead.
	c.oauth = &oauth2.Config{
		ClientID:    opts.ClientID,
		RedirectURL: opts.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.baseURL() + authorizePath,
			TokenURL:  c.tokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return c
}

func (c *Client) baseURL() string  { return "https://" + c.opts.Host }
func (c *Client) tokenURL() string { return c.baseURL() + tokenPath }

type healthResponse struct {
	Stat          string `json:"stat"`
	Code          int    `json:"code"`
	Message       string `json:"message"`
	MessageDetail string `json:"message_detail"`
}

// HealthCheck asks Duo whether it accepts our credentials. Only HTTP 200 with
// stat "OK" is healthy. Any other answer is false with a nil error; transport
// failures return an error.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	endpoint := c.baseURL() + healthCheckPath
	assertion, err := c.signAssertion(endpoint)
	if err != nil {
		return false, err
	}
	form := url.Values{
		"client_id":        {c.opts.ClientID},
		"client_assertion": {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build health check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("duo health check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxHealthBody))
		return false, nil
	}

	var body healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxHealthBody)).Decode(&body); err != nil {
		return false, fmt.Errorf("decode health check (status %d): %w", resp.StatusCode, err)
	}
	return body.Stat == "OK", nil
}

// AuthorizationURL returns the Duo prompt URL for username carrying state.
func (c *Client) AuthorizationURL(username, state string) (string, error) {
	if l := len(state); l < minStateLength || l > maxStateLength {
		return "", ErrInvalidState
	}
	if username == "" {
		return "", ErrMissingUsername
	}
	request, err := c.signAuthorizeRequest(username, state)
	if err != nil {
		return "", err
	}
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {c.opts.ClientID},
		"request":       {request},
	}
	return c.oauth.Endpoint.AuthURL + "?" + q.Encode(), nil
}

// ExchangeCode trades code for an id_token and returns the verified verdict.
func (c *Client) ExchangeCode(ctx context.Context, code, username string) (*ports.ExchangeResult, error) {
	if code == "" {
		return nil, errors.New("duo authorization code is required")
	}
	if username == "" {
		return nil, ErrMissingUsername
	}
	assertion, err := c.signAssertion(c.tokenURL())
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, code,
		oauth2.SetAuthURLParam("client_assertion_type", clientAssertionType),
		oauth2.SetAuthURLParam("client_assertion", assertion),
	)
	if err != nil {
		return nil, fmt.Errorf("exchange duo code: %w", err)
	}

	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, ErrMissingIDToken
	}
	claims, err := c.verifyIDToken(rawID, username)
	if err != nil {
		return nil, err
	}
	return &ports.ExchangeResult{
		Verdict:       twofactor.Verdict(claims.AuthResult.Result),
		Status:        claims.AuthResult.Status,
		StatusMessage: claims.AuthResult.StatusMsg,
		Username:      claims.PreferredUsername,
	}, nil
}
