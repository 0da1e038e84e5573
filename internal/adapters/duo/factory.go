package duo

// Package duo implements the Duo Universal Prompt protocol client used for the second factor.

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/duogate/internal/ports"
)

const (
	clientIDLength     = 20
	clientSecretLength = 40
	defaultTimeout     = 10 * time.Second
)

// ErrInvalidClientOptions is returned when stored credentials cannot form a client.
var ErrInvalidClientOptions = errors.New("invalid duo client options")

var _ ports.ProviderClientFactory = (*Factory)(nil)

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	HTTPClient *http.Client     // Optional, defaults to a client with a 10s timeout
	Now        func() time.Time // Optional, defaults to time.Now
}

// Factory builds Duo clients from stored credentials.
type Factory struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewFactory creates a Factory.
func NewFactory(cfg FactoryConfig) *Factory {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Factory{httpClient: httpClient, now: now}
}

// Build validates opts and returns a client bound to them.
//
//nolint:ireturn // satisfies ports.ProviderClientFactory
func (f *Factory) Build(opts ports.ClientOptions) (ports.ProviderClient, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return newClient(opts, f.httpClient, f.now), nil
}

func validateOptions(opts ports.ClientOptions) error {
	if len(opts.ClientID) != clientIDLength {
		return fmt.Errorf("%w: client id must be %d characters", ErrInvalidClientOptions, clientIDLength)
	}
	if len(opts.ClientSecret) != clientSecretLength {
		return fmt.Errorf("%w: client secret must be %d characters", ErrInvalidClientOptions, clientSecretLength)
	}
	host := strings.TrimSpace(opts.Host)
	if host == "" || strings.Contains(host, "/") {
		return fmt.Errorf("%w: host must be a bare hostname", ErrInvalidClientOptions)
	}
	u, err := url.Parse(opts.RedirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: redirect uri must be absolute", ErrInvalidClientOptions)
	}
	return nil
}
