package config

import "time"

// HTTPConfig controls the listener serving the two-factor and session endpoints.
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain scopes the session cookie. Empty uses the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT"        envDefault:"30s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT"       envDefault:"30s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT"        envDefault:"2m"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"10s"`
}

// Sanitize fills an empty address and non-positive timeouts with defaults.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	defaults := []struct {
		field *time.Duration
		value time.Duration
	}{
		{&h.ReadHeaderTimeout, 10 * time.Second},
		{&h.ReadTimeout, 30 * time.Second},
		{&h.WriteTimeout, 30 * time.Second},
		{&h.IdleTimeout, 2 * time.Minute},
		{&h.ShutdownTimeout, 10 * time.Second},
	}
	for _, d := range defaults {
		if *d.field <= 0 {
			*d.field = d.value
		}
	}
}
