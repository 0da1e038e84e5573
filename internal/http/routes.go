package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	TwoFactor DuoServiceInterface
	Sessions  SessionServiceInterface
	// ClientNameHeader names the header carrying the initiating application.
	ClientNameHeader string
	CookieDomain     string
	// Metrics is served at /metrics. Nil selects the default Prometheus gatherer.
	Metrics prometheus.Gatherer
	Logger  *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
// Logging and Recover are applied by the caller.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /metrics", metricsHandler(services.Metrics))

	sessionHandlers := &SessionHandlers{Svc: services.Sessions, CookieDomain: services.CookieDomain, Logger: logger}
	mux.HandleFunc("GET /auth/status", sessionHandlers.Status)
	mux.HandleFunc("POST /auth/logout", sessionHandlers.Logout)

	h := &TwoFactorHandlers{Svc: services.TwoFactor, Sessions: services.Sessions, Logger: logger}
	registerTwoFactorRoutes(mux, h, services.Sessions)

	return ClientName(services.ClientNameHeader)(mux)
}

func registerTwoFactorRoutes(mux *http.ServeMux, h *TwoFactorHandlers, sessions SessionReader) {
	auth := RequireSession(sessions)
	routes := map[string]http.HandlerFunc{
		"GET /api/two-factor/duo":                                  h.UserStatus,
		"POST /api/two-factor/duo/authorize":                       h.UserAuthorize,
		"POST /api/two-factor/duo/validate":                        h.UserValidate,
		"GET /api/organizations/{orgID}/two-factor/duo":            h.OrganizationStatus,
		"POST /api/organizations/{orgID}/two-factor/duo/authorize": h.OrganizationAuthorize,
		"POST /api/organizations/{orgID}/two-factor/duo/validate":  h.OrganizationValidate,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, auth(fn))
	}
}
