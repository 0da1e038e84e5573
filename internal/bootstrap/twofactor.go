package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/duogate/config"
	"github.com/target/duogate/internal/adapters/dataprotect"
	"github.com/target/duogate/internal/adapters/duo"
	redisadapter "github.com/target/duogate/internal/adapters/redis"
	"github.com/target/duogate/internal/data"
	"github.com/target/duogate/internal/data/cryptoutil"
	"github.com/target/duogate/internal/observability/statsd"
	"github.com/target/duogate/internal/ports"
	"github.com/target/duogate/internal/service"
)

// TwoFactorDeps carries the infrastructure the two-factor services are built on.
type TwoFactorDeps struct {
	Config *config.AppConfig
	Infra  Infrastructure
	Logger *slog.Logger
}

// Infrastructure bundles shared connections and sinks.
type Infrastructure struct {
	DB        *sql.DB
	Redis     redis.UniversalClient
	Encryptor cryptoutil.Encryptor
	Metrics   statsd.Sink
}

// TwoFactorServices is the wired object graph served over HTTP and used by the admin tool.
type TwoFactorServices struct {
	Users         *data.UserRepo
	Organizations *data.OrganizationRepo
	User          *service.UserProvider
	Organization  *service.OrganizationProvider
	Duo           *service.DuoService
	Sessions      *service.SessionService
}

// NewTwoFactorServices wires repositories, the Duo client factory, the state
// protector, the flow controller and both principal façades.
func NewTwoFactorServices(deps TwoFactorDeps) (*TwoFactorServices, error) {
	if deps.Config == nil {
		return nil, errors.New("two-factor config is required")
	}
	if deps.Infra.DB == nil || deps.Infra.Redis == nil {
		return nil, errors.New("database and redis connections are required")
	}
	if deps.Infra.Encryptor == nil {
		return nil, errors.New("encryptor is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	tf := cfg.TwoFactor

	sealer, err := CreateStateSealer(tf.StateTokenKey, cfg.IsDev, logger)
	if err != nil {
		return nil, fmt.Errorf("create state sealer: %w", err)
	}

	users := data.NewUserRepo(data.UserRepoOptions{DB: deps.Infra.DB, Enc: deps.Infra.Encryptor})
	orgs := data.NewOrganizationRepo(data.OrganizationRepoOptions{DB: deps.Infra.DB, Enc: deps.Infra.Encryptor})

	observer := service.Observer{Logger: logger, Metrics: deps.Infra.Metrics}
	builder := service.NewClientBuilder(service.ClientBuilderOptions{
		Factory: duo.NewFactory(duo.FactoryConfig{
			HTTPClient: &http.Client{Timeout: tf.ProviderTimeout},
		}),
		Redirect: service.RedirectConfig{
			VaultURL:          tf.VaultURL,
			ConnectorPath:     tf.ConnectorPath,
			DefaultClientName: tf.DefaultClientName,
		},
		Observer: observer,
	})

	var guard ports.ReplayGuard
	if tf.ReplayGuardEnabled {
		guard = redisadapter.NewReplayGuard(deps.Infra.Redis)
		logger.Info("duo authorization code replay guard enabled")
	}

	controller := service.NewController(service.ControllerOptions{
		Builder: builder,
		State: service.StateOptions{
			Protector:   dataprotect.NewStateProtector(dataprotect.StateProtectorOptions{Sealer: sealer}),
			Lifetime:    tf.StateTokenLifetime,
			ReplayGuard: guard,
		},
		Observer: observer,
	})

	gate := service.NewEntitlementGate(service.EntitlementGateOptions{Premium: users, Logger: logger})
	userProvider := service.NewUserProvider(gate, controller)
	orgProvider := service.NewOrganizationProvider(gate, controller)

	return &TwoFactorServices{
		Users:         users,
		Organizations: orgs,
		User:          userProvider,
		Organization:  orgProvider,
		Duo: service.NewDuoService(service.DuoServiceOptions{
			Repos:        service.DuoRepositories{Users: users, Organizations: orgs},
			User:         userProvider,
			Organization: orgProvider,
		}),
		Sessions: service.NewSessionService(service.SessionServiceOptions{
			Sessions: redisadapter.NewSessionStore(deps.Infra.Redis),
		}),
	}, nil
}
