// Package devseed loads development fixtures: users, organizations, their Duo
// configuration and, optionally, a first-factor session to test the flow with.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/target/duogate/internal/data"
	domainauth "github.com/target/duogate/internal/domain/auth"
	"github.com/target/duogate/internal/domain/twofactor"
	apperrors "github.com/target/duogate/internal/errors"
	"github.com/target/duogate/internal/service"
)

// Fixture is the YAML document accepted by Run.
type Fixture struct {
	Users         []UserFixture         `yaml:"users"`
	Organizations []OrganizationFixture `yaml:"organizations"`
	Session       *SessionFixture       `yaml:"session"`
}

// DuoFixture is a provider slot. Omitted means no configuration is stored.
type DuoFixture struct {
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Host         string `yaml:"host"`
}

// UserFixture describes one user.
type UserFixture struct {
	Email   string      `yaml:"email"`
	Premium bool        `yaml:"premium"`
	Duo     *DuoFixture `yaml:"duo"`
}

// OrganizationFixture describes one organization. Members are the emails of
// confirmed members; Invited lists users who have not confirmed yet.
type OrganizationFixture struct {
	Name            string      `yaml:"name"`
	Enabled         bool        `yaml:"enabled"`
	Use2FA          bool        `yaml:"use_2fa"`
	UsersGetPremium bool        `yaml:"users_get_premium"`
	Members         []string    `yaml:"members"`
	Invited         []string    `yaml:"invited"`
	Duo             *DuoFixture `yaml:"duo"`
}

// SessionFixture requests a dev session for the user with Email.
type SessionFixture struct {
	Email string        `yaml:"email"`
	TTL   time.Duration `yaml:"ttl"`
}

// Decode parses a fixture document, rejecting unknown fields.
func Decode(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("decode seed fixture: %w", err)
	}
	return f, nil
}

// LoadFile reads and decodes the fixture at path.
func LoadFile(path string) (Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("open seed fixture: %w", err)
	}
	defer func() { _ = fh.Close() }()
	return Decode(fh)
}

// UserStore is the subset of the user repository the seeder writes through.
type UserStore interface {
	Create(ctx context.Context, req data.CreateUserRequest) (*twofactor.User, error)
	GetByEmail(ctx context.Context, email string) (*twofactor.User, error)
	SetTwoFactorProviders(ctx context.Context, id string, p twofactor.Providers) error
}

// OrganizationStore is the subset of the organization repository the seeder writes through.
type OrganizationStore interface {
	Create(ctx context.Context, req data.CreateOrganizationRequest) (*twofactor.Organization, error)
	GetByName(ctx context.Context, name string) (*twofactor.Organization, error)
	AddMember(ctx context.Context, orgID, userID string, status twofactor.MembershipStatus) error
	SetTwoFactorProviders(ctx context.Context, id string, p twofactor.Providers) error
}

// SessionCreator creates first-factor sessions.
type SessionCreator interface {
	CreateSession(ctx context.Context, in service.CreateSessionInput) (*domainauth.Session, error)
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Users         UserStore
	Organizations OrganizationStore
	Sessions      SessionCreator // Optional; required only when the fixture asks for a session
}

// Report lists what Run created or found.
type Report struct {
	UserIDs         map[string]string // by email
	OrganizationIDs map[string]string // by name
	Session         *domainauth.Session
}

// Run applies f. Existing users and organizations are reused and their Duo
// configuration overwritten, so running the same fixture twice is safe.
func Run(ctx context.Context, svcs Services, f Fixture, logger *slog.Logger) (*Report, error) {
	if svcs.Users == nil || svcs.Organizations == nil {
		return nil, errors.New("devseed: user and organization stores are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	rep := &Report{UserIDs: map[string]string{}, OrganizationIDs: map[string]string{}}

	for _, uf := range f.Users {
		user, err := seedUser(ctx, svcs.Users, uf, logger)
		if err != nil {
			return rep, err
		}
		rep.UserIDs[strings.ToLower(user.Email)] = user.ID
	}

	for _, of := range f.Organizations {
		org, err := seedOrganization(ctx, svcs.Organizations, of, rep.UserIDs, logger)
		if err != nil {
			return rep, err
		}
		rep.OrganizationIDs[org.Name] = org.ID
	}

	if f.Session != nil {
		sess, err := seedSession(ctx, svcs.Sessions, *f.Session, rep.UserIDs)
		if err != nil {
			return rep, err
		}
		rep.Session = sess
		logger.InfoContext(ctx, "created dev session", "user_id", sess.UserID, "expires_at", sess.ExpiresAt)
	}
	return rep, nil
}

func seedUser(ctx context.Context, store UserStore, uf UserFixture, logger *slog.Logger) (*twofactor.User, error) {
	user, created, err := createOrGetUser(ctx, store, uf)
	if err != nil {
		return nil, fmt.Errorf("seed user %q: %w", uf.Email, err)
	}
	if uf.Duo != nil {
		if err := store.SetTwoFactorProviders(ctx, user.ID, providers(twofactor.ProviderTypeDuo, *uf.Duo)); err != nil {
			return nil, fmt.Errorf("seed user %q providers: %w", uf.Email, err)
		}
	}
	msg := "user already exists"
	if created {
		msg = "created user"
	}
	logger.InfoContext(ctx, msg, "email", user.Email, "user_id", user.ID, "duo", uf.Duo != nil)
	return user, nil
}

func createOrGetUser(ctx context.Context, store UserStore, uf UserFixture) (*twofactor.User, bool, error) {
	user, err := store.Create(ctx, data.CreateUserRequest{Email: uf.Email, Premium: uf.Premium})
	if err == nil {
		return user, true, nil
	}
	if !apperrors.IsConflict(err) {
		return nil, false, err
	}
	user, err = store.GetByEmail(ctx, uf.Email)
	if err != nil {
		return nil, false, err
	}
	return user, false, nil
}

func seedOrganization(
	ctx context.Context,
	store OrganizationStore,
	of OrganizationFixture,
	userIDs map[string]string,
	logger *slog.Logger,
) (*twofactor.Organization, error) {
	memberIDs, err := lookupIDs(of.Name, of.Members, userIDs)
	if err != nil {
		return nil, err
	}
	invitedIDs, err := lookupIDs(of.Name, of.Invited, userIDs)
	if err != nil {
		return nil, err
	}

	org, err := store.GetByName(ctx, of.Name)
	created := false
	switch {
	case apperrors.IsNotFound(err):
		org, err = store.Create(ctx, data.CreateOrganizationRequest{
			Name:            of.Name,
			Enabled:         of.Enabled,
			Use2FA:          of.Use2FA,
			UsersGetPremium: of.UsersGetPremium,
			MemberIDs:       memberIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("seed organization %q: %w", of.Name, err)
		}
		created = true
	case err != nil:
		return nil, fmt.Errorf("seed organization %q: %w", of.Name, err)
	default:
		for _, id := range memberIDs {
			if err := store.AddMember(ctx, org.ID, id, twofactor.MembershipConfirmed); err != nil {
				return nil, fmt.Errorf("seed organization %q member: %w", of.Name, err)
			}
		}
	}
	for _, id := range invitedIDs {
		if err := store.AddMember(ctx, org.ID, id, twofactor.MembershipInvited); err != nil {
			return nil, fmt.Errorf("seed organization %q invite: %w", of.Name, err)
		}
	}

	if of.Duo != nil {
		p := providers(twofactor.ProviderTypeOrganizationDuo, *of.Duo)
		if err := store.SetTwoFactorProviders(ctx, org.ID, p); err != nil {
			return nil, fmt.Errorf("seed organization %q providers: %w", of.Name, err)
		}
	}
	msg := "organization already exists"
	if created {
		msg = "created organization"
	}
	logger.InfoContext(ctx, msg, "name", org.Name, "organization_id", org.ID,
		"members", len(memberIDs), "invited", len(invitedIDs))
	return org, nil
}

func lookupIDs(orgName string, emails []string, userIDs map[string]string) ([]string, error) {
	ids := make([]string, 0, len(emails))
	for _, email := range emails {
		id, ok := userIDs[strings.ToLower(strings.TrimSpace(email))]
		if !ok {
			return nil, fmt.Errorf("seed organization %q: member %q is not a seeded user", orgName, email)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedSession(
	ctx context.Context,
	sessions SessionCreator,
	sf SessionFixture,
	userIDs map[string]string,
) (*domainauth.Session, error) {
	if sessions == nil {
		return nil, errors.New("devseed: session creator is required for session fixtures")
	}
	email := strings.ToLower(strings.TrimSpace(sf.Email))
	userID, ok := userIDs[email]
	if !ok {
		return nil, fmt.Errorf("seed session: %q is not a seeded user", sf.Email)
	}
	sess, err := sessions.CreateSession(ctx, service.CreateSessionInput{UserID: userID, Email: email, TTL: sf.TTL})
	if err != nil {
		return nil, fmt.Errorf("seed session: %w", err)
	}
	return sess, nil
}

func providers(t twofactor.ProviderType, d DuoFixture) twofactor.Providers {
	return twofactor.Providers{
		t: {
			Type:    t,
			Enabled: d.Enabled,
			Duo: twofactor.DuoMetadata{
				ClientID:     d.ClientID,
				ClientSecret: d.ClientSecret,
				Host:         d.Host,
			},
		},
	}
}
