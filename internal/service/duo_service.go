package service

import (
	"context"
	"fmt"

	"github.com/target/duogate/internal/domain/twofactor"
	"github.com/target/duogate/internal/ports"
)

// DuoRepositories groups the principal lookups DuoService needs.
type DuoRepositories struct {
	Users         ports.UserRepository         // Required
	Organizations ports.OrganizationRepository // Required
}

// DuoServiceOptions groups dependencies for DuoService.
type DuoServiceOptions struct {
	Repos        DuoRepositories
	User         *UserProvider         // Required
	Organization *OrganizationProvider // Required
}

// DuoService loads principals by ID and runs the matching Duo façade.
// Unknown users, and organizations the user is not a member of, surface as the repositories' not-found errors.
type DuoService struct {
	users ports.UserRepository
	orgs  ports.OrganizationRepository
	user  *UserProvider
	org   *OrganizationProvider
}

// NewDuoService constructs a DuoService.
func NewDuoService(opts DuoServiceOptions) *DuoService {
	if opts.Repos.Users == nil || opts.Repos.Organizations == nil {
		panic("UserRepository and OrganizationRepository are required")
	}
	if opts.User == nil || opts.Organization == nil {
		panic("UserProvider and OrganizationProvider are required")
	}
	return &DuoService{
		users: opts.Repos.Users,
		orgs:  opts.Repos.Organizations,
		user:  opts.User,
		org:   opts.Organization,
	}
}

func (s *DuoService) loadUser(ctx context.Context, userID string) (*twofactor.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *DuoService) loadMembership(
	ctx context.Context,
	orgID, userID string,
) (*twofactor.Organization, *twofactor.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	org, err := s.orgs.GetForMember(ctx, orgID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load organization: %w", err)
	}
	return org, user, nil
}

// UserAvailable reports whether the user can start a Duo attempt.
func (s *DuoService) UserAvailable(ctx context.Context, userID string) (bool, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.user.CanGenerateToken(ctx, user)
}

// UserAuthorize generates the authorization URL for the user's own Duo configuration.
func (s *DuoService) UserAuthorize(ctx context.Context, userID string) (twofactor.GenerateResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return twofactor.GenerateResult{}, err
	}
	return s.user.Generate(ctx, user)
}

// UserValidate validates a callback payload against the user's own Duo configuration.
func (s *DuoService) UserValidate(ctx context.Context, userID, payload string) (twofactor.ValidateResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return twofactor.ValidateResult{}, err
	}
	return s.user.Validate(ctx, user, payload)
}

// OrganizationAvailable reports whether the organization enforces a usable Duo configuration.
func (s *DuoService) OrganizationAvailable(ctx context.Context, orgID, userID string) (bool, error) {
	org, _, err := s.loadMembership(ctx, orgID, userID)
	if err != nil {
		return false, err
	}
	return s.org.CanGenerateToken(ctx, org)
}

// OrganizationAuthorize generates the authorization URL under the organization's Duo policy.
func (s *DuoService) OrganizationAuthorize(ctx context.Context, orgID, userID string) (twofactor.GenerateResult, error) {
	org, user, err := s.loadMembership(ctx, orgID, userID)
	if err != nil {
		return twofactor.GenerateResult{}, err
	}
	return s.org.Generate(ctx, org, user)
}

// OrganizationValidate validates a callback payload under the organization's Duo policy.
func (s *DuoService) OrganizationValidate(
	ctx context.Context,
	orgID, userID, payload string,
) (twofactor.ValidateResult, error) {
	org, user, err := s.loadMembership(ctx, orgID, userID)
	if err != nil {
		return twofactor.ValidateResult{}, err
	}
	return s.org.Validate(ctx, org, user, payload)
}
