package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/target/duogate/internal/data/cryptoutil"
	"github.com/target/duogate/internal/data/pgxutil"
	"github.com/target/duogate/internal/domain/twofactor"
	apperrors "github.com/target/duogate/internal/errors"
	"github.com/target/duogate/internal/ports"
)

var _ ports.OrganizationRepository = (*OrganizationRepo)(nil)

// OrganizationRepo loads and stores organizations and their memberships.
type OrganizationRepo struct {
	DB  *sql.DB
	col providerColumn
	now func() time.Time
}

// OrganizationRepoOptions groups dependencies for OrganizationRepo.
type OrganizationRepoOptions struct {
	DB  *sql.DB
	Enc cryptoutil.Encryptor
	Now func() time.Time // Optional, defaults to time.Now
}

// NewOrganizationRepo creates a new OrganizationRepo.
func NewOrganizationRepo(opts OrganizationRepoOptions) *OrganizationRepo {
	if opts.DB == nil || opts.Enc == nil {
		panic("data: OrganizationRepo requires DB and Enc")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &OrganizationRepo{DB: opts.DB, col: providerColumn{enc: opts.Enc}, now: now}
}

type organizationRow struct {
	ID              string  `db:"id"`
	Name            string  `db:"name"`
	Enabled         bool    `db:"enabled"`
	Use2FA          bool    `db:"use_2fa"`
	UsersGetPremium bool    `db:"users_get_premium"`
	Providers       *string `db:"two_factor_providers"`
}

const organizationColumns = `o.id::text AS id, o.name, o.enabled, o.use_2fa, o.users_get_premium, o.two_factor_providers`

// CreateOrganizationRequest carries fields for a new organization.
// MemberIDs join as confirmed members.
type CreateOrganizationRequest struct {
	Name            string
	Enabled         bool
	Use2FA          bool
	UsersGetPremium bool
	MemberIDs       []string
}

// GetByID returns the organization with id, or ErrOrganizationNotFound.
func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*twofactor.Organization, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrganizationNotFound
	}
	return r.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations o WHERE o.id = $1`, id)
}

// GetByName returns the oldest organization named name, or ErrOrganizationNotFound.
func (r *OrganizationRepo) GetByName(ctx context.Context, name string) (*twofactor.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return r.getOne(ctx,
		`SELECT `+organizationColumns+` FROM organizations o WHERE o.name = $1 ORDER BY o.created_at, o.id LIMIT 1`, name)
}

// GetForMember returns the organization only when userID is one of its confirmed members.
func (r *OrganizationRepo) GetForMember(ctx context.Context, orgID, userID string) (*twofactor.Organization, error) {
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, ErrOrganizationNotFound
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrOrganizationNotFound
	}
	return r.getOne(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations o
		JOIN organization_users ou ON ou.organization_id = o.id
		WHERE o.id = $1 AND ou.user_id = $2 AND ou.status = $3`, orgID, userID, string(twofactor.MembershipConfirmed))
}

func (r *OrganizationRepo) getOne(ctx context.Context, query string, args ...any) (*twofactor.Organization, error) {
	row, err := pgxutil.CollectOne[organizationRow](ctx, r.DB, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", apperrors.MapDBError(err))
	}
	providers, err := r.col.decode(row.Providers)
	if err != nil {
		return nil, fmt.Errorf("organization %s: %w", row.ID, err)
	}
	return &twofactor.Organization{
		ID:              row.ID,
		Name:            row.Name,
		Enabled:         row.Enabled,
		Use2FA:          row.Use2FA,
		UsersGetPremium: row.UsersGetPremium,
		Providers:       providers,
	}, nil
}

// Create inserts a new organization together with its initial members.
func (r *OrganizationRepo) Create(ctx context.Context, req CreateOrganizationRequest) (*twofactor.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	org := &twofactor.Organization{
		ID:              uuid.NewString(),
		Name:            name,
		Enabled:         req.Enabled,
		Use2FA:          req.Use2FA,
		UsersGetPremium: req.UsersGetPremium,
		Providers:       twofactor.Providers{},
	}
	now := r.now().UTC()
	err := pgxutil.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO organizations (id, name, enabled, use_2fa, users_get_premium, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			org.ID, org.Name, org.Enabled, org.Use2FA, org.UsersGetPremium, now); err != nil {
			return err
		}
		for _, userID := range req.MemberIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO organization_users (organization_id, user_id, status, created_at) VALUES ($1, $2, $3, $4)
				ON CONFLICT (organization_id, user_id) DO NOTHING`, org.ID, userID, string(twofactor.MembershipConfirmed), now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", apperrors.MapDBError(err))
	}
	return org, nil
}

// AddMember links userID to orgID with status. For an existing member only the status changes.
func (r *OrganizationRepo) AddMember(ctx context.Context, orgID, userID string, status twofactor.MembershipStatus) error {
	if !status.Valid() {
		return apperrors.ValidationField("status", fmt.Sprintf("unknown membership status %q", status))
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO organization_users (organization_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET status = EXCLUDED.status`,
		orgID, userID, string(status), r.now().UTC())
	if err != nil {
		return fmt.Errorf("add organization member: %w", apperrors.MapDBError(err))
	}
	return nil
}

// SetTwoFactorProviders replaces the organization's stored provider configuration.
func (r *OrganizationRepo) SetTwoFactorProviders(ctx context.Context, id string, p twofactor.Providers) error {
	stored, err := r.col.encode(p)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE organizations SET two_factor_providers = $2, updated_at = $3 WHERE id = $1`, id, stored, r.now().UTC())
	if err != nil {
		return fmt.Errorf("set organization providers: %w", apperrors.MapDBError(err))
	}
	return requireOneRow(res, ErrOrganizationNotFound)
}
