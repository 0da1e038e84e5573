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

var (
	_ ports.UserRepository = (*UserRepo)(nil)
	_ ports.PremiumChecker = (*UserRepo)(nil)
)

// UserRepo loads and stores users with their encrypted provider configuration.
type UserRepo struct {
	DB  *sql.DB
	col providerColumn
	now func() time.Time
}

// UserRepoOptions groups dependencies for UserRepo.
type UserRepoOptions struct {
	DB  *sql.DB
	Enc cryptoutil.Encryptor
	Now func() time.Time // Optional, defaults to time.Now
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(opts UserRepoOptions) *UserRepo {
	if opts.DB == nil || opts.Enc == nil {
		panic("data: UserRepo requires DB and Enc")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &UserRepo{DB: opts.DB, col: providerColumn{enc: opts.Enc}, now: now}
}

type userRow struct {
	ID        string  `db:"id"`
	Email     string  `db:"email"`
	Premium   bool    `db:"premium"`
	Providers *string `db:"two_factor_providers"`
}

// CreateUserRequest carries fields for a new user.
type CreateUserRequest struct {
	Email   string
	Premium bool
}

// GetByID returns the user with id, or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*twofactor.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user registered under email, or ErrUserNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*twofactor.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

const userColumns = `id::text AS id, email, premium, two_factor_providers`

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*twofactor.User, error) {
	row, err := pgxutil.CollectOne[userRow](ctx, r.DB, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", apperrors.MapDBError(err))
	}
	return r.toDomain(row)
}

func (r *UserRepo) toDomain(row userRow) (*twofactor.User, error) {
	providers, err := r.col.decode(row.Providers)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", row.ID, err)
	}
	return &twofactor.User{ID: row.ID, Email: row.Email, Premium: row.Premium, Providers: providers}, nil
}

// Create inserts a new user and returns it.
func (r *UserRepo) Create(ctx context.Context, req CreateUserRequest) (*twofactor.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	user := &twofactor.User{ID: uuid.NewString(), Email: email, Premium: req.Premium, Providers: twofactor.Providers{}}
	now := r.now().UTC()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, premium, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		user.ID, user.Email, user.Premium, now)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", apperrors.MapDBError(err))
	}
	return user, nil
}

// SetTwoFactorProviders replaces the user's stored provider configuration.
func (r *UserRepo) SetTwoFactorProviders(ctx context.Context, id string, p twofactor.Providers) error {
	stored, err := r.col.encode(p)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET two_factor_providers = $2, updated_at = $3 WHERE id = $1`, id, stored, r.now().UTC())
	if err != nil {
		return fmt.Errorf("set user providers: %w", apperrors.MapDBError(err))
	}
	return requireOneRow(res, ErrUserNotFound)
}

// CanAccessPremium reports whether user holds premium directly or as a confirmed
// member of an enabled organization that grants premium to its members.
func (r *UserRepo) CanAccessPremium(ctx context.Context, user twofactor.User) (bool, error) {
	if user.Premium {
		return true, nil
	}
	var ok bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM organization_users ou
			JOIN organizations o ON o.id = ou.organization_id
			WHERE ou.user_id = $1 AND ou.status = $2 AND o.enabled AND o.users_get_premium
		)`, user.ID, string(twofactor.MembershipConfirmed)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check premium access: %w", apperrors.MapDBError(err))
	}
	return ok, nil
}

func requireOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
