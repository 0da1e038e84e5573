package data

import apperrors "github.com/target/duogate/internal/errors"

// Shared sentinel errors for data-layer repositories.
// The not-found sentinels are AppErrors so callers outside this package can use apperrors.IsNotFound.
var (
	ErrUserNotFound         error = apperrors.NotFound("user not found")
	ErrOrganizationNotFound error = apperrors.NotFound("organization not found")
	ErrEmailRequired        error = apperrors.ValidationField("email", "email is required")
	ErrNameRequired         error = apperrors.ValidationField("name", "organization name is required")
)
