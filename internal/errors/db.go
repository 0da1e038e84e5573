package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// detailKey matches the column list in `Key (email)=(a@example.com) already exists.`.
var detailKey = regexp.MustCompile(`Key \(([^)]+)\)=`)

type pgMapping struct {
	code    ErrorCode
	message string
}

var pgMappings = map[string]pgMapping{
	pgerrcode.UniqueViolation:      {ErrCodeConflict, "already exists"},
	pgerrcode.ForeignKeyViolation:  {ErrCodeForeignKey, "referenced record does not exist"},
	pgerrcode.CheckViolation:       {ErrCodeValidation, "invalid value"},
	pgerrcode.NotNullViolation:     {ErrCodeValidation, "missing required value"},
	pgerrcode.SerializationFailure: {ErrCodeConflict, "concurrent update, retry"},
	pgerrcode.DeadlockDetected:     {ErrCodeConflict, "concurrent update, retry"},
	pgerrcode.QueryCanceled:        {ErrCodeTimeout, "query canceled"},
}

// MapDBError categorizes database errors for the repositories.
//
// Context errors become Timeout or Canceled, pgx.ErrNoRows becomes NotFound and
// Postgres errors are mapped by SQLSTATE; unmapped SQLSTATEs are Internal.
// Anything else is returned unchanged.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "database deadline exceeded")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "database call canceled")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "record not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	m, ok := pgMappings[pgErr.Code]
	if !ok {
		return Wrap(err, ErrCodeInternal, "database error "+pgErr.Code)
	}

	appErr := Wrap(err, m.code, m.message)
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		appErr.Field = uniqueField(pgErr)
	case pgerrcode.ForeignKeyViolation:
		appErr.Field = referencedColumn(pgErr.ConstraintName)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		appErr.Field = pgErr.ColumnName
	}
	return appErr
}

func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := detailKey.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	// Postgres default naming: <table>_<column>_key. Only single-word tables are unambiguous.
	parts := strings.Split(pgErr.ConstraintName, "_")
	if len(parts) == 3 && parts[2] == "key" {
		return parts[1]
	}
	return ""
}

// referencedColumn reads the column out of a default "<table>_<column>_fkey" name.
func referencedColumn(constraint string) string {
	for _, col := range []string{"organization_id", "user_id"} {
		if strings.HasSuffix(constraint, "_"+col+"_fkey") {
			return col
		}
	}
	return ""
}
