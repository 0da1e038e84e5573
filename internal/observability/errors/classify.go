// Package errors turns arbitrary errors into short, bounded labels for metric tags.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/target/duogate/internal/errors"
)

// Classify returns a normalized error class suitable for tagging metrics and logs.
//
// Known causes get stable names: context errors, network timeouts, Postgres
// SQLSTATE codes and application error codes. Anything else is named after the
// innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if goerrors.Is(err, context.Canceled) {
		return "context_canceled"
	}
	if goerrors.Is(err, context.DeadlineExceeded) {
		return "deadline_exceeded"
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return "net_timeout"
	}
	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return "pg_" + pgErr.Code
	}
	if code := apperrors.GetCode(err); code != "" {
		return "app_" + string(code)
	}
	return typeName(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}
