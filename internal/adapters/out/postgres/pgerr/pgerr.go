// Package pgerr maps database driver errors onto the dispatch error taxonomy.
package pgerr

import (
	"context"
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes and classes Wrap tells apart.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	classConnection          = "08"
	classResources           = "53"
	classOperatorIntervened  = "57"
)

// Wrap classifies err. Context errors pass through unchanged so callers can tell a
// deadline from a broken store. Statement errors the server rejected on their merits
// are returned as is; everything else is a *errs.StoreUnavailableError.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return errors.Join(errs.ErrDuplicateKey, err)
		case pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			strings.HasPrefix(pgErr.Code, classConnection),
			strings.HasPrefix(pgErr.Code, classResources),
			strings.HasPrefix(pgErr.Code, classOperatorIntervened):
			return errs.NewStoreUnavailableError(op, err)
		default:
			return err
		}
	}

	return errs.NewStoreUnavailableError(op, err)
}
