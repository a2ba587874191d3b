// Package repository implements the songboard storage on PostgreSQL.
package repository

import (
	"errors"

	"github.com/jackc/pgconn"
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name when err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

type scanner interface {
	Scan(dest ...any) error
}
