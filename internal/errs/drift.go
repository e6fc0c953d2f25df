package errs

import (
	"errors"
	"strings"
)

// SchemaDriftError marks a write rejected because the remote table is
// missing a column the client tried to send. The store recovers by
// retrying with a smaller column tier; the error is never surfaced to
// users unless every tier is exhausted.
type SchemaDriftError struct {
	Column     string // offending column when the backend names it, else ""
	Underlying error
}

func (e *SchemaDriftError) Error() string {
	if e.Column != "" {
		return "schema drift: unknown column " + e.Column + ": " + e.Underlying.Error()
	}
	return "schema drift: " + e.Underlying.Error()
}

func (e *SchemaDriftError) Unwrap() error { return e.Underlying }

// Error codes emitted for unknown columns: PostgREST uses PGRST204,
// Postgres reports SQLSTATE 42703 (undefined_column).
const (
	postgrestUnknownColumn = "PGRST204"
	pgUndefinedColumn      = "42703"
)

// IsSchemaDrift reports whether err indicates the remote schema lacks a
// column the client sent.
func IsSchemaDrift(err error) bool {
	var drift *SchemaDriftError
	if errors.As(err, &drift) {
		return true
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return strings.Contains(classified.Body, postgrestUnknownColumn) ||
			strings.Contains(classified.Body, pgUndefinedColumn)
	}
	return false
}

// DriftBody reports whether a raw response body carries an
// unknown-column error code.
func DriftBody(body string) bool {
	return strings.Contains(body, postgrestUnknownColumn) || strings.Contains(body, pgUndefinedColumn)
}
