// Package store is the PostgreSQL content store. Every write is a single
// statement and every aggregate is derived from situation_rating on read.
package store

import (
	"context"
	_ "embed"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/WWJD/apperrors"
)

//go:embed schema.sql
var schema string

const foreignKeyViolation = "23503"

type Store struct {
	db *goqu.Database
}

func New(db *goqu.Database) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema. All statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.Persistence("migrate", err)
	}
	return nil
}

// wrap maps a driver error to the application error taxonomy. Foreign key
// violations mean the referenced row does not exist.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return apperrors.ErrNotFound
	}
	return apperrors.Persistence(op, err)
}

// nullable turns a nil pointer into an untyped nil so goqu renders NULL.
func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
