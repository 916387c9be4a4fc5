package identity

import (
	"context"

	"medvault/pkg/domain"
)

// Store persists identity records. Implementations return sentinel.ErrNotFound
// for missing records and sentinel.ErrConflict for unique-index violations
// (duplicate id or pseudonym); the gateway translates both into domain errors.
type Store interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, record *Record) error
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes the record by id. Deleting a missing record is not an
	// error; the bool reports whether a row was actually removed.
	Delete(ctx context.Context, id string) (bool, error)

	Count(ctx context.Context) (int64, error)
	CountByRegion(ctx context.Context) (map[domain.Region]int64, error)

	Close() error
}
