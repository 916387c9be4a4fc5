package audit

import "context"

// Store is the append-only audit log. The interface deliberately exposes no
// update or delete: immutability is a property of the contract, not a
// runtime check.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
