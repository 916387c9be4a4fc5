package clinical

import (
	"context"

	"medvault/pkg/domain"
)

// Store persists clinical records. Lookup is by pseudonym only; there is no
// identity-keyed path, which is what keeps the two-step join honest.
//
// ListByPseudonym returns records ordered by creation time. Pseudonyms are
// unique in practice, so more than one result signals an integrity anomaly
// that the gateway surfaces as a warning.
type Store interface {
	Create(ctx context.Context, record *Record) error
	ListByPseudonym(ctx context.Context, pseudonym domain.Pseudonym) ([]*Record, error)
	Save(ctx context.Context, record *Record) error
	Count(ctx context.Context) (int64, error)
	Close() error
}
