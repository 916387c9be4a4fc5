// Package gateway is the sole authorized access path to the three stores.
// It owns the identity, clinical, and audit handles for its process
// lifetime, performs the pseudonym join, and emits audit entries for
// mutations when the caller is known.
//
// Callers never address a store directly: the separation invariant (no
// direct identifier shared between the identity and clinical stores) is only
// as strong as this chokepoint.
package gateway

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"medvault/internal/audit"
	"medvault/internal/clinical"
	"medvault/internal/identity"
	"medvault/internal/platform/metrics"
)

// Config tunes gateway behavior. Zero values fall back to defaults.
type Config struct {
	// PseudonymRetries bounds collision retries when minting a pseudonym.
	PseudonymRetries int

	// AuditQueryLimit caps audit queries that do not set their own limit.
	AuditQueryLimit int
}

const (
	defaultPseudonymRetries = 5
	defaultAuditQueryLimit  = 1000
)

// Gateway mediates all access to the three stores.
type Gateway struct {
	identities identity.Store
	clinicals  clinical.Store
	auditLog   audit.Store

	log     *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	pseudonymRetries int
	auditQueryLimit  int
}

// New wires a gateway around the three store handles. The gateway takes
// ownership: Close releases all of them.
func New(identities identity.Store, clinicals clinical.Store, auditLog audit.Store, log *zap.Logger, m *metrics.Metrics, cfg Config) *Gateway {
	if cfg.PseudonymRetries <= 0 {
		cfg.PseudonymRetries = defaultPseudonymRetries
	}
	if cfg.AuditQueryLimit <= 0 {
		cfg.AuditQueryLimit = defaultAuditQueryLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Gateway{
		identities:       identities,
		clinicals:        clinicals,
		auditLog:         auditLog,
		log:              log,
		metrics:          m,
		tracer:           otel.Tracer("medvault/gateway"),
		pseudonymRetries: cfg.PseudonymRetries,
		auditQueryLimit:  cfg.AuditQueryLimit,
	}
}

// Close releases all three store handles. Every handle is closed even when
// an earlier one fails; errors are joined.
func (g *Gateway) Close() error {
	err := errors.Join(
		g.identities.Close(),
		g.clinicals.Close(),
		g.auditLog.Close(),
	)
	if err != nil {
		g.log.Error("store shutdown incomplete", zap.Error(err))
		return err
	}
	g.log.Info("stores closed")
	return nil
}

// IntegrityWarning is a non-fatal anomaly surfaced on read paths. It never
// aborts the operation that detected it.
type IntegrityWarning struct {
	Kind   string
	Detail string
}

// Warning kinds.
const (
	WarningDuplicatePseudonym = "duplicate_pseudonym"
	WarningOrphanIdentity     = "orphan_identity"
)

// CompositeRecord is the merged read model returned by GetComposite.
// Clinical is nil when no clinical record exists for the identity's
// pseudonym, the expected state before a first visit or after a partial
// create; not an error.
type CompositeRecord struct {
	Identity *identity.Record
	Clinical *clinical.Record
	Warnings []IntegrityWarning
}

func (g *Gateway) warn(kind, detail string) IntegrityWarning {
	g.metrics.IntegrityWarnings.WithLabelValues(kind).Inc()
	g.log.Warn("integrity anomaly", zap.String("kind", kind), zap.String("detail", detail))
	return IntegrityWarning{Kind: kind, Detail: detail}
}
