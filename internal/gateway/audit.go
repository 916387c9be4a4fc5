package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medvault/internal/audit"
	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
	"medvault/pkg/requestcontext"
)

// RecordAudit appends one immutable entry to the audit log. Missing id and
// timestamp are filled in; everything else must satisfy the attributability
// contract or the entry is rejected and nothing is written.
func (g *Gateway) RecordAudit(ctx context.Context, entry *audit.Entry) error {
	ctx, span := g.tracer.Start(ctx, "gateway.RecordAudit")
	defer span.End()
	defer g.observe("record_audit", time.Now())

	if entry == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "audit entry is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	if err := g.auditLog.Append(ctx, entry); err != nil {
		span.RecordError(err)
		return dErrors.Wrap(err, dErrors.CodeStorage, "append audit entry")
	}
	g.metrics.AuditAppended.Inc()
	return nil
}

// QueryAudit returns entries matching the filter, newest first. An empty
// filter returns the full history bounded by the configured cap.
func (g *Gateway) QueryAudit(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.QueryAudit")
	defer span.End()
	defer g.observe("query_audit", time.Now())

	if filter.Limit <= 0 || filter.Limit > g.auditQueryLimit {
		filter.Limit = g.auditQueryLimit
	}
	entries, err := g.auditLog.Query(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "query audit entries")
	}
	return entries, nil
}

// auditMutation records a mutation against a store when the caller attached
// an actor to the context. Callers without an actor (e.g. internal
// maintenance) produce no entry; audit policy for those paths belongs to
// them. An audit write failure is logged, never propagated: the mutation
// already happened and must not be reported as failed.
func (g *Gateway) auditMutation(ctx context.Context, action audit.Action, resourceType, resourceID string, pseudonym domain.Pseudonym, region domain.Region, phi, pii bool, start time.Time, opErr error) {
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		return
	}

	entry := &audit.Entry{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Pseudonym:    pseudonym,
		UserID:       actor.UserID,
		UserRole:     actor.UserRole,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Purpose:      actor.Purpose,
		ContainsPHI:  phi,
		ContainsPII:  pii,
		Region:       region,
		Success:      opErr == nil,
		Duration:     time.Since(start),
	}
	if opErr != nil {
		entry.ErrorMessage = opErr.Error()
	}

	if err := entry.Validate(); err != nil {
		g.log.Warn("skipping unattributable audit entry", zap.Error(err))
		return
	}
	if err := g.auditLog.Append(ctx, entry); err != nil {
		g.log.Error("audit append failed",
			zap.String("action", action.String()),
			zap.String("resource_id", resourceID),
			zap.Error(err))
		return
	}
	g.metrics.AuditAppended.Inc()
}
