package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medvault/internal/audit"
	"medvault/internal/clinical"
	"medvault/internal/identity"
	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
	"medvault/pkg/platform/sentinel"
)

// CreatePatient writes one identity record and one clinical record sharing a
// newly minted pseudonym. Any pseudonym already present on the inputs is
// discarded: minting happens here and nowhere else.
//
// The two writes are independent transactions. A failure after the identity
// write leaves an identity with no clinical counterpart; that state is valid
// on every read path and is reported by VerifyIntegrity.
func (g *Gateway) CreatePatient(ctx context.Context, id *identity.Record, clin *clinical.Record) (*CompositeRecord, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.CreatePatient")
	defer span.End()
	start := time.Now()
	defer g.observe("create_patient", start)

	if id == nil || clin == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity and clinical records are required")
	}
	// Reject bad clinical input up front: a validation failure after the
	// identity write would strand a PII row for no reason.
	if err := clin.ValidateInput(); err != nil {
		return nil, err
	}

	now := time.Now()
	if id.ID == "" {
		id.ID = uuid.New().String()
	}
	if clin.ID == "" {
		clin.ID = uuid.New().String()
	}
	id.CreatedAt, id.UpdatedAt = now, now
	clin.CreatedAt, clin.UpdatedAt = now, now

	if err := g.createIdentityWithPseudonym(ctx, id); err != nil {
		span.RecordError(err)
		g.auditMutation(ctx, audit.ActionCreate, audit.ResourceIdentity, id.ID, id.Pseudonym, id.Region, false, true, start, err)
		return nil, err
	}

	clin.Pseudonym = id.Pseudonym
	if err := clin.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := g.clinicals.Create(ctx, clin); err != nil {
		// The identity row stays behind: cross-store atomicity is out of
		// scope and the orphan state is recoverable.
		span.RecordError(err)
		g.log.Error("clinical write failed after identity write",
			zap.String("identity_id", id.ID),
			zap.String("pseudonym", id.Pseudonym.String()),
			zap.Error(err))
		g.auditMutation(ctx, audit.ActionCreate, audit.ResourceClinical, clin.ID, clin.Pseudonym, id.Region, true, false, start, err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "create clinical record")
	}

	g.metrics.PatientsCreated.Inc()
	g.log.Info("patient created",
		zap.String("identity_id", id.ID),
		zap.String("clinical_id", clin.ID),
		zap.String("region", id.Region.String()))

	g.auditMutation(ctx, audit.ActionCreate, audit.ResourceIdentity, id.ID, id.Pseudonym, id.Region, true, true, start, nil)

	return &CompositeRecord{Identity: id, Clinical: clin}, nil
}

// createIdentityWithPseudonym mints a pseudonym and inserts the identity,
// retrying on pseudonym collision up to the configured budget. A conflict on
// the record id itself is not retryable.
func (g *Gateway) createIdentityWithPseudonym(ctx context.Context, id *identity.Record) error {
	for attempt := 0; attempt < g.pseudonymRetries; attempt++ {
		pseudonym, err := domain.Mint()
		if err != nil {
			return err
		}
		id.Pseudonym = pseudonym

		if err := id.Validate(); err != nil {
			return err
		}

		err = g.identities.Create(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeStorage, "create identity record")
		}
		if _, findErr := g.identities.FindByID(ctx, id.ID); findErr == nil {
			return dErrors.Newf(dErrors.CodeInvalidInput, "identity id %q already exists", id.ID)
		}
		g.log.Warn("pseudonym collision, retrying",
			zap.String("identity_id", id.ID),
			zap.Int("attempt", attempt+1))
	}
	return dErrors.Newf(dErrors.CodeInvalidInput, "pseudonym collision retry budget (%d) exhausted", g.pseudonymRetries)
}

// GetIdentity returns the identity record by id. Audit policy for reads is
// left to the caller.
func (g *Gateway) GetIdentity(ctx context.Context, recordID string) (*identity.Record, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.GetIdentity")
	defer span.End()
	defer g.observe("get_identity", time.Now())

	record, err := g.identities.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "identity %q not found", recordID)
		}
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "find identity")
	}
	return record, nil
}

// GetClinical returns the clinical record for a pseudonym. It works whether
// or not an identity record still exists for that pseudonym; the
// post-erasure case is the point of the design. A duplicate pseudonym is
// resolved to the first record by creation order and surfaced as a warning.
func (g *Gateway) GetClinical(ctx context.Context, pseudonym domain.Pseudonym) (*clinical.Record, []IntegrityWarning, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.GetClinical")
	defer span.End()
	defer g.observe("get_clinical", time.Now())

	records, err := g.clinicals.ListByPseudonym(ctx, pseudonym)
	if err != nil {
		span.RecordError(err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeStorage, "find clinical record")
	}
	if len(records) == 0 {
		return nil, nil, dErrors.Newf(dErrors.CodeNotFound, "no clinical record for pseudonym %s", pseudonym)
	}

	var warnings []IntegrityWarning
	if len(records) > 1 {
		warnings = append(warnings, g.warn(WarningDuplicatePseudonym,
			"pseudonym "+pseudonym.String()+" matches more than one clinical record"))
	}
	return records[0], warnings, nil
}

// GetComposite resolves an identity by id, then its clinical record by
// pseudonym. Always the two-step id to pseudonym to clinical path, never a
// direct join. A missing identity is an error; a missing clinical record is
// not.
func (g *Gateway) GetComposite(ctx context.Context, recordID string) (*CompositeRecord, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.GetComposite")
	defer span.End()
	defer g.observe("get_composite", time.Now())

	id, err := g.GetIdentity(ctx, recordID)
	if err != nil {
		return nil, err
	}

	composite := &CompositeRecord{Identity: id}

	records, err := g.clinicals.ListByPseudonym(ctx, id.Pseudonym)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "find clinical record")
	}
	switch {
	case len(records) == 0:
		// Pre-visit or post-partial-create: identity with no clinical
		// counterpart is an expected state.
	case len(records) > 1:
		composite.Warnings = append(composite.Warnings, g.warn(WarningDuplicatePseudonym,
			"pseudonym "+id.Pseudonym.String()+" matches more than one clinical record"))
		fallthrough
	default:
		composite.Clinical = records[0]
	}
	return composite, nil
}

// UpdateIdentity applies the mutable subset to an identity record. The
// pseudonym cannot be expressed in an Update and the store's save path never
// writes the column, so pseudonym stability holds by construction.
func (g *Gateway) UpdateIdentity(ctx context.Context, recordID string, update identity.Update) (*identity.Record, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.UpdateIdentity")
	defer span.End()
	start := time.Now()
	defer g.observe("update_identity", start)

	record, err := g.GetIdentity(ctx, recordID)
	if err != nil {
		return nil, err
	}

	update.Apply(record, time.Now())
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := g.identities.Save(ctx, record); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "save identity")
	}

	action := audit.ActionUpdate
	if update.TouchesConsent() {
		action = audit.ActionConsentChange
	}
	g.auditMutation(ctx, action, audit.ResourceIdentity, record.ID, record.Pseudonym, record.Region, false, true, start, nil)
	return record, nil
}

// UpdateClinical applies the mutable subset to the clinical record for a
// pseudonym. Like every clinical path it needs no identity record to exist.
func (g *Gateway) UpdateClinical(ctx context.Context, pseudonym domain.Pseudonym, update clinical.Update) (*clinical.Record, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.UpdateClinical")
	defer span.End()
	start := time.Now()
	defer g.observe("update_clinical", start)

	record, _, err := g.GetClinical(ctx, pseudonym)
	if err != nil {
		return nil, err
	}

	update.Apply(record, time.Now())
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := g.clinicals.Save(ctx, record); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "save clinical record")
	}

	g.auditMutation(ctx, audit.ActionUpdate, audit.ResourceClinical, record.ID, record.Pseudonym, "", true, false, start, nil)
	return record, nil
}

// EraseIdentity deletes only the identity record, satisfying a data-subject
// erasure request. The clinical record and every audit entry referencing the
// pseudonym remain untouched. Erasing a missing record is a no-op, so the
// operation is idempotent.
func (g *Gateway) EraseIdentity(ctx context.Context, recordID string) error {
	ctx, span := g.tracer.Start(ctx, "gateway.EraseIdentity")
	defer span.End()
	start := time.Now()
	defer g.observe("erase_identity", start)

	// Read first so the audit entry can carry the pseudonym and region that
	// are about to disappear from the identity store.
	record, err := g.identities.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		span.RecordError(err)
		return dErrors.Wrap(err, dErrors.CodeStorage, "find identity for erasure")
	}

	deleted, err := g.identities.Delete(ctx, recordID)
	if err != nil {
		span.RecordError(err)
		g.auditMutation(ctx, audit.ActionErasure, audit.ResourceIdentity, recordID, record.Pseudonym, record.Region, false, true, start, err)
		return dErrors.Wrap(err, dErrors.CodeStorage, "delete identity")
	}
	if !deleted {
		return nil
	}

	g.metrics.IdentitiesErased.Inc()
	g.log.Info("identity erased",
		zap.String("identity_id", recordID),
		zap.String("region", record.Region.String()))
	g.auditMutation(ctx, audit.ActionErasure, audit.ResourceIdentity, recordID, record.Pseudonym, record.Region, false, true, start, nil)
	return nil
}

// ListIdentities exposes a bounded listing for the presentation layer.
func (g *Gateway) ListIdentities(ctx context.Context, limit int) ([]*identity.Record, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.ListIdentities")
	defer span.End()
	defer g.observe("list_identities", time.Now())

	records, err := g.identities.List(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "list identities")
	}
	return records, nil
}

func (g *Gateway) observe(operation string, start time.Time) {
	g.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
