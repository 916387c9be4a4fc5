package gateway

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
)

// Statistics is computed from current store contents on every call. Nothing
// here is cached: a count observed after an erasure reflects the erasure.
type Statistics struct {
	Identity IdentityStats
	Clinical ClinicalStats
	Audit    AuditStats
}

type IdentityStats struct {
	Total    int64
	ByRegion map[domain.Region]int64
}

type ClinicalStats struct {
	Total int64
}

type AuditStats struct {
	Total int64
}

// Statistics fans the three counts out concurrently; the stores are
// independent and reads never block each other under the single-writer
// model.
func (g *Gateway) Statistics(ctx context.Context) (Statistics, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.Statistics")
	defer span.End()
	defer g.observe("statistics", time.Now())

	var stats Statistics
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		total, err := g.identities.Count(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "count identities")
		}
		byRegion, err := g.identities.CountByRegion(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "count identities by region")
		}
		// Report every supported region, including empty ones.
		for _, region := range domain.Regions() {
			if _, ok := byRegion[region]; !ok {
				byRegion[region] = 0
			}
		}
		stats.Identity = IdentityStats{Total: total, ByRegion: byRegion}
		return nil
	})
	eg.Go(func() error {
		total, err := g.clinicals.Count(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "count clinical records")
		}
		stats.Clinical = ClinicalStats{Total: total}
		return nil
	})
	eg.Go(func() error {
		total, err := g.auditLog.Count(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "count audit entries")
		}
		stats.Audit = AuditStats{Total: total}
		return nil
	})

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return Statistics{}, err
	}
	return stats, nil
}

// VerifyIntegrity scans for cross-store anomalies and reports them as
// warnings. It is purely diagnostic: nothing is repaired or deleted, and an
// empty result means the pseudonym graph is consistent.
//
// Detected kinds:
//   - duplicate_pseudonym: more than one clinical record for one pseudonym
//   - orphan_identity: identity whose pseudonym has no clinical record,
//     e.g. after a crash between the two writes of CreatePatient
func (g *Gateway) VerifyIntegrity(ctx context.Context) ([]IntegrityWarning, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.VerifyIntegrity")
	defer span.End()
	defer g.observe("verify_integrity", time.Now())

	identities, err := g.identities.List(ctx, 0)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "list identities")
	}

	var warnings []IntegrityWarning
	for _, id := range identities {
		records, err := g.clinicals.ListByPseudonym(ctx, id.Pseudonym)
		if err != nil {
			span.RecordError(err)
			return nil, dErrors.Wrap(err, dErrors.CodeStorage, "list clinical records")
		}
		switch {
		case len(records) == 0:
			warnings = append(warnings, g.warn(WarningOrphanIdentity,
				"identity "+id.ID+" has no clinical record for its pseudonym"))
		case len(records) > 1:
			warnings = append(warnings, g.warn(WarningDuplicatePseudonym,
				"pseudonym "+id.Pseudonym.String()+" matches more than one clinical record"))
		}
	}
	return warnings, nil
}
