package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medvault/internal/audit"
	"medvault/internal/clinical"
	"medvault/internal/gateway"
	"medvault/internal/identity"
	"medvault/internal/platform/metrics"
)

type fixture struct {
	identities *identity.InMemoryStore
	clinicals  *clinical.InMemoryStore
	auditLog   *audit.InMemoryStore
	gw         *gateway.Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		identities: identity.NewInMemoryStore(),
		clinicals:  clinical.NewInMemoryStore(),
		auditLog:   audit.NewInMemoryStore(),
	}
	f.gw = gateway.New(f.identities, f.clinicals, f.auditLog, zap.NewNop(), metrics.NewNop(), gateway.Config{})
	return f
}

func TestPopulate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := New(f.gw, 42).Populate(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.PatientsCreated)
	assert.GreaterOrEqual(t, summary.AccessEntries, 20, "every patient gets at least one access entry")

	identities, err := f.identities.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20-summary.IdentitiesErased, identities)

	clinicals, err := f.clinicals.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20, clinicals, "erasures never touch clinical records")

	auditTotal, err := f.auditLog.Count(ctx)
	require.NoError(t, err)
	// One create per patient, one per access, one per erasure.
	assert.EqualValues(t, 20+summary.AccessEntries+summary.IdentitiesErased, auditTotal)

	t.Run("seeded stores pass the integrity scan", func(t *testing.T) {
		warnings, err := f.gw.VerifyIntegrity(ctx)
		require.NoError(t, err)
		assert.Empty(t, warnings)
	})
}

func TestSeededClinicalCarriesNoIdentityPII(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := New(f.gw, 42).Populate(ctx, 30)
	require.NoError(t, err)

	identities, err := f.identities.List(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, identities)

	pii := make(map[string]bool)
	for _, id := range identities {
		for _, v := range []string{
			id.FirstName, id.LastName, id.Email, id.Phone,
			id.Address, id.City, id.State, id.ZipCode, id.Country,
			id.SSN, id.NationalID,
		} {
			if v != "" {
				pii[v] = true
			}
		}
	}

	for _, id := range identities {
		records, err := f.clinicals.ListByPseudonym(ctx, id.Pseudonym)
		require.NoError(t, err)
		require.Len(t, records, 1)

		rec := records[0]
		values := []string{
			rec.BloodType, rec.LastVisitDate, rec.NextAppointmentDate,
			rec.PrimaryPhysician, rec.InsuranceProvider, rec.PolicyNumber,
			rec.MedicalHistory, rec.VitalSigns.BloodPressure,
		}
		values = append(values, rec.Allergies...)
		values = append(values, rec.Medications...)
		values = append(values, rec.Diagnoses...)
		for _, v := range values {
			assert.False(t, pii[v], "clinical value %q also appears as identity PII", v)
		}
	}
}

func TestPopulateIsDeterministic(t *testing.T) {
	ctx := context.Background()

	first, err := New(newFixture(t).gw, 7).Populate(ctx, 15)
	require.NoError(t, err)
	second, err := New(newFixture(t).gw, 7).Populate(ctx, 15)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed must produce the same shape of data")
}
