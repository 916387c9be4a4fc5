package identity

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medvault/pkg/domain"
	"medvault/pkg/platform/sentinel"
)

// storeUnderTest runs the same contract against every implementation.
func storeUnderTest(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, NewInMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := OpenSQLite(filepath.Join(t.TempDir(), "identity.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})
}

func testRecord(id, pseudonym string) *Record {
	now := time.Now().UTC().Truncate(time.Second)
	return &Record{
		ID:           id,
		Pseudonym:    domain.Pseudonym(pseudonym),
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        id + "@example.org",
		Phone:        "+1-555-0100",
		Address:      "1 Main St",
		City:         "Portland",
		State:        "OR",
		ZipCode:      "97201",
		Country:      "USA",
		Region:       domain.RegionUS,
		DateOfBirth:  "1985-04-12",
		SSN:          "078-05-1120",
		ConsentGiven: true,
		ConsentDate:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestStore_CreateAndFind(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		record := testRecord("patient-1", "PSN-AAAA00000001")
		require.NoError(t, store.Create(ctx, record))

		got, err := store.FindByID(ctx, "patient-1")
		require.NoError(t, err)
		assert.Equal(t, record.Pseudonym, got.Pseudonym)
		assert.Equal(t, record.FirstName, got.FirstName)
		assert.Equal(t, record.Email, got.Email)
		assert.Equal(t, record.Region, got.Region)
		assert.Equal(t, record.DateOfBirth, got.DateOfBirth)
		assert.Equal(t, record.SSN, got.SSN)
		assert.True(t, got.ConsentGiven)
		assert.WithinDuration(t, record.ConsentDate, got.ConsentDate, time.Second)
	})
}

func TestStore_UniquenessConstraints(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, testRecord("patient-1", "PSN-AAAA00000001")))

		t.Run("duplicate id conflicts", func(t *testing.T) {
			err := store.Create(ctx, testRecord("patient-1", "PSN-AAAA00000002"))
			assert.ErrorIs(t, err, sentinel.ErrConflict)
		})

		t.Run("duplicate pseudonym conflicts", func(t *testing.T) {
			err := store.Create(ctx, testRecord("patient-2", "PSN-AAAA00000001"))
			assert.ErrorIs(t, err, sentinel.ErrConflict)
		})
	})
}

func TestStore_FindMissing(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		_, err := store.FindByID(context.Background(), "no-such-patient")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStore_SaveNeverRewritesPseudonym(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		record := testRecord("patient-1", "PSN-AAAA00000001")
		require.NoError(t, store.Create(ctx, record))

		modified := *record
		modified.Email = "moved@example.org"
		modified.Pseudonym = "PSN-ZZZZ99999999"
		require.NoError(t, store.Save(ctx, &modified))

		got, err := store.FindByID(ctx, "patient-1")
		require.NoError(t, err)
		assert.Equal(t, "moved@example.org", got.Email)
		assert.Equal(t, domain.Pseudonym("PSN-AAAA00000001"), got.Pseudonym,
			"stored pseudonym must survive any save")
	})
}

func TestStore_SaveMissing(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		err := store.Save(context.Background(), testRecord("ghost", "PSN-AAAA00000009"))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestStore_Delete(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, testRecord("patient-1", "PSN-AAAA00000001")))

		deleted, err := store.Delete(ctx, "patient-1")
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = store.FindByID(ctx, "patient-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		t.Run("second delete reports nothing removed", func(t *testing.T) {
			deleted, err := store.Delete(ctx, "patient-1")
			require.NoError(t, err)
			assert.False(t, deleted)
		})

		t.Run("pseudonym is reusable after delete", func(t *testing.T) {
			assert.NoError(t, store.Create(ctx, testRecord("patient-2", "PSN-AAAA00000001")))
		})
	})
}

func TestStore_ListAndCounts(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 5; i++ {
			record := testRecord(fmt.Sprintf("patient-%d", i), fmt.Sprintf("PSN-AAAA0000000%d", i))
			record.CreatedAt = base.Add(time.Duration(i) * time.Second)
			if i%2 == 1 {
				record.Region = domain.RegionEU
			}
			require.NoError(t, store.Create(ctx, record))
		}

		records, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, records, 5)
		for i := 1; i < len(records); i++ {
			assert.False(t, records[i].CreatedAt.Before(records[i-1].CreatedAt),
				"listing must be ordered by creation time")
		}

		limited, err := store.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
		assert.Equal(t, "patient-0", limited[0].ID)

		total, err := store.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)

		byRegion, err := store.CountByRegion(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, byRegion[domain.RegionUS])
		assert.EqualValues(t, 2, byRegion[domain.RegionEU])
	})
}
