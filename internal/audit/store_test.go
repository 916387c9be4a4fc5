package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medvault/pkg/domain"
)

func storeUnderTest(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, NewInMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})
}

func testEntry(id string, ts time.Time) *Entry {
	return &Entry{
		ID:           id,
		Timestamp:    ts,
		Action:       ActionAccess,
		ResourceType: ResourceClinical,
		ResourceID:   "clin-1",
		Pseudonym:    "PSN-CCCC00000001",
		UserID:       "dr-chen",
		UserRole:     "physician",
		IPAddress:    "10.0.0.5",
		UserAgent:    "emr/1.0",
		Purpose:      "treatment",
		ContainsPHI:  true,
		Region:       domain.RegionUS,
		Success:      true,
		Duration:     12 * time.Millisecond,
	}
}

func TestStore_AppendAndQuery(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		entry := testEntry("entry-1", time.Now().UTC().Truncate(time.Second))
		require.NoError(t, store.Append(ctx, entry))

		entries, err := store.Query(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, entries, 1)

		got := entries[0]
		assert.Equal(t, ActionAccess, got.Action)
		assert.Equal(t, "dr-chen", got.UserID)
		assert.Equal(t, "treatment", got.Purpose)
		assert.True(t, got.ContainsPHI)
		assert.True(t, got.Success)
		assert.Equal(t, 12*time.Millisecond, got.Duration)
	})
}

func TestStore_QueryOrdersNewestFirst(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 5; i++ {
			require.NoError(t, store.Append(ctx, testEntry(fmt.Sprintf("entry-%d", i), base.Add(time.Duration(i)*time.Second))))
		}

		entries, err := store.Query(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, entries, 5)
		for i := 1; i < len(entries); i++ {
			assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp),
				"entries must come back newest first")
		}
		assert.Equal(t, "entry-4", entries[0].ID)
	})
}

func TestStore_QueryFilters(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Second)

		access := testEntry("entry-access", base)
		require.NoError(t, store.Append(ctx, access))

		erasure := testEntry("entry-erasure", base.Add(time.Second))
		erasure.Action = ActionErasure
		erasure.ResourceType = ResourceIdentity
		erasure.ResourceID = "patient-1"
		erasure.UserID = "admin-1"
		erasure.Pseudonym = "PSN-CCCC00000002"
		require.NoError(t, store.Append(ctx, erasure))

		t.Run("by action", func(t *testing.T) {
			entries, err := store.Query(ctx, Filter{Action: ActionErasure})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "entry-erasure", entries[0].ID)
		})

		t.Run("by pseudonym", func(t *testing.T) {
			entries, err := store.Query(ctx, Filter{Pseudonym: "PSN-CCCC00000001"})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "entry-access", entries[0].ID)
		})

		t.Run("by user", func(t *testing.T) {
			entries, err := store.Query(ctx, Filter{UserID: "admin-1"})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "entry-erasure", entries[0].ID)
		})

		t.Run("by resource id", func(t *testing.T) {
			entries, err := store.Query(ctx, Filter{ResourceID: "patient-1"})
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})

		t.Run("by time range", func(t *testing.T) {
			from := base.Add(time.Second)
			entries, err := store.Query(ctx, Filter{From: &from})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "entry-erasure", entries[0].ID)

			to := base
			entries, err = store.Query(ctx, Filter{To: &to})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "entry-access", entries[0].ID)
		})

		t.Run("combined filters use AND semantics", func(t *testing.T) {
			entries, err := store.Query(ctx, Filter{Action: ActionErasure, UserID: "dr-chen"})
			require.NoError(t, err)
			assert.Empty(t, entries)
		})

		t.Run("limit caps the result", func(t *testing.T) {
			entries, err := store.Query(ctx, Filter{Limit: 1})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "entry-erasure", entries[0].ID, "cap keeps the newest entries")
		})
	})
}

func TestStore_Count(t *testing.T) {
	storeUnderTest(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().UTC()
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, testEntry(fmt.Sprintf("entry-%d", i), base.Add(time.Duration(i)*time.Second))))
		}
		total, err := store.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})
}

func TestEntryValidate(t *testing.T) {
	valid := testEntry("entry-1", time.Now())
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(e *Entry)
	}{
		{"action outside the vocabulary", func(e *Entry) { e.Action = "export" }},
		{"zero timestamp", func(e *Entry) { e.Timestamp = time.Time{} }},
		{"missing resource type", func(e *Entry) { e.ResourceType = "" }},
		{"missing resource id", func(e *Entry) { e.ResourceID = "" }},
		{"missing user id", func(e *Entry) { e.UserID = "" }},
		{"missing user role", func(e *Entry) { e.UserRole = "" }},
		{"missing ip address", func(e *Entry) { e.IPAddress = "" }},
		{"missing purpose", func(e *Entry) { e.Purpose = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := testEntry("entry-1", time.Now())
			tc.mutate(entry)
			assert.Error(t, entry.Validate())
		})
	}
}
