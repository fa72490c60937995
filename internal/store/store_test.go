package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository exercises the Repository contract.
func testRepository(t *testing.T, repo Repository) {
	ctx := context.Background()
	store := "st_" + uuid.NewString()[:8]

	rec := &Record{
		ID:        "pt_" + uuid.NewString(),
		StoreHash: store,
		Kind:      KindProductTable,
		Name:      "Bulk order",
		Settings:  json.RawMessage(`{"pageSize":25}`),
	}

	t.Run("insert and get", func(t *testing.T) {
		require.NoError(t, repo.Insert(ctx, rec))
		assert.False(t, rec.CreatedAt.IsZero())

		got, err := repo.Get(ctx, store, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Name, got.Name)
		assert.Equal(t, KindProductTable, got.Kind)
		assert.JSONEq(t, `{"pageSize":25}`, string(got.Settings))
		assert.Empty(t, got.WidgetUUID)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		dup := *rec
		err := repo.Insert(ctx, &dup)
		assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
	})

	t.Run("other store cannot see record", func(t *testing.T) {
		_, err := repo.Get(ctx, "someone-else", rec.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(repo.Delete(ctx, "someone-else", rec.ID), ErrNotFound))
	})

	t.Run("update", func(t *testing.T) {
		created := rec.CreatedAt
		upd := *rec
		upd.Name = "Renamed"
		upd.WidgetUUID = "w-1"
		upd.Settings = json.RawMessage(`{"pageSize":50}`)
		require.NoError(t, repo.Update(ctx, &upd))
		assert.WithinDuration(t, created, upd.CreatedAt, time.Millisecond)

		got, err := repo.Get(ctx, store, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "w-1", got.WidgetUUID)
		assert.JSONEq(t, `{"pageSize":50}`, string(got.Settings))
	})

	t.Run("update missing", func(t *testing.T) {
		missing := &Record{ID: "pt_missing", StoreHash: store, Kind: KindProductTable, Name: "x"}
		assert.True(t, errors.Is(repo.Update(ctx, missing), ErrNotFound))
	})

	t.Run("list filters by kind", func(t *testing.T) {
		legacy := &Record{ID: "wi_" + uuid.NewString(), StoreHash: store, Kind: KindWidgetInstance, Name: "Legacy"}
		require.NoError(t, repo.Insert(ctx, legacy))

		all, err := repo.List(ctx, store, Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		tables, err := repo.List(ctx, store, Filter{Kind: KindProductTable})
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, rec.ID, tables[0].ID)

		limited, err := repo.List(ctx, store, Filter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		none, err := repo.List(ctx, "empty-store", Filter{})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, store, rec.ID))
		_, err := repo.Get(ctx, store, rec.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(repo.Delete(ctx, store, rec.ID), ErrNotFound))
	})
}

func TestMemoryRepository(t *testing.T) {
	testRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_Ordering(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Insert(ctx, &Record{ID: id, StoreHash: "s", Kind: KindProductTable, Name: id}))
	}

	got, err := repo.List(ctx, "s", Filter{})
	require.NoError(t, err)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestMemoryRepository_CopiesSettings(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	settings := json.RawMessage(`{"a":1}`)
	require.NoError(t, repo.Insert(ctx, &Record{ID: "x", StoreHash: "s", Settings: settings}))

	settings[2] = 'b'
	got, err := repo.Get(ctx, "s", "x")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got.Settings))
}

// TestPostgresRepository runs against a real database when
// STORE_TEST_DATABASE_URL is set.
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("STORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STORE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	testRepository(t, repo)
}
