package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	table := "contract-table-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a snapshot
		snap := &domain.Snapshot{
			Table: table,
			Data: map[string]any{
				"i": 7,
				"s": "abcd",
				"e": []any{1.5, 2.5},
			},
			TakenAt: time.Now().UTC().Truncate(time.Second),
		}

		// 2. Save
		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, table)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, table, loaded.Table)
		assert.True(t, snap.TakenAt.Equal(loaded.TakenAt))

		data, ok := loaded.Data.(map[string]any)
		require.True(t, ok, "data should decode as an object")
		assert.Equal(t, "abcd", data["s"])
		// JSON persistence turns integers into float64; memory stores keep them.
		assert.EqualValues(t, 7, data["i"])
	})

	t.Run("Isolation", func(t *testing.T) {
		isolated := table + "-isolated"
		defer func() { _ = store.Delete(ctx, isolated) }()

		data := map[string]any{"i": 7, "e": []any{1.5}}
		require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: isolated, Data: data}))

		// 1. Mutating the saved data does not reach the store
		data["i"] = 99
		data["e"].([]any)[0] = 9.5

		loaded, err := store.Load(ctx, isolated)
		require.NoError(t, err)
		got := loaded.Data.(map[string]any)
		assert.EqualValues(t, 7, got["i"])
		assert.EqualValues(t, 1.5, got["e"].([]any)[0])

		// 2. Mutating a loaded snapshot does not reach the store
		got["i"] = -1
		got["e"].([]any)[0] = -1.5

		again, err := store.Load(ctx, isolated)
		require.NoError(t, err)
		reloaded := again.Data.(map[string]any)
		assert.EqualValues(t, 7, reloaded["i"])
		assert.EqualValues(t, 1.5, reloaded["e"].([]any)[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+table)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: table, Data: map[string]any{"i": 1}, Errors: 2}))
		loaded, err := store.Load(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Errors)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: table}))

		require.NoError(t, store.Delete(ctx, table), "Delete should not return error")

		_, err := store.Load(ctx, table)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		t1 := table + "-1"
		t2 := table + "-2"
		_ = store.Save(ctx, &domain.Snapshot{Table: t1})
		_ = store.Save(ctx, &domain.Snapshot{Table: t2})

		defer func() {
			_ = store.Delete(ctx, t1)
			_ = store.Delete(ctx, t2)
		}()

		tables, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, tables, t1)
		assert.Contains(t, tables, t2)
	})
}
