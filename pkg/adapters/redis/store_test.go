package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/irep/pkg/adapters/redis"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: "table1", Data: map[string]any{"i": 7}}))

	tables, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "table1")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "table1")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: "table4", Errors: 1}))

	assert.True(t, mr.Exists("custom:app:table4"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	raw, err := mr.Get("custom:app:table4")
	require.NoError(t, err)
	assert.JSONEq(t, `{"table":"table4","data":null,"errors":1,"taken_at":"0001-01-01T00:00:00Z"}`, raw)
}
