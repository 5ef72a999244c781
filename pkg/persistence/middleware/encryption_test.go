package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/persistence/middleware"
	"github.com/aretw0/irep/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, config middleware.EncryptionConfig, next ports.SnapshotStore) ports.SnapshotStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(config)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore())
	ports.RunSnapshotStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	ctx := context.Background()

	snap := &domain.Snapshot{Table: "table1", Data: map[string]any{"s": "secret"}, Errors: 1}
	require.NoError(t, secure.Save(ctx, snap))

	// 1. The underlying store only sees the envelope
	stored, err := underlying.Load(ctx, "table1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Errors)
	data := stored.Data.(map[string]any)
	assert.NotContains(t, data, "s")
	assert.Contains(t, data, "__encrypted__")

	// 2. Loading through the middleware decrypts
	loaded, err := secure.Load(ctx, "table1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s": "secret"}, loaded.Data)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	old := encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying)
	require.NoError(t, old.Save(ctx, &domain.Snapshot{Table: "t", Data: "v1"}))

	t.Run("Fallback key decrypts", func(t *testing.T) {
		rotated := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
		loaded, err := rotated.Load(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, "v1", loaded.Data)
	})

	t.Run("Unknown key fails", func(t *testing.T) {
		other := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey}, underlying)
		_, err := other.Load(ctx, "t")
		assert.ErrorContains(t, err, "decryption failed")
	})
}

func TestEncryptionMiddleware_Errors(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, &domain.Snapshot{Table: "plain", Data: map[string]any{"i": 1}}))

	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	_, err = secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing its encrypted envelope")

	_, err = secure.Load(ctx, "absent")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
