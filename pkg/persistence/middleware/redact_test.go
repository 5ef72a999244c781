package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{"ref$", "^password"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	data := map[string]any{
		"i":        1,
		"password": "hunter2",
		"fooref":   "<userdata>",
		"table4": []any{
			map[string]any{"name": "a", "fooref": "<function>"},
		},
	}
	require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: "table1", Data: data}))

	// The caller's data is untouched
	assert.Equal(t, "hunter2", data["password"])

	stored, err := underlying.Load(ctx, "table1")
	require.NoError(t, err)
	got := stored.Data.(map[string]any)
	assert.Equal(t, 1, got["i"])
	assert.Equal(t, middleware.Mask, got["password"])
	assert.Equal(t, middleware.Mask, got["fooref"])
	nested := got["table4"].([]any)[0].(map[string]any)
	assert.Equal(t, "a", nested["name"])
	assert.Equal(t, middleware.Mask, nested["fooref"])
}

func TestRedactMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactMiddleware([]string{"secret"})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: make([]byte, 32)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, redact, encrypt)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.Snapshot{Table: "t", Data: map[string]any{"secret": "x", "ok": "y"}}))

	loaded, err := store.Load(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"secret": middleware.Mask, "ok": "y"}, loaded.Data)
}
