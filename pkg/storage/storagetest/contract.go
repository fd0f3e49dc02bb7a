// Package storagetest holds the behavioural contract every storage.Store
// implementation must satisfy.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-brandmanual/pkg/storage"
)

// Run exercises s. The store must start empty.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "hotelBrandManual")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "hotelBrandManual", `{"hotelName":"Hotel Aurora"}`))
	require.NoError(t, s.Set(ctx, "brandManual_selectedTemplate", "luxury"))

	got, err := s.Get(ctx, "hotelBrandManual")
	require.NoError(t, err)
	assert.Equal(t, `{"hotelName":"Hotel Aurora"}`, got)

	require.NoError(t, s.Set(ctx, "brandManual_selectedTemplate", "modern"))
	got, err = s.Get(ctx, "brandManual_selectedTemplate")
	require.NoError(t, err)
	assert.Equal(t, "modern", got)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brandManual_selectedTemplate", "hotelBrandManual"}, keys)

	ok, err := storage.Has(ctx, s, "hotelBrandManual")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "hotelBrandManual", "missing"))
	_, err = s.Get(ctx, "hotelBrandManual")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Delete(ctx))
}
