package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gallery"
)

func TestSessionStore(t *testing.T) {
	store := New(nil)

	first := store.Create()
	second := store.Create()
	require.NotEqual(t, first.ID, second.ID)

	got, ok := store.Get(first.ID)
	require.True(t, ok)
	assert.Same(t, first, got)

	list := store.List()
	require.Len(t, list, 2)

	assert.True(t, store.Delete(first.ID))
	assert.False(t, store.Delete(first.ID))
	_, ok = store.Get(first.ID)
	assert.False(t, ok)

	custom := gallery.NewSession("fixed", nil)
	store.Set(custom.ID, custom)
	got, ok = store.Get("fixed")
	require.True(t, ok)
	assert.Same(t, custom, got)
	assert.Len(t, store.List(), 2)
}
