package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStorage_DeleteAbsentKey(t *testing.T) {
	s := NewMemoryStorage()
	assert.NoError(t, s.Delete(context.Background(), "never-set"))
}

func TestMemoryStorage_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.Set(ctx, "k", []byte("abc")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFileStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s1, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "auth_token", []byte("tok.en.value")))
	require.NoError(t, s1.Set(ctx, "cart", []byte(`[{"productId":"A"}]`)))
	require.NoError(t, s1.Close())

	// Reopening the same file restores exact state, like a page reload.
	s2, err := NewFileStorage(path)
	require.NoError(t, err)

	got, err := s2.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok.en.value"), got)

	got, err = s2.Get(ctx, "cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"A"}]`, string(got))
}

func TestFileStorage_DeletePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s1, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "k", []byte("v")))
	require.NoError(t, s1.Delete(ctx, "k"))

	s2, err := NewFileStorage(path)
	require.NoError(t, err)
	_, err = s2.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStorage_MissingFileStartsEmpty(t *testing.T) {
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
