package filesystem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/pkg/errors"
)

func TestFsStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "corpora/a.json", []byte(`{"x":1}`)))
		data, err := store.Get(ctx, "corpora/a.json")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"x":1}`), data)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "k", []byte("one")))
		require.NoError(t, store.Put(ctx, "k", []byte("two")))
		data, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), data)
	})

	t.Run("missing key maps to not found", func(t *testing.T) {
		_, err := store.Get(ctx, "nope.json")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrArtifactNotFound))
	})

	t.Run("exists", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "seen", []byte("x")))
		ok, err := store.Exists(ctx, "seen")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Exists(ctx, "unseen")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "gone", []byte("x")))
		require.NoError(t, store.Delete(ctx, "gone"))
		require.NoError(t, store.Delete(ctx, "gone"))
		_, err := store.Get(ctx, "gone")
		assert.True(t, errors.IsCode(err, errors.ErrArtifactNotFound))
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		err := store.Put(ctx, "../outside", []byte("x"))
		require.Error(t, err)
		_, err = store.Get(ctx, "../../etc/passwd")
		require.Error(t, err)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := store.Get(ctx, "")
		assert.Error(t, err)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestNewStore(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}
