package storage

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok, "fresh backend should have no value")

	require.NoError(t, b.Put(ctx, DefaultKey, []byte(`{"personal":[]}`)))
	require.NoError(t, b.Put(ctx, DefaultKey, []byte(`{"professional":[]}`)))

	got, ok, err := b.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"professional":[]}`, string(got), "put must overwrite the whole value")

	_, ok, err = b.Get(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteBackend_Memory(t *testing.T) {
	b, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	exerciseBackend(t, b)
}

func TestSQLiteBackend_FilePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tandem.db")
	ctx := context.Background()

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, DefaultKey, []byte("blob")))
	require.NoError(t, b.Close())

	b, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, ok, err := b.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "blob", string(got))
}

func TestSQLiteBackend_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestRedisBackend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	b, err := OpenRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	exerciseBackend(t, b)
}

func TestNewRedisWrapsClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	b := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Put(context.Background(), "k", []byte("v")))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpen_SelectsBackend(t *testing.T) {
	b, err := Open(Options{DBPath: ":memory:"})
	require.NoError(t, err)
	_, isSQLite := b.(*SQLite)
	assert.True(t, isSQLite)
	require.NoError(t, b.Close())

	_, err = Open(Options{Kind: "etcd"})
	assert.Error(t, err)
}
