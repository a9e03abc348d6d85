package pricecache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func exerciseStore(t *testing.T, s Store, clock *fakeClock) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "coingecko:price:bitcoin", []byte(`64000.5`), 5*time.Minute))
	v, ok, err := s.Get(ctx, "coingecko:price:bitcoin")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`64000.5`), v)

	// overwrite
	require.NoError(t, s.Set(ctx, "coingecko:price:bitcoin", []byte(`65000`), 5*time.Minute))
	v, ok, err = s.Get(ctx, "coingecko:price:bitcoin")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`65000`), v)

	clock.t = clock.t.Add(5 * time.Minute)
	_, ok, err = s.Get(ctx, "coingecko:price:bitcoin")
	require.NoError(t, err)
	require.False(t, ok, "entry should expire after ttl")
}

func TestMemoryStore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.now

	exerciseStore(t, s, clock)
	require.Equal(t, 0, s.Len(), "expired entry is dropped on read")

	t.Run("returned bytes are a copy", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("abc"), time.Minute))
		v, _, _ := s.Get(ctx, "k")
		v[0] = 'z'
		again, _, _ := s.Get(ctx, "k")
		require.Equal(t, []byte("abc"), again)
	})
}

func TestSQLiteStore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	s.now = clock.now

	exerciseStore(t, s, clock)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Hour))
	clock.t = clock.t.Add(2 * time.Minute)
	n, err := s.Purge(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, ok, err := s.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Backend: "sqlite"})
	require.Error(t, err)

	_, err = Open(ctx, Options{Backend: "redis"})
	require.Error(t, err)

	_, err = Open(ctx, Options{Backend: "memcached"})
	require.Error(t, err)
}
