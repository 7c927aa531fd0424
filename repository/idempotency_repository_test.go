package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis overrides the commands the repository uses; anything else panics on the nil embed.
type fakeRedis struct {
	redis.Cmdable
	data map[string][]byte
	ttl  map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = value.([]byte)
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = []byte("1")
	f.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func TestIdempotencyRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		fake := newFakeRedis()
		repo := NewIdempotencyRepository(fake)

		cached, err := repo.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, cached)

		require.NoError(t, repo.Save(ctx, "abc", CachedResponse{StatusCode: 201, Body: []byte(`{"id":1}`)}, time.Hour))
		assert.Equal(t, time.Hour, fake.ttl["idempotency:abc"])

		cached, err = repo.Get(ctx, "abc")
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, 201, cached.StatusCode)
		assert.JSONEq(t, `{"id":1}`, string(cached.Body))
	})

	t.Run("redis error", func(t *testing.T) {
		fake := newFakeRedis()
		fake.err = errors.New("redis down")
		repo := NewIdempotencyRepository(fake)

		cached, err := repo.Get(ctx, "abc")

		assert.Nil(t, cached)
		assert.Error(t, err)
	})
	t.Run("reservation is exclusive until released", func(t *testing.T) {
		fake := newFakeRedis()
		repo := NewIdempotencyRepository(fake)

		ok, err := repo.Reserve(ctx, "abc", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Minute, fake.ttl["idempotency:lock:abc"])

		ok, err = repo.Reserve(ctx, "abc", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, repo.Release(ctx, "abc"))
		ok, err = repo.Reserve(ctx, "abc", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reserve error", func(t *testing.T) {
		fake := newFakeRedis()
		fake.err = errors.New("redis down")
		repo := NewIdempotencyRepository(fake)

		ok, err := repo.Reserve(ctx, "abc", time.Minute)

		assert.False(t, ok)
		assert.Error(t, err)
	})
}
