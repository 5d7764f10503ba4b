package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradekit/internal/domain"
)

func TestRedisCacheAdapterGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(client)

	mock.ExpectGet("some-key").SetVal("some-value")

	val, err := cache.Get(context.Background(), "some-key")
	require.NoError(t, err)
	assert.Equal(t, "some-value", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapterGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(client)

	mock.ExpectGet("missing-key").RedisNil()

	_, err := cache.Get(context.Background(), "missing-key")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapterSet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(client)

	mock.ExpectSet("some-key", "some-value", time.Minute).SetVal("OK")

	require.NoError(t, cache.Set(context.Background(), "some-key", "some-value", time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapterDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(client)

	mock.ExpectDel("some-key").SetVal(1)

	require.NoError(t, cache.Delete(context.Background(), "some-key"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapterHashOps(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(client)

	mock.ExpectHSet("answers", "field", "value").SetVal(1)
	mock.ExpectExpire("answers", 24*time.Hour).SetVal(true)
	mock.ExpectHGetAll("answers").SetVal(map[string]string{"field": "value"})

	require.NoError(t, cache.HSet(context.Background(), "answers", "field", "value"))
	require.NoError(t, cache.Expire(context.Background(), "answers", 24*time.Hour))

	entries, err := cache.HGetAll(context.Background(), "answers")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"field": "value"}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
