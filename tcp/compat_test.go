package tcp

import (
	"testing"

	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The server must be indistinguishable from redis for the commands it
// implements, so drive it through the canonical client library.
func TestRedisClientCompatibility(t *testing.T) {
	addr, shutdown := startRespServer(t)
	defer shutdown()

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	defer rdb.Close()

	pong, err := rdb.Ping().Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)

	require.NoError(t, rdb.Set("hello", "world", 0).Err())
	got, err := rdb.Get("hello").Result()
	require.NoError(t, err)
	assert.Equal(t, "world", got)

	_, err = rdb.Get("missing").Result()
	assert.Equal(t, redis.Nil, err)

	for want := int64(1); want <= 3; want++ {
		n, err := rdb.Incr("c").Result()
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	require.NoError(t, rdb.MSet("x", "y").Err())
	values, err := rdb.MGet("x", "z").Result()
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "y", values[0])
	assert.Nil(t, values[1])

	n, err := rdb.Exists("hello", "x", "nope").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = rdb.Rename("ghost", "elsewhere").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such key")

	n, err = rdb.Del("hello", "x").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
