package redis_test

import (
	"testing"

	"github.com/nodeklenzurr/redisq/redis"
	"github.com/stretchr/testify/require"
)

func TestCommandArgumentTypes(t *testing.T) {
	q := redis.Command("SET", "key", 42, int64(7), uint(3), 1.5, true, false, []byte("raw"), nil)
	require.Equal(t, "SET", q.Name())
	require.Equal(t, redis.Query{
		[]byte("SET"),
		[]byte("key"),
		[]byte("42"),
		[]byte("7"),
		[]byte("3"),
		[]byte("1.5"),
		[]byte("1"),
		[]byte("0"),
		[]byte("raw"),
		[]byte{},
	}, q)
}

func TestCommandNameOnEmptyQuery(t *testing.T) {
	require.Equal(t, "", redis.Query(nil).Name())
}

func TestCommandPanicsOnUnsupportedType(t *testing.T) {
	require.Panics(t, func() {
		redis.Command("SET", "key", struct{}{})
	})
}
