package redisconn_test

import (
	"context"
	"testing"
	"time"

	"github.com/nodeklenzurr/redisq/redis"
	"github.com/nodeklenzurr/redisq/redisconn"
	"github.com/nodeklenzurr/redisq/redistest"
	"github.com/stretchr/testify/require"
)

func TestIntegrationSetAndGet(t *testing.T) {
	srv := redistest.StartServer(t, 16391)

	c := redisconn.Connect(redisconn.Config{
		Host:        "127.0.0.1",
		Port:        srv.Port,
		DialTimeout: time.Second,
		IOTimeout:   time.Second,
	})
	defer c.Close()
	require.True(t, c.IsConnected())

	_, err := c.GetResultOfQuery(context.Background(), redis.Command("SET", "greeting", "hello"))
	require.NoError(t, err)

	reply, err := c.GetResultOfQuery(context.Background(), redis.Command("GET", "greeting"))
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), reply)
}

func TestIntegrationPipelinedBatch(t *testing.T) {
	srv := redistest.StartServer(t, 16392)

	c := redisconn.Connect(redisconn.Config{
		Host:        "127.0.0.1",
		Port:        srv.Port,
		DialTimeout: time.Second,
		IOTimeout:   time.Second,
	})
	defer c.Close()

	replies, err := c.GetResultsOfQueries(context.Background(), redis.Queries{
		redis.Command("SET", "a", "1"),
		redis.Command("SET", "b", "2"),
		redis.Command("MGET", "a", "b"),
	})
	require.NoError(t, err)
	require.Len(t, replies, 3)
	require.Equal(t, []interface{}{[]byte("1"), []byte("2")}, replies[2])
}

func TestIntegrationReconnectAfterServerRestart(t *testing.T) {
	srv := redistest.StartServer(t, 16393)

	c := redisconn.Connect(redisconn.Config{
		Host:           "127.0.0.1",
		Port:           srv.Port,
		DialTimeout:    time.Second,
		IOTimeout:      time.Second,
		ReconnectPause: 50 * time.Millisecond,
	})
	defer c.Close()

	_, err := c.GetResultOfQuery(context.Background(), redis.Command("PING"))
	require.NoError(t, err)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Start())

	require.Eventually(t, func() bool {
		_, err := c.GetResultOfQuery(context.Background(), redis.Command("PING"))
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}

func TestIntegrationFireAndForgetIsVisibleAfterwards(t *testing.T) {
	srv := redistest.StartServer(t, 16394)

	c := redisconn.Connect(redisconn.Config{
		Host:        "127.0.0.1",
		Port:        srv.Port,
		DialTimeout: time.Second,
		IOTimeout:   time.Second,
	})
	defer c.Close()

	c.FireAndForgetQuery(redis.Command("SET", "fired", "yes"))

	require.Eventually(t, func() bool {
		reply, err := c.GetResultOfQuery(context.Background(), redis.Command("GET", "fired"))
		return err == nil && string(reply.([]byte)) == "yes"
	}, time.Second, 10*time.Millisecond)
}

// TestIntegrationHealthCheckReconnectsAfterSilentPeer pauses the server
// with SIGSTOP so its socket stays open but nothing answers, then issues
// no queries of its own during the outage: only the periodic PING inside
// Connection's health check can notice the peer went silent. Once the
// health check's own ping times out it tears the stale session down, so
// a query issued after Resume succeeds again without the caller ever
// having to detect the outage itself.
func TestIntegrationHealthCheckReconnectsAfterSilentPeer(t *testing.T) {
	srv := redistest.StartServer(t, 16396)

	c := redisconn.Connect(redisconn.Config{
		Host:        "127.0.0.1",
		Port:        srv.Port,
		DialTimeout: 200 * time.Millisecond,
		IOTimeout:   200 * time.Millisecond,
	})
	defer c.Close()

	_, err := c.GetResultOfQuery(context.Background(), redis.Command("PING"))
	require.NoError(t, err)

	require.NoError(t, srv.Pause())
	// Outlast one health-check period plus its ping's own deadline so the
	// stale session is torn down while the peer is still frozen.
	time.Sleep(4 * time.Second)
	require.NoError(t, srv.Resume())

	require.Eventually(t, func() bool {
		_, err := c.GetResultOfQuery(context.Background(), redis.Command("PING"))
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}

// TestIntegrationUnixSocketPingMatchesTCP is the UNIX-domain-socket
// counterpart of the TCP PING round trips above: same server binary,
// dialed through Config.Path instead of Host/Port, which
// selects the "unix" network in Config.network()/addr().
func TestIntegrationUnixSocketPingMatchesTCP(t *testing.T) {
	srv := redistest.StartUnixServer(t, 16395)

	c := redisconn.Connect(redisconn.Config{
		Path:        srv.UnixPath,
		DialTimeout: time.Second,
		IOTimeout:   time.Second,
	})
	defer c.Close()
	require.True(t, c.IsConnected())

	reply, err := c.GetResultOfQuery(context.Background(), redis.Command("PING"))
	require.NoError(t, err)
	require.Equal(t, "PONG", reply)
}
