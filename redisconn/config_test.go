package redisconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigAddrAndNetworkPreferUnixWhenPathSet(t *testing.T) {
	c := Config{Path: "/tmp/redisq.sock", Host: "127.0.0.1", Port: 6380}
	require.Equal(t, "unix", c.network())
	require.Equal(t, "/tmp/redisq.sock", c.addr())
}

func TestConfigAddrAndNetworkUseTCPWhenPathEmpty(t *testing.T) {
	c := Config{Host: "127.0.0.1", Port: 6380}
	require.Equal(t, "tcp", c.network())
	require.Equal(t, "127.0.0.1:6380", c.addr())
}

func TestConfigAddrDefaultsPortWhenZero(t *testing.T) {
	c := Config{Host: "127.0.0.1"}
	require.Equal(t, "127.0.0.1:6379", c.addr())
}
