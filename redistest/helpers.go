package redistest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// StartServer launches a fresh redis-server on port for the life of the
// test and registers its teardown, or skips the test entirely when no
// redis-server binary is available on PATH.
func StartServer(t testing.TB, port uint16) *Server {
	t.Helper()
	if Binary == "" {
		t.Skip("redis-server not found on PATH")
	}
	InitDir(os.TempDir())
	s := &Server{Port: port}
	if err := s.Start(); err != nil {
		t.Fatalf("starting redis-server: %s", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

// StartUnixServer launches a fresh redis-server listening on both port
// and a UNIX-domain socket under Dir, for tests exercising the
// Path-selects-UNIX branch of Config. Skips the test when no
// redis-server binary is available on PATH.
func StartUnixServer(t testing.TB, port uint16) *Server {
	t.Helper()
	if Binary == "" {
		t.Skip("redis-server not found on PATH")
	}
	InitDir(os.TempDir())
	s := &Server{
		Port:     port,
		UnixPath: filepath.Join(Dir, fmt.Sprintf("redisq_test_%d.sock", port)),
	}
	if err := s.Start(); err != nil {
		t.Fatalf("starting redis-server: %s", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}
