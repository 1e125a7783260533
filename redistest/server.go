// Package redistest spawns real redis-server processes for integration
// tests and provides a minimal synchronous client, independent of
// redisconn, to probe them directly.
package redistest

import (
	"io/ioutil"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

// Binary is the resolved path to redis-server, empty if not found on
// PATH. Tests that need a live server should skip themselves when this
// is empty rather than failing.
var Binary = func() string { p, _ := exec.LookPath("redis-server"); return p }()

// Dir is the temporary directory server processes run in, set by
// InitDir.
var Dir = ""

// InitDir creates Dir under base, once.
func InitDir(base string) {
	if Dir == "" {
		var err error
		Dir, err = ioutil.TempDir(base, "redisq_test_")
		if err != nil {
			panic(err)
		}
	}
}

// RmDir removes Dir and resets it so a later InitDir starts fresh.
func RmDir() {
	if Dir == "" {
		return
	}
	os.RemoveAll(Dir)
	Dir = ""
}

// Server is one spawned redis-server instance, addressable at
// 127.0.0.1:Port and, when UnixPath is set, also at that UNIX-domain
// socket.
type Server struct {
	Port     uint16
	UnixPath string
	Args     []string
	Cmd      *exec.Cmd
	Paused   bool
}

func (s *Server) PortStr() string {
	return strconv.Itoa(int(s.Port))
}

// Addr is the loopback address this server listens on.
func (s *Server) Addr() string {
	return "127.0.0.1:" + s.PortStr()
}

// Start launches redis-server if it is not already running. A short
// sleep after launch gives it time to bind before the caller dials.
func (s *Server) Start() error {
	if s.Cmd != nil {
		return nil
	}
	s.Paused = false
	port := s.PortStr()
	args := append([]string{
		"--bind", "127.0.0.1",
		"--port", port,
		"--logfile", port + ".log",
		"--save", "",
	}, s.Args...)
	if s.UnixPath != "" {
		args = append(args, "--unixsocket", s.UnixPath, "--unixsocketperm", "700")
	}
	s.Cmd = exec.Command(Binary, args...)
	s.Cmd.Dir = Dir
	if err := s.Cmd.Start(); err != nil {
		s.Cmd = nil
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Pause suspends the server process with SIGSTOP, simulating a peer
// that stops responding without closing the socket - the scenario
// redisconn's health check exists to detect.
func (s *Server) Pause() error {
	if s.Paused || s.Cmd == nil {
		return nil
	}
	if err := s.Cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		return err
	}
	s.Paused = true
	return nil
}

// Resume undoes Pause.
func (s *Server) Resume() error {
	if !s.Paused || s.Cmd == nil {
		return nil
	}
	if err := s.Cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return err
	}
	s.Paused = false
	return nil
}

// Stop kills the server process and waits for it to exit.
func (s *Server) Stop() error {
	if s.Paused {
		s.Resume()
	}
	if s.Cmd == nil {
		return nil
	}
	defer time.Sleep(10 * time.Millisecond)
	p := s.Cmd
	s.Cmd = nil
	defer p.Wait()
	return p.Process.Kill()
}

// Do issues a single command against this server using the standalone
// client, bypassing redisconn entirely - useful for setup/teardown and
// for asserting on state a redisconn test just produced.
func (s *Server) Do(cmd string, args ...interface{}) (interface{}, error) {
	return Do(s.Addr(), cmd, args...)
}
