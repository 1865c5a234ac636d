// Package ptyexec allocates a pseudo-terminal per invocation, spawns the
// requested shell inside it, and drains its output on a dedicated reader
// goroutine. It mirrors the allocation and shutdown discipline of
// wingthing's internal/egg server, scaled down to a single one-shot command
// instead of a long-lived interactive agent session.
package ptyexec

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/creack/pty"
)

// Geometry is the fixed initial PTY size used for every invocation.
var Geometry = &pty.Winsize{Rows: 24, Cols: 80}

// Session is a spawned PTY-backed child process and its master read side.
type Session struct {
	Cmd  *exec.Cmd
	Ptmx *os.File
	PID  int
}

// Spawn allocates a PTY, builds `shell -c command` with cwd and env applied
// additively over the parent environment, and starts it on the slave side.
// The slave handle is dropped from the parent immediately after start so
// EOF propagates correctly on child exit.
func Spawn(shell, command, cwd string, env map[string]string) (*Session, error) {
	resolvedCWD, err := filepath.Abs(cwd)
	if err != nil {
		resolvedCWD = cwd // fall back to the raw path on error
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Dir = resolvedCWD
	cmd.Env = mergeEnv(os.Environ(), env)

	ptmx, err := pty.StartWithSize(cmd, Geometry)
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	return &Session{Cmd: cmd, Ptmx: ptmx, PID: cmd.Process.Pid}, nil
}

// ResolveCWD canonicalizes cwd, falling back to the raw path on error.
func ResolveCWD(cwd string) string {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return cwd
	}
	return abs
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, len(base), len(base)+len(extra))
	copy(out, base)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}

// Close releases the master side of the PTY.
func (s *Session) Close() error {
	return s.Ptmx.Close()
}
