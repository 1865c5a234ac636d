// Package scheduler implements the foreground execution phase (poll loop
// with async-threshold and timeout handling) and the background monitor it
// hands off to when a command outlives the foreground window.
package scheduler

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/tsoernes/enhanced-terminal/internal/ptyexec"
	"github.com/tsoernes/enhanced-terminal/internal/registry"
)

const pollInterval = 100 * time.Millisecond

// Options configures one foreground scheduling pass.
type Options struct {
	AsyncThreshold time.Duration // 0 means "switch after the first poll"; the threshold is never checked before one poll has completed
	Timeout        time.Duration // 0 means "no timeout"
	ForceSync      bool
	OutputLimit    int
}

// Result is what the foreground phase hands back to the Tool Façade.
type Result struct {
	SwitchedToAsync bool
	TimedOut        bool
	ExitCode        *int
	Status          registry.Status
	Preview         string
	Truncated       bool
	Duration        time.Duration
	// RemainingTimeout is the time left on opts.Timeout at the moment of an
	// async handoff (zero/negative means no timeout applies). Only
	// meaningful when SwitchedToAsync is true; the caller must pass it to
	// Monitor so the background phase keeps enforcing the same deadline.
	RemainingTimeout time.Duration
}

// Run drives the foreground phase for a single job: it reads from ch and
// Registry.AppendOutput's every byte, until completion, timeout, or the
// async threshold fires. On handoff, it returns immediately and the caller
// must start a Monitor with the returned remaining timeout.
//
// sess/ch ownership transfers to the caller on return: on synchronous
// completion or timeout the child has already been waited for; on async
// handoff the caller must hand sess and ch to Monitor.
func Run(ctx context.Context, reg *registry.Registry, id string, sess *ptyexec.Session, ch <-chan ptyexec.Msg, opts Options) Result {
	start := time.Now()
	var preview []byte
	truncated := false
	polled := false

	for {
		elapsed := time.Since(start)

		if opts.Timeout > 0 && elapsed > opts.Timeout {
			killChild(sess)
			finishCode := tryWait(sess)
			reg.Complete(id, nil, registry.TimedOut)
			return Result{
				TimedOut:  true,
				Status:    registry.TimedOut,
				Preview:   string(preview),
				Truncated: truncated,
				Duration:  time.Since(start),
				ExitCode:  finishCode,
			}
		}

		if !opts.ForceSync && polled && elapsed > opts.AsyncThreshold {
			var remaining time.Duration
			if opts.Timeout > 0 {
				remaining = opts.Timeout - elapsed
			}
			return Result{
				SwitchedToAsync:  true,
				Preview:          string(preview),
				Truncated:        truncated,
				Duration:         elapsed,
				RemainingTimeout: remaining,
			}
		}

		select {
		case msg, ok := <-ch:
			if !ok {
				return finalize(reg, id, sess, preview, truncated, start)
			}
			switch msg.Kind {
			case ptyexec.Data:
				reg.AppendOutput(id, msg.Bytes)
				preview, truncated = appendBounded(preview, truncated, msg.Bytes, opts.OutputLimit)
			case ptyexec.Eof, ptyexec.Err:
				return finalize(reg, id, sess, preview, truncated, start)
			}
		case <-time.After(pollInterval):
			// Poll timeout: loop back to re-check elapsed time / threshold.
		case <-ctx.Done():
			killChild(sess)
			reg.Complete(id, nil, registry.Failed)
			return Result{Status: registry.Failed, Preview: string(preview), Truncated: truncated, Duration: time.Since(start)}
		}
		polled = true
	}
}

func appendBounded(preview []byte, truncated bool, data []byte, limit int) ([]byte, bool) {
	if truncated {
		return preview, truncated
	}
	remaining := limit - len(preview)
	if remaining <= 0 {
		return preview, true
	}
	if len(data) <= remaining {
		return append(preview, data...), false
	}
	return append(preview, data[:remaining]...), true
}

// finalize waits for the child (non-blocking-acceptable semantics: we have
// already observed Eof/Err, so Wait should return promptly) and records the
// terminal status. Status is derived solely from the exit code: a PTY read
// error is not itself a failure signal — reading the master after the child
// exits commonly surfaces as an error (EIO on unix) rather than a clean EOF.
func finalize(reg *registry.Registry, id string, sess *ptyexec.Session, preview []byte, truncated bool, start time.Time) Result {
	err := sess.Cmd.Wait()
	exitCode := exitCodeOf(sess.Cmd, err)

	status := registry.Completed
	if exitCode == nil || *exitCode != 0 {
		status = registry.Failed
	}
	reg.Complete(id, exitCode, status)

	return Result{
		Status:    status,
		ExitCode:  exitCode,
		Preview:   string(preview),
		Truncated: truncated,
		Duration:  time.Since(start),
	}
}

func exitCodeOf(cmd *exec.Cmd, waitErr error) *int {
	if cmd.ProcessState == nil {
		return nil
	}
	code := cmd.ProcessState.ExitCode()
	return &code
}

func tryWait(sess *ptyexec.Session) *int {
	done := make(chan struct{})
	var mu sync.Mutex
	var code *int
	go func() {
		err := sess.Cmd.Wait()
		mu.Lock()
		code = exitCodeOf(sess.Cmd, err)
		mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	mu.Lock()
	defer mu.Unlock()
	return code
}

func killChild(sess *ptyexec.Session) {
	if sess.Cmd.Process != nil {
		sess.Cmd.Process.Kill()
	}
}
