package scheduler

import (
	"time"

	"github.com/tsoernes/enhanced-terminal/internal/ptyexec"
	"github.com/tsoernes/enhanced-terminal/internal/registry"
)

// Monitor continues draining a job's PTY after the foreground phase has
// handed off to the background: it runs until Eof/Err, appending every
// chunk to the registry, then waits for the child and records the terminal
// status exactly once. timeoutRemaining is the time left on the job's
// original timeout budget at the moment of handoff (<= 0 means no timeout
// applies); if it elapses before the child exits, the child is killed and
// the job is completed as TimedOut, matching the foreground phase's own
// timeout handling. The registry's Running-only completion guard makes this
// safe to run concurrently with a Cancel call racing to finish the same job
// first.
func Monitor(reg *registry.Registry, id string, sess *ptyexec.Session, ch <-chan ptyexec.Msg, timeoutRemaining time.Duration) {
	go func() {
		var timeoutC <-chan time.Time
		if timeoutRemaining > 0 {
			timer := time.NewTimer(timeoutRemaining)
			defer timer.Stop()
			timeoutC = timer.C
		}

		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					finalizeAsync(reg, id, sess)
					return
				}
				switch msg.Kind {
				case ptyexec.Data:
					reg.AppendOutput(id, msg.Bytes)
				case ptyexec.Eof, ptyexec.Err:
				}
			case <-timeoutC:
				killChild(sess)
				tryWait(sess)
				reg.Complete(id, nil, registry.TimedOut)
				return
			}
		}
	}()
}

// finalizeAsync records the terminal status for a job that finished draining
// its PTY in the background, deriving status solely from the exit code (see
// the foreground finalize's doc comment for why a PTY read error is not
// itself a failure signal).
func finalizeAsync(reg *registry.Registry, id string, sess *ptyexec.Session) {
	err := sess.Cmd.Wait()
	exitCode := exitCodeOf(sess.Cmd, err)

	status := registry.Completed
	if exitCode == nil || *exitCode != 0 {
		status = registry.Failed
	}
	reg.Complete(id, exitCode, status)
}
