//go:build unix

package registry

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Cancel sends SIGTERM to the job's pid and transitions it to Canceled.
// Fails if the job is not found, not Running, or has no captured pid —
// on signal-capable platforms a pid-less cancel cannot be delivered, so it
// is refused rather than silently downgraded to a status-only transition.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if !ok || job.Status != Running || job.PID == nil {
		r.mu.Unlock()
		return fmt.Errorf("job %s not found or not running", id)
	}
	pid := *job.PID
	r.mu.Unlock()

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("signal job %s (pid %d): %w", id, pid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok = r.jobs[id]
	if !ok || job.Status != Running {
		return nil
	}
	job.Status = Canceled
	t := timeNow()
	job.FinishedAt = &t
	return nil
}
