//go:build !unix

package registry

import "fmt"

// Cancel performs a status-only transition to Canceled: platforms without
// process signaling cannot deliver a termination signal, so a missing pid
// does not prevent cancellation here (unlike the unix build).
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != Running {
		return fmt.Errorf("job %s not found or not running", id)
	}
	job.Status = Canceled
	t := timeNow()
	job.FinishedAt = &t
	return nil
}
