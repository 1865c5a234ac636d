// Package registry owns the in-memory table of job records: the single
// persistent entity of the execution engine. All mutations serialize
// through one exclusive lock; no reference to a JobRecord ever escapes it.
package registry

import "time"

// Status is the lifecycle state of a job. Terminal states (all but
// Running) are sticky: Complete and Cancel only act on a Running job, so
// once a terminal state is set no further status change is possible.
type Status string

const (
	Running   Status = "Running"
	Completed Status = "Completed"
	Failed    Status = "Failed"
	TimedOut  Status = "TimedOut"
	Canceled  Status = "Canceled"
)

// JobRecord describes one tracked command execution. Values returned by the
// Registry are snapshots (copies); mutating them has no effect on the
// stored record.
type JobRecord struct {
	JobID   string
	Command string
	Summary string
	Shell   string
	CWD     string
	Tags    []string

	StartedAt  time.Time
	FinishedAt *time.Time

	Status   Status
	ExitCode *int
	PID      *int

	Output      string
	FullOutput  string
	Truncated   bool
	LastReadPos int
	outputLimit int
}

func summarize(command string) string {
	const maxLen = 100
	if len(command) <= maxLen {
		return command
	}
	return command[:maxLen-3] + "..."
}

func cloneTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// snapshot returns a value copy safe to hand to callers outside the lock.
func (j *JobRecord) snapshot() JobRecord {
	cp := *j
	cp.Tags = cloneTags(j.Tags)
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		cp.FinishedAt = &t
	}
	if j.ExitCode != nil {
		e := *j.ExitCode
		cp.ExitCode = &e
	}
	if j.PID != nil {
		p := *j.PID
		cp.PID = &p
	}
	return cp
}
