package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is the in-memory job table. The zero value is not usable; use
// New. All operations are O(n) or better over live jobs and never perform
// I/O while holding the lock.
type Registry struct {
	mu      sync.Mutex
	jobs    map[string]*JobRecord
	counter uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{jobs: make(map[string]*JobRecord)}
}

// NewID returns the next job id, of the form "job-<N>", N monotonically
// increasing for the lifetime of the process.
func (r *Registry) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return fmt.Sprintf("job-%d", r.counter)
}

// Register creates a record in Running state with empty outputs and
// last_read_position 0. outputLimit is captured for the lifetime of the job
// and used by every subsequent AppendOutput call.
func (r *Registry) Register(id, command, shell, cwd string, pid *int, tags []string, outputLimit int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &JobRecord{
		JobID:       id,
		Command:     command,
		Summary:     summarize(command),
		Shell:       shell,
		CWD:         cwd,
		Tags:        dedupTags(tags),
		StartedAt:   time.Now(),
		Status:      Running,
		PID:         clonePID(pid),
		outputLimit: outputLimit,
	}
}

func clonePID(pid *int) *int {
	if pid == nil {
		return nil
	}
	p := *pid
	return &p
}

func dedupTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// AppendOutput always appends to full_output; it appends to the bounded
// preview up to the job's output_limit (captured at Register time) and sets
// truncated once the limit is hit. A no-op if the job does not exist.
func (r *Registry) AppendOutput(id string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.FullOutput += string(data)
	if len(data) == 0 || job.Truncated {
		return
	}

	remaining := job.outputLimit - len(job.Output)
	switch {
	case remaining <= 0:
		job.Truncated = true
	case len(data) <= remaining:
		job.Output += string(data)
	default:
		job.Output += string(data[:remaining])
		job.Truncated = true
	}
}

// Complete transitions a job to a terminal status; a no-op unless the
// current status is Running (enforces at-most-one completion).
func (r *Registry) Complete(id string, exitCode *int, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != Running {
		return
	}
	job.Status = status
	job.ExitCode = clonePID(exitCode)
	t := time.Now()
	job.FinishedAt = &t
}

// Get returns a snapshot of the job, or ok=false if it does not exist.
func (r *Registry) Get(id string) (JobRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return JobRecord{}, false
	}
	return job.snapshot(), true
}

// IncrementalOutput returns full_output[last_read_position..] and advances
// the cursor to the end. stillRunning reflects the status observed at the
// moment of the call. ok is false if the job does not exist.
func (r *Registry) IncrementalOutput(id string) (newBytes string, stillRunning bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, exists := r.jobs[id]
	if !exists {
		return "", false, false
	}
	newBytes = job.FullOutput[job.LastReadPos:]
	job.LastReadPos = len(job.FullOutput)
	return newBytes, job.Status == Running, true
}

// ResetCursor rewinds last_read_position to 0 so the next incremental read
// returns the whole history again.
func (r *Registry) ResetCursor(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.LastReadPos = 0
	}
}

// Range returns full_output[offset:offset+limit] (clamped), whether more
// data follows, and the total length. ok is false if the job does not
// exist. An offset at or beyond the total length yields an empty slice.
// Negative offset/limit (untrusted caller input) are clamped to zero rather
// than trusted as given.
func (r *Registry) Range(id string, offset, limit int) (slice string, hasMore bool, total int, ok bool) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, exists := r.jobs[id]
	if !exists {
		return "", false, 0, false
	}
	total = len(job.FullOutput)
	if offset >= total {
		return "", false, total, true
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return job.FullOutput[offset:end], end < total, total, true
}

// ListFilter restricts List to jobs matching every non-empty field.
type ListFilter struct {
	Statuses []Status // empty means "any"
	Tag      string   // empty means "any"
	CWD      string   // empty means "any"
}

// SortOrder controls List ordering.
type SortOrder int

const (
	// NewestFirst sorts by started_at descending (the default).
	NewestFirst SortOrder = iota
	// OldestFirst sorts by started_at ascending.
	OldestFirst
)

// List returns snapshots of jobs matching filter, sorted per order.
func (r *Registry) List(filter ListFilter, order SortOrder) []JobRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var statusSet map[Status]bool
	if len(filter.Statuses) > 0 {
		statusSet = make(map[Status]bool, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statusSet[s] = true
		}
	}

	out := make([]JobRecord, 0, len(r.jobs))
	for _, job := range r.jobs {
		if statusSet != nil && !statusSet[job.Status] {
			continue
		}
		if filter.Tag != "" && !containsTag(job.Tags, filter.Tag) {
			continue
		}
		if filter.CWD != "" && job.CWD != filter.CWD {
			continue
		}
		out = append(out, job.snapshot())
	}

	sort.Slice(out, func(i, j int) bool {
		if order == OldestFirst {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTags unions tags into the job's tag set, preserving insertion order.
// A no-op if the job does not exist.
func (r *Registry) AddTags(id string, tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	for _, tag := range tags {
		if !containsTag(job.Tags, tag) {
			job.Tags = append(job.Tags, tag)
		}
	}
}

// timeNow returns the current wall-clock time; a thin indirection so the
// cancel_unix/cancel_other variants share one symbol.
func timeNow() time.Time { return time.Now() }

// Delete removes a job from the table.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}
