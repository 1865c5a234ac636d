package terminal

import (
	"fmt"
	"strings"

	"github.com/tsoernes/enhanced-terminal/internal/registry"
)

// StatusArgs is the status tool's argument record.
type StatusArgs struct {
	JobID       string
	Incremental bool
	Offset      int
	Limit       int
}

// Status implements the status tool's mode-selection rule: pagination wins
// over incremental, which wins over a full preview.
func (f *Facade) Status(args StatusArgs) (string, bool) {
	job, ok := f.Registry.Get(args.JobID)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job ID: %s\n", job.JobID)
	fmt.Fprintf(&b, "Command: %s\n", job.Command)
	fmt.Fprintf(&b, "Status: %s\n", statusWord(job.Status))
	if job.ExitCode != nil {
		fmt.Fprintf(&b, "Exit Code: %d\n", *job.ExitCode)
	}
	b.WriteString("\nOutput:\n")

	switch {
	case args.Offset > 0 || args.Limit > 0:
		offset, limit := args.Offset, args.Limit
		if offset < 0 {
			offset = 0
		}
		if limit < 0 {
			limit = 0
		}
		slice, hasMore, total, _ := f.Registry.Range(args.JobID, offset, limit)
		b.WriteString(slice)
		fmt.Fprintf(&b, "\n\n[has_more=%v total_length=%d]", hasMore, total)
	case args.Incremental:
		newBytes, stillRunning, _ := f.Registry.IncrementalOutput(args.JobID)
		b.WriteString(newBytes)
		fmt.Fprintf(&b, "\n\n[still_running=%v]", stillRunning)
	default:
		b.WriteString(job.Output)
		if job.Truncated {
			b.WriteString("\n\n[Output truncated due to size limit]")
		}
	}

	return b.String(), true
}

// ListArgs is the list tool's argument record.
type ListArgs struct {
	MaxJobs      int
	StatusFilter []string
	TagFilter    string
	CWDFilter    string
	SortOrder    string // "newest" (default) or "oldest"
}

var knownStatuses = map[string]registry.Status{
	"Running":   registry.Running,
	"Completed": registry.Completed,
	"Failed":    registry.Failed,
	"TimedOut":  registry.TimedOut,
	"Canceled":  registry.Canceled,
}

// List implements the list tool: unknown status_filter entries are dropped
// silently, and the result is capped at max_jobs (default 50).
func (f *Facade) List(args ListArgs) []registry.JobRecord {
	maxJobs := args.MaxJobs
	if maxJobs <= 0 {
		maxJobs = 50
	}

	var statuses []registry.Status
	for _, s := range args.StatusFilter {
		if st, ok := knownStatuses[s]; ok {
			statuses = append(statuses, st)
		}
	}

	order := registry.NewestFirst
	if args.SortOrder == "oldest" {
		order = registry.OldestFirst
	}

	jobs := f.Registry.List(registry.ListFilter{
		Statuses: statuses,
		Tag:      args.TagFilter,
		CWD:      args.CWDFilter,
	}, order)

	if len(jobs) > maxJobs {
		jobs = jobs[:maxJobs]
	}
	return jobs
}

// Cancel implements the cancel tool.
func (f *Facade) Cancel(jobID string) error {
	return f.Registry.Cancel(jobID)
}
