//go:build unix

package terminal

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tsoernes/enhanced-terminal/internal/registry"
)

func newFacade() *Facade {
	return New(registry.New(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExecuteForceSyncCompletesAndReportsOutput(t *testing.T) {
	f := newFacade()
	res := f.Execute(context.Background(), ExecuteArgs{
		Command:   "echo hello",
		Shell:     "sh",
		ForceSync: true,
	})
	if res.Denied {
		t.Fatal("unexpected denial")
	}
	if !strings.Contains(res.Text, "hello") {
		t.Errorf("result text missing output: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Status: COMPLETED") {
		t.Errorf("result text missing COMPLETED status: %q", res.Text)
	}
	if !strings.Contains(res.Text, "Exit Code: 0") {
		t.Errorf("result text missing exit code: %q", res.Text)
	}
}

func TestExecuteDeniedCommandNeverSpawns(t *testing.T) {
	f := newFacade()
	res := f.Execute(context.Background(), ExecuteArgs{Command: "rm -rf /", ForceSync: true})
	if !res.Denied {
		t.Fatal("expected denial")
	}
	if res.JobID != "" {
		t.Errorf("denied command must not register a job, got JobID=%q", res.JobID)
	}
	jobs := f.List(ListArgs{})
	if len(jobs) != 0 {
		t.Errorf("denied command must not appear in list, got %d jobs", len(jobs))
	}
}

func TestExecuteStreamAlwaysReportsStreamingMode(t *testing.T) {
	f := newFacade()
	res := f.Execute(context.Background(), ExecuteArgs{
		Command: "sleep 5 && echo done",
		Shell:   "sh",
		Stream:  true,
	})
	if !strings.Contains(res.Text, "Status: STREAMING MODE") {
		t.Errorf("result text missing STREAMING MODE: %q", res.Text)
	}
	f.Cancel(res.JobID)
}

func TestStatusUnknownJobReturnsNotOK(t *testing.T) {
	f := newFacade()
	_, ok := f.Status(StatusArgs{JobID: "job-does-not-exist"})
	if ok {
		t.Error("expected ok=false for unknown job")
	}
}

func TestListDropsUnknownStatusFilterSilently(t *testing.T) {
	f := newFacade()
	f.Execute(context.Background(), ExecuteArgs{Command: "echo hi", Shell: "sh", ForceSync: true})
	jobs := f.List(ListArgs{StatusFilter: []string{"NotAStatus"}})
	if len(jobs) != 1 {
		t.Errorf("unknown status filter should be dropped, leaving all jobs; got %d", len(jobs))
	}
}

func TestListCapsAtMaxJobs(t *testing.T) {
	f := newFacade()
	for i := 0; i < 3; i++ {
		f.Execute(context.Background(), ExecuteArgs{Command: "echo hi", Shell: "sh", ForceSync: true})
	}
	jobs := f.List(ListArgs{MaxJobs: 2})
	if len(jobs) != 2 {
		t.Errorf("len(jobs) = %d, want 2", len(jobs))
	}
}

func TestCancelUnknownJobErrors(t *testing.T) {
	f := newFacade()
	if err := f.Cancel("job-does-not-exist"); err == nil {
		t.Error("expected error canceling unknown job")
	}
}
