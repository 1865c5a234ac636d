package registry

import "testing"

func TestNewIDMonotonicallyIncreasing(t *testing.T) {
	r := New()
	ids := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := r.NewID()
		if ids[id] {
			t.Fatalf("duplicate id %s", id)
		}
		ids[id] = true
	}
	if got := r.NewID(); got != "job-6" {
		t.Errorf("NewID() = %q, want job-6", got)
	}
}

func TestRegisterAppendCompleteRoundTrip(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "echo hi", "bash", "/tmp", nil, []string{"a", "a", "b"}, 16384)

	r.AppendOutput(id, []byte("hello "))
	r.AppendOutput(id, []byte("world"))

	code := 0
	r.Complete(id, &code, Completed)

	job, ok := r.Get(id)
	if !ok {
		t.Fatal("job not found")
	}
	if job.FullOutput != "hello world" {
		t.Errorf("FullOutput = %q", job.FullOutput)
	}
	if job.Output != "hello world" {
		t.Errorf("Output = %q", job.Output)
	}
	if job.Status != Completed {
		t.Errorf("Status = %v", job.Status)
	}
	if job.ExitCode == nil || *job.ExitCode != 0 {
		t.Errorf("ExitCode = %v", job.ExitCode)
	}
	if job.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
	if len(job.Tags) != 2 {
		t.Errorf("Tags = %v, want deduped to 2", job.Tags)
	}
}

func TestCompleteIsNoOpOnceTerminal(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 1024)

	r.Complete(id, intPtr(1), Failed)
	r.Complete(id, intPtr(0), Completed) // must be ignored

	job, _ := r.Get(id)
	if job.Status != Failed {
		t.Errorf("Status = %v, want Failed (first completion wins)", job.Status)
	}
	if job.ExitCode == nil || *job.ExitCode != 1 {
		t.Errorf("ExitCode = %v, want 1", job.ExitCode)
	}
}

func TestOutputLimitZeroTruncatesImmediately(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 0)

	r.AppendOutput(id, []byte("x"))

	job, _ := r.Get(id)
	if job.Output != "" {
		t.Errorf("Output = %q, want empty", job.Output)
	}
	if !job.Truncated {
		t.Error("Truncated = false, want true")
	}
	if job.FullOutput != "x" {
		t.Errorf("FullOutput = %q", job.FullOutput)
	}
}

func TestOutputTruncationInvariant(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 4)

	r.AppendOutput(id, []byte("ab"))
	r.AppendOutput(id, []byte("cdef")) // overflows by 2

	job, _ := r.Get(id)
	if job.Output != "abcd" {
		t.Errorf("Output = %q, want abcd", job.Output)
	}
	if !job.Truncated {
		t.Error("Truncated = false, want true")
	}
	if job.FullOutput != "abcdef" {
		t.Errorf("FullOutput = %q", job.FullOutput)
	}
	if len(job.FullOutput) > len(job.Output) && !job.Truncated {
		t.Error("invariant: truncated must hold when full_output longer than output")
	}
}

func TestIncrementalOutputConcatenatesToFullOutput(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 1024)

	r.AppendOutput(id, []byte("X"))
	first, running, ok := r.IncrementalOutput(id)
	if !ok || first != "X" || !running {
		t.Fatalf("first read = %q running=%v ok=%v", first, running, ok)
	}

	r.AppendOutput(id, []byte("Y"))
	r.Complete(id, nil, Completed)
	second, running, ok := r.IncrementalOutput(id)
	if !ok || second != "Y" || running {
		t.Fatalf("second read = %q running=%v ok=%v", second, running, ok)
	}

	third, _, ok := r.IncrementalOutput(id)
	if !ok || third != "" {
		t.Fatalf("third read = %q, want empty", third)
	}
}

func TestResetCursorReplaysFromStart(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 1024)
	r.AppendOutput(id, []byte("abc"))
	r.IncrementalOutput(id)
	r.ResetCursor(id)

	data, _, _ := r.IncrementalOutput(id)
	if data != "abc" {
		t.Errorf("IncrementalOutput after reset = %q, want abc", data)
	}
}

func TestRangePagination(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 1024)
	r.AppendOutput(id, []byte("0123456789"))

	slice, hasMore, total, ok := r.Range(id, 2, 3)
	if !ok || slice != "234" || !hasMore || total != 10 {
		t.Errorf("Range(2,3) = %q hasMore=%v total=%d", slice, hasMore, total)
	}

	slice, hasMore, total, ok = r.Range(id, 100, 5)
	if !ok || slice != "" || hasMore || total != 10 {
		t.Errorf("Range(100,5) = %q hasMore=%v total=%d, want empty/false/10", slice, hasMore, total)
	}
}

func TestListFiltersAndSortsNewestFirst(t *testing.T) {
	r := New()
	id1 := r.NewID()
	r.Register(id1, "cmd1", "bash", "/a", nil, []string{"build"}, 1024)
	id2 := r.NewID()
	r.Register(id2, "cmd2", "bash", "/b", nil, []string{"ci"}, 1024)
	r.Complete(id2, intPtr(0), Completed)

	running := r.List(ListFilter{Statuses: []Status{Running}}, NewestFirst)
	if len(running) != 1 || running[0].JobID != id1 {
		t.Errorf("running filter = %+v", running)
	}

	byTag := r.List(ListFilter{Tag: "ci"}, NewestFirst)
	if len(byTag) != 1 || byTag[0].JobID != id2 {
		t.Errorf("tag filter = %+v", byTag)
	}

	all := r.List(ListFilter{}, NewestFirst)
	if len(all) != 2 || all[0].JobID != id2 {
		t.Errorf("all jobs newest-first = %+v", all)
	}
}

func TestAddTagsUnionPreservesOrder(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, []string{"a"}, 1024)
	r.AddTags(id, []string{"b", "a", "c"})

	job, _ := r.Get(id)
	want := []string{"a", "b", "c"}
	if len(job.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", job.Tags, want)
	}
	for i, tag := range want {
		if job.Tags[i] != tag {
			t.Errorf("Tags[%d] = %q, want %q", i, job.Tags[i], tag)
		}
	}
}

func TestCancelOnlyTransitionsRunningJobs(t *testing.T) {
	r := New()
	id := r.NewID()
	pid := 123456789 // unlikely to exist; the job is terminal before Cancel, so no signal is sent
	r.Register(id, "sleep 30", "bash", ".", &pid, nil, 1024)
	r.Complete(id, intPtr(0), Completed)

	if err := r.Cancel(id); err == nil {
		t.Error("Cancel on a terminal job should fail")
	}
}

func TestDeleteRemovesJob(t *testing.T) {
	r := New()
	id := r.NewID()
	r.Register(id, "cmd", "bash", ".", nil, nil, 1024)
	r.Delete(id)
	if _, ok := r.Get(id); ok {
		t.Error("job still present after Delete")
	}
}

func intPtr(v int) *int { return &v }
