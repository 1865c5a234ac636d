//go:build unix

package ptyexec

import (
	"strings"
	"testing"
	"time"
)

func TestSpawnAndReaderCapturesOutput(t *testing.T) {
	sess, err := Spawn("sh", "echo hello-pty", ".", nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer sess.Close()

	ch := StartReader(sess.Ptmx)

	var out strings.Builder
	deadline := time.After(5 * time.Second)
loop:
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				break loop
			}
			switch msg.Kind {
			case Data:
				out.Write(msg.Bytes)
			case Eof, Err:
				break loop
			}
		case <-deadline:
			t.Fatal("timed out waiting for pty output")
		}
	}

	if !strings.Contains(out.String(), "hello-pty") {
		t.Errorf("output = %q, want it to contain hello-pty", out.String())
	}

	sess.Cmd.Wait()
}

func TestResolveCWDFallsBackOnError(t *testing.T) {
	if got := ResolveCWD("relative/path"); got == "" {
		t.Error("ResolveCWD returned empty string")
	}
}
