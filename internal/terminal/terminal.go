// Package terminal implements the Tool Façade: the job-facing RPC
// operations (execute, status, list, cancel) that sit on top of the PTY
// supervisor, the execution scheduler, the job registry, and the denylist
// matcher. The fifth tool, detect_binaries, is served by internal/rpcstdio
// directly from internal/detect and does not pass through this package. It owns argument defaulting and the exact text
// result shape documented for the transport layer.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tsoernes/enhanced-terminal/internal/denylist"
	"github.com/tsoernes/enhanced-terminal/internal/keepalive"
	"github.com/tsoernes/enhanced-terminal/internal/ptyexec"
	"github.com/tsoernes/enhanced-terminal/internal/registry"
	"github.com/tsoernes/enhanced-terminal/internal/scheduler"
)

// Facade wires the registry, scheduler, and keep-alive manager behind the
// four job tool operations.
type Facade struct {
	Registry  *registry.Registry
	KeepAlive *keepalive.Manager // nil disables credential keep-alive entirely
	Log       *slog.Logger
}

// New builds a Facade. keepAlive may be nil.
func New(reg *registry.Registry, keepAlive *keepalive.Manager, log *slog.Logger) *Facade {
	return &Facade{Registry: reg, KeepAlive: keepAlive, Log: log}
}

// ExecuteArgs is the execute tool's argument record. Pointer fields are
// optional: nil means "absent", letting a fully-zeroed caller-built struct
// be distinguished from one that explicitly set 0 (e.g. output_limit=0,
// async_threshold_secs=0).
type ExecuteArgs struct {
	Command            string
	CWD                string
	Shell              string
	OutputLimit        *int
	TimeoutSecs        *int
	AsyncThresholdSecs *int
	EnvVars            map[string]string
	ForceSync          bool
	CustomDenylist     []string
	Tags               []string
	Stream             bool
}

type normalizedArgs struct {
	command            string
	cwd                string
	shell              string
	outputLimit        int
	timeoutSecs        int
	asyncThresholdSecs int
	envVars            map[string]string
	forceSync          bool
	customDenylist     []string
	tags               []string
	stream             bool
}

func (a ExecuteArgs) normalize() normalizedArgs {
	n := normalizedArgs{
		command:        a.Command,
		cwd:            a.CWD,
		shell:          a.Shell,
		envVars:        a.EnvVars,
		forceSync:      a.ForceSync,
		customDenylist: a.CustomDenylist,
		tags:           a.Tags,
		stream:         a.Stream,
	}
	if n.cwd == "" {
		n.cwd = "."
	}
	if n.shell == "" {
		n.shell = "bash"
	}
	if a.OutputLimit != nil {
		n.outputLimit = *a.OutputLimit
	} else {
		n.outputLimit = 16384
	}
	if a.TimeoutSecs != nil {
		n.timeoutSecs = *a.TimeoutSecs
	}
	if a.AsyncThresholdSecs != nil {
		n.asyncThresholdSecs = *a.AsyncThresholdSecs
	} else {
		n.asyncThresholdSecs = 50
	}
	if n.stream {
		n.asyncThresholdSecs = 0
	}
	return n
}

// ExecuteResult carries the structured outcome alongside the formatted text
// result. JobID is empty when the command was denied or failed to spawn.
type ExecuteResult struct {
	JobID  string
	Text   string
	Denied bool
}

// Execute runs the execute tool. ctx bounds credential priming and the
// foreground scheduling loop's cooperative cancellation.
func (f *Facade) Execute(ctx context.Context, args ExecuteArgs) ExecuteResult {
	n := args.normalize()

	// correlationID ties every log line for this call together; it never
	// appears in the wire result and is not the job's public identifier.
	correlationID := uuid.NewString()
	log := f.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("correlation_id", correlationID)

	if pattern := denylist.FirstMatch(n.command, n.customDenylist); pattern != "" {
		log.Info("command denied", "pattern", pattern)
		return ExecuteResult{Denied: true, Text: deniedText(n.command, pattern)}
	}

	command := n.command
	var primingDiagnostic string
	if f.KeepAlive != nil && keepalive.InvolvesVerb(command) {
		primingDiagnostic = f.KeepAlive.Prime(ctx)
		command = f.KeepAlive.RewriteCommand(command)
	}

	resolvedCWD := ptyexec.ResolveCWD(n.cwd)
	sess, err := ptyexec.Spawn(n.shell, command, resolvedCWD, n.envVars)
	if err != nil {
		log.Warn("spawn failed", "error", err)
		return ExecuteResult{Text: spawnFailureText(n.command, resolvedCWD, err)}
	}

	id := f.Registry.NewID()
	pid := sess.PID
	f.Registry.Register(id, n.command, n.shell, resolvedCWD, &pid, n.tags, n.outputLimit)
	log = log.With("job_id", id)

	ch := ptyexec.StartReader(sess.Ptmx)
	res := scheduler.Run(ctx, f.Registry, id, sess, ch, scheduler.Options{
		AsyncThreshold: time.Duration(n.asyncThresholdSecs) * time.Second,
		Timeout:        time.Duration(n.timeoutSecs) * time.Second,
		ForceSync:      n.forceSync,
		OutputLimit:    n.outputLimit,
	})

	if res.SwitchedToAsync {
		log.Info("switched to background", "timeout_remaining", res.RemainingTimeout)
		scheduler.Monitor(f.Registry, id, sess, ch, res.RemainingTimeout)
	} else {
		log.Info("execute finished synchronously", "status", statusWord(res.Status))
	}

	text := executeResultText(id, n.command, resolvedCWD, res, n.stream) + primingDiagnostic
	return ExecuteResult{JobID: id, Text: text}
}

func deniedText(command, pattern string) string {
	return fmt.Sprintf("Command: %s\nStatus: DENIED\nDenial Reason: command matches denylist pattern %q\n", command, pattern)
}

func spawnFailureText(command, cwd string, err error) string {
	return fmt.Sprintf("Command: %s\nWorking Directory: %s\nStatus: FAILED\nError: %v\n", command, cwd, err)
}

func executeResultText(id, command, cwd string, res scheduler.Result, stream bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job ID: %s\n", id)
	fmt.Fprintf(&b, "Command: %s\n", command)
	fmt.Fprintf(&b, "Working Directory: %s\n", cwd)

	switch {
	case stream:
		if res.SwitchedToAsync {
			fmt.Fprintf(&b, "Duration: %.0fs (switched to background)\n", res.Duration.Seconds())
		} else {
			fmt.Fprintf(&b, "Duration: %.0fs\n", res.Duration.Seconds())
		}
		b.WriteString("Status: STREAMING MODE\n")
	case res.SwitchedToAsync:
		fmt.Fprintf(&b, "Duration: %.0fs (switched to background)\n", res.Duration.Seconds())
		b.WriteString("Status: SWITCHED TO BACKGROUND\n")
	case res.TimedOut:
		fmt.Fprintf(&b, "Duration: %.0fs\n", res.Duration.Seconds())
		b.WriteString("Status: TIMED OUT\n")
	default:
		fmt.Fprintf(&b, "Duration: %.0fs\n", res.Duration.Seconds())
		if res.ExitCode != nil {
			fmt.Fprintf(&b, "Exit Code: %d\n", *res.ExitCode)
			fmt.Fprintf(&b, "Success: %v\n", *res.ExitCode == 0)
		}
		if res.Status == registry.Failed {
			b.WriteString("Status: FAILED\n")
		} else {
			b.WriteString("Status: COMPLETED\n")
		}
	}

	b.WriteString("\nOutput:\n")
	b.WriteString(res.Preview)
	if res.Truncated {
		b.WriteString("\n\n[Output truncated due to size limit]")
	}
	return b.String()
}

// statusWord renders job status vocabulary matching the wire spellings:
// Running, Completed, Failed, TimedOut, Canceled.
func statusWord(s registry.Status) string {
	switch s {
	case registry.Running:
		return "Running"
	case registry.Completed:
		return "Completed"
	case registry.Failed:
		return "Failed"
	case registry.TimedOut:
		return "TimedOut"
	case registry.Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}
