// Package rpcstdio realizes the line-oriented stdio RPC transport: one JSON
// request per line on stdin, one JSON response per line on stdout. The
// transport itself carries no domain logic; it decodes a tool name and
// argument record and dispatches to internal/terminal's Tool Façade.
//
// The wire protocol is intentionally minimal (this layer is a collaborator,
// not something the spec constrains beyond "decoded argument records in,
// text results out"): no batching, no streaming notifications, no request
// IDs beyond what the client echoes back itself.
package rpcstdio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tsoernes/enhanced-terminal/internal/detect"
	"github.com/tsoernes/enhanced-terminal/internal/terminal"
)

// Request is one decoded line from stdin.
type Request struct {
	ID   string          `json:"id,omitempty"`
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

// Response is one encoded line written to stdout.
type Response struct {
	ID     string `json:"id,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server dispatches decoded requests to the Tool Façade and detect package.
type Server struct {
	Facade *terminal.Facade
	Log    *slog.Logger
}

// New builds a Server.
func New(facade *terminal.Facade, log *slog.Logger) *Server {
	return &Server{Facade: facade, Log: log}
}

// Serve reads newline-delimited JSON requests from r and writes
// newline-delimited JSON responses to w until r is exhausted, then waits
// for in-flight requests. ctx is passed to each request's handler; its
// cancellation does not interrupt the blocking read of r. One goroutine
// per request, so a long-running execute does not block concurrent
// status/list/cancel calls.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var writeMu writeSerializer
	writeMu.w = w
	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			writeMu.writeResponse(Response{Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		inFlight.Add(1)
		go func(req Request) {
			defer inFlight.Done()
			resp := s.dispatch(ctx, req)
			writeMu.writeResponse(resp)
		}(req)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Tool {
	case "enhanced_terminal":
		return s.handleExecute(ctx, req)
	case "enhanced_terminal_job_status":
		return s.handleStatus(req)
	case "enhanced_terminal_job_list":
		return s.handleList(req)
	case "enhanced_terminal_job_cancel":
		return s.handleCancel(req)
	case "detect_binaries":
		return s.handleDetectBinaries(req)
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown tool %q", req.Tool)}
	}
}

type executeWireArgs struct {
	Command            string            `json:"command"`
	CWD                string            `json:"cwd"`
	Shell              string            `json:"shell"`
	OutputLimit        *int              `json:"output_limit"`
	TimeoutSecs        *int              `json:"timeout_secs"`
	AsyncThresholdSecs *int              `json:"async_threshold_secs"`
	EnvVars            map[string]string `json:"env_vars"`
	ForceSync          bool              `json:"force_sync"`
	CustomDenylist     []string          `json:"custom_denylist"`
	Tags               []string          `json:"tags"`
	Stream             bool              `json:"stream"`
}

func (s *Server) handleExecute(ctx context.Context, req Request) Response {
	var wire executeWireArgs
	if err := json.Unmarshal(req.Args, &wire); err != nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("invalid execute args: %v", err)}
	}
	if wire.Command == "" {
		return Response{ID: req.ID, Error: "command must not be empty"}
	}

	res := s.Facade.Execute(ctx, terminal.ExecuteArgs{
		Command:            wire.Command,
		CWD:                wire.CWD,
		Shell:              wire.Shell,
		OutputLimit:        wire.OutputLimit,
		TimeoutSecs:        wire.TimeoutSecs,
		AsyncThresholdSecs: wire.AsyncThresholdSecs,
		EnvVars:            wire.EnvVars,
		ForceSync:          wire.ForceSync,
		CustomDenylist:     wire.CustomDenylist,
		Tags:               wire.Tags,
		Stream:             wire.Stream,
	})
	return Response{ID: req.ID, Result: res.Text}
}

type statusWireArgs struct {
	JobID       string `json:"job_id"`
	Incremental *bool  `json:"incremental"`
	Offset      int    `json:"offset"`
	Limit       int    `json:"limit"`
}

func (s *Server) handleStatus(req Request) Response {
	var wire statusWireArgs
	if err := json.Unmarshal(req.Args, &wire); err != nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("invalid status args: %v", err)}
	}
	if wire.JobID == "" {
		return Response{ID: req.ID, Error: "job_id must not be empty"}
	}

	incremental := true
	if wire.Incremental != nil {
		incremental = *wire.Incremental
	}

	text, ok := s.Facade.Status(terminal.StatusArgs{
		JobID:       wire.JobID,
		Incremental: incremental,
		Offset:      wire.Offset,
		Limit:       wire.Limit,
	})
	if !ok {
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown job_id %q", wire.JobID)}
	}
	return Response{ID: req.ID, Result: text}
}

type listWireArgs struct {
	MaxJobs      int      `json:"max_jobs"`
	StatusFilter []string `json:"status_filter"`
	TagFilter    string   `json:"tag_filter"`
	CWDFilter    string   `json:"cwd_filter"`
	SortOrder    string   `json:"sort_order"`
}

func (s *Server) handleList(req Request) Response {
	var wire listWireArgs
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &wire); err != nil {
			return Response{ID: req.ID, Error: fmt.Sprintf("invalid list args: %v", err)}
		}
	}
	if wire.SortOrder == "" {
		wire.SortOrder = "newest"
	}

	jobs := s.Facade.List(terminal.ListArgs{
		MaxJobs:      wire.MaxJobs,
		StatusFilter: wire.StatusFilter,
		TagFilter:    wire.TagFilter,
		CWDFilter:    wire.CWDFilter,
		SortOrder:    wire.SortOrder,
	})

	data, err := json.Marshal(jobs)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: string(data)}
}

type cancelWireArgs struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleCancel(req Request) Response {
	var wire cancelWireArgs
	if err := json.Unmarshal(req.Args, &wire); err != nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("invalid cancel args: %v", err)}
	}
	if err := s.Facade.Cancel(wire.JobID); err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: "canceled"}
}

type detectWireArgs struct {
	FilterCategories []string `json:"filter_categories"`
	MaxConcurrency   int      `json:"max_concurrency"`
	VersionTimeoutMs int      `json:"version_timeout_ms"`
	IncludeMissing   bool     `json:"include_missing"`
}

func (s *Server) handleDetectBinaries(req Request) Response {
	wire := detectWireArgs{MaxConcurrency: 16, VersionTimeoutMs: 1500}
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &wire); err != nil {
			return Response{ID: req.ID, Error: fmt.Sprintf("invalid detect_binaries args: %v", err)}
		}
	}

	reports := detect.DetectBinaries(
		wire.FilterCategories,
		wire.MaxConcurrency,
		time.Duration(wire.VersionTimeoutMs)*time.Millisecond,
		wire.IncludeMissing,
	)
	data, err := json.Marshal(reports)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: string(data)}
}
