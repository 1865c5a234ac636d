package rpcstdio

import (
	"encoding/json"
	"io"
	"sync"
)

// writeSerializer guards concurrent response writes so lines from
// different in-flight requests never interleave.
type writeSerializer struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *writeSerializer) writeResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(Response{ID: resp.ID, Error: "failed to encode response"})
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Write(data)
}
