package ptyexec

import (
	"errors"
	"io"
	"os"
	"runtime"
	"time"
)

// MsgKind discriminates the Output Reader's messages.
type MsgKind int

const (
	// Data carries bytes read from the PTY master.
	Data MsgKind = iota
	// Eof signals the child closed its end (process exit).
	Eof
	// Err signals an unrecoverable read error.
	Err
)

// Msg is one Output Reader event.
type Msg struct {
	Kind  MsgKind
	Bytes []byte
	Err   error
}

const readChunk = 4096
const wouldBlockBackoff = 10 * time.Millisecond

// StartReader launches the blocking PTY-drain loop on a dedicated OS thread
// (PTY reads are unavoidably blocking) and returns a channel of Msg. The
// loop terminates after sending Eof or Err and then closes ch. There is no
// stop signal: if the caller stops draining ch while the buffer is full,
// the loop blocks on its next send and does not terminate.
func StartReader(ptmx *os.File) <-chan Msg {
	ch := make(chan Msg, 64)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(ch)

		buf := make([]byte, readChunk)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				ch <- Msg{Kind: Data, Bytes: data}
			}
			if err != nil {
				if isWouldBlock(err) {
					time.Sleep(wouldBlockBackoff)
					continue
				}
				if errors.Is(err, io.EOF) || errors.Is(err, errIO) {
					ch <- Msg{Kind: Eof}
				} else {
					ch <- Msg{Kind: Err, Err: err}
				}
				return
			}
		}
	}()
	return ch
}

func isWouldBlock(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, errWouldBlock)
}
