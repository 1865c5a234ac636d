//go:build !unix

package ptyexec

import "errors"

var errWouldBlock = errors.New("would block (unsupported platform sentinel)")

// errIO has no PTY-exit meaning on non-unix platforms; the sentinel never
// matches a real error.
var errIO = errors.New("io error (unsupported platform sentinel)")
