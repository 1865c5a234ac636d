//go:build unix

package ptyexec

import "syscall"

var errWouldBlock = syscall.EAGAIN

// errIO is what a PTY master read returns once the child holding the slave
// end has exited — the kernel's way of signaling EOF on a PTY, not a real
// I/O failure.
var errIO = syscall.EIO
