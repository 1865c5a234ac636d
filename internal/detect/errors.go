package detect

import (
	"errors"
	"time"
)

var errEmptyVersion = errors.New("empty version output")

// timeoutError marks a version probe that exceeded its allotted time, so
// detectVersion can stop trying further invocation styles instead of
// burning the remaining timeout budget on attempts just as likely to hang.
type timeoutError struct{ timeout time.Duration }

func (e timeoutError) Error() string {
	return "version probe timeout after " + e.timeout.String()
}

func isTimeoutErr(err error) bool {
	_, ok := err.(timeoutError)
	return ok
}
