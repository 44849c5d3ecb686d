package transport

import (
	"net"
	"time"
)

// readTick bounds each blocking read so a context cancellation is noticed
// promptly without busy-looping.
const readTick = 100 * time.Millisecond

func deadlineIn(d time.Duration) time.Time {
	return time.Now().Add(d)
}

func isTimeout(e error) bool {
	ne, ok := e.(net.Error)
	return ok && ne.Timeout()
}
