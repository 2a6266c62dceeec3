package chat

import "net"

const (
	// MaxSessions is the default registry capacity.
	MaxSessions = 128
	// MaxNameLen bounds display names in bytes; longer names are silently truncated.
	MaxNameLen = 31
	// outboxSize bounds the per-session outbound queue. A recipient whose
	// queue is full loses the line rather than stalling the registry.
	outboxSize = 32
)

// Session is the registry's record of one connected client. The slot is
// reset in place when the session dies so a stale identity never leaks
// into a reused slot.
type Session struct {
	id    int64
	name  string
	conn  net.Conn
	alive bool
	out   chan string // drained by the session's writer goroutine
}

// SessionInfo is the (id, name) pair handed out to callers.
type SessionInfo struct {
	ID   int64
	Name string
}

var (
	ErrServerFull = errorString("server_full")
	ErrClosed     = errorString("registry_closed")
)

type errorString string

func (e errorString) Error() string { return string(e) }
