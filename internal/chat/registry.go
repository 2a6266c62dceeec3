package chat

import (
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

// Registry is the authoritative table of live sessions: a fixed-capacity
// slot table scanned linearly, with process-unique ids that grow
// monotonically and are never handed out twice. One mutex serializes every
// table access; broadcasts enqueue onto per-session outboxes under that
// mutex and never perform network I/O while holding it.
type Registry struct {
	mu     sync.Mutex
	slots  []Session
	nextID int64
	closed bool
	logger zerolog.Logger
}

func NewRegistry(capacity int, logger zerolog.Logger) *Registry {
	if capacity <= 0 {
		capacity = MaxSessions
	}
	return &Registry{
		slots:  make([]Session, capacity),
		nextID: 1,
		logger: logger,
	}
}

// Register claims a free slot for conn, assigns the next id and the
// default Client-<id> name, and starts the session's writer goroutine.
// Returns ErrServerFull when every slot is live and ErrClosed once
// shutdown has begun.
func (r *Registry) Register(conn net.Conn) (SessionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return SessionInfo{}, ErrClosed
	}

	slot := -1
	for i := range r.slots {
		if !r.slots[i].alive {
			slot = i
			break
		}
	}
	if slot < 0 {
		return SessionInfo{}, ErrServerFull
	}

	s := &r.slots[slot]
	s.id = r.nextID
	r.nextID++
	s.name = fmt.Sprintf("Client-%d", s.id)
	s.conn = conn
	s.alive = true
	s.out = make(chan string, outboxSize)
	startWriter(conn, s.out)

	connectedSessions.Inc()
	r.logger.Info().Int64("id", s.id).Str("name", s.name).Msg("session registered")
	return SessionInfo{ID: s.id, Name: s.name}, nil
}

// Unregister marks the session dead and releases its slot. Idempotent:
// the return value reports whether the session was still live, so callers
// racing a shutdown can tell who actually tore it down.
func (r *Registry) Unregister(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.findLive(id)
	if s == nil {
		return false
	}
	r.release(s)
	r.logger.Info().Int64("id", id).Msg("session unregistered")
	return true
}

// Rename replaces the stored display name, truncating to MaxNameLen bytes
// without complaint. Returns the stored name and whether the session was
// found.
func (r *Registry) Rename(id int64, name string) (string, bool) {
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.findLive(id)
	if s == nil {
		return "", false
	}
	s.name = name
	return s.name, true
}

// Lookup returns the live session with the given id, if any. Dead slots
// have id zero and never match.
func (r *Registry) Lookup(id int64) (SessionInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.findLive(id)
	if s == nil {
		return SessionInfo{}, false
	}
	return SessionInfo{ID: s.id, Name: s.name}, true
}

// Snapshot returns every live (id, name) pair in slot order, captured in
// one lock hold.
func (r *Registry) Snapshot() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]SessionInfo, 0, len(r.slots))
	for i := range r.slots {
		if r.slots[i].alive {
			list = append(list, SessionInfo{ID: r.slots[i].id, Name: r.slots[i].name})
		}
	}
	return list
}

// Broadcast enqueues line for every live session.
func (r *Registry) Broadcast(line string) {
	r.BroadcastExcept(line, 0)
}

// BroadcastExcept enqueues line for every live session except the one
// with the given id (0 excludes nobody). Membership is captured under the
// lock, so each broadcast is atomic with respect to join and leave.
func (r *Registry) BroadcastExcept(line string, exceptID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		s := &r.slots[i]
		if s.alive && s.id != exceptID {
			enqueue(s, line)
		}
	}
}

// SendTo enqueues line for exactly one session. A vanished target is a
// silent no-op: delivery is best-effort.
func (r *Registry) SendTo(id int64, line string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.findLive(id)
	if s == nil {
		return false
	}
	enqueue(s, line)
	return true
}

// Shutdown delivers the shutdown notice to every live session exactly
// once, releases every slot, and refuses all further registration.
// Idempotent and safe against concurrent register/unregister calls.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for i := range r.slots {
		s := &r.slots[i]
		if !s.alive {
			continue
		}
		enqueue(s, "[Server] Shutting down.")
		r.release(s)
	}
	r.logger.Info().Msg("registry closed")
}

// findLive returns the live slot holding id. Callers hold r.mu.
func (r *Registry) findLive(id int64) *Session {
	for i := range r.slots {
		if r.slots[i].alive && r.slots[i].id == id {
			return &r.slots[i]
		}
	}
	return nil
}

// release resets a slot for reuse. Closing out stops the writer, which
// closes the connection after draining. Callers hold r.mu.
func (r *Registry) release(s *Session) {
	close(s.out)
	s.alive = false
	s.name = ""
	s.id = 0
	s.conn = nil
	s.out = nil
	connectedSessions.Dec()
}

func enqueue(s *Session, line string) {
	// Non-blocking send: a slow recipient loses the line instead of
	// stalling every other recipient behind the registry lock.
	select {
	case s.out <- line:
	default:
	}
}
