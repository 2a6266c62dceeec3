package chat

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/audit"
)

// sessionHandler interprets one client's input stream for the session's
// lifetime. It caches its own id and name; the name cache is refreshed
// from the registry's stored (possibly truncated) value on rename.
type sessionHandler struct {
	reg    *Registry
	aud    *audit.Log
	conn   net.Conn
	id     int64
	name   string
	logger zerolog.Logger
}

func newSessionHandler(reg *Registry, aud *audit.Log, conn net.Conn, info SessionInfo, logger zerolog.Logger) *sessionHandler {
	return &sessionHandler{
		reg:    reg,
		aud:    aud,
		conn:   conn,
		id:     info.ID,
		name:   info.Name,
		logger: logger.With().Int64("id", info.ID).Logger(),
	}
}

// run reads and dispatches lines until the stream ends, the client quits,
// or shutdown closes the connection. There is no way back in once the
// loop exits.
func (h *sessionHandler) run() {
	defer h.teardown()

	h.reg.SendTo(h.id, fmt.Sprintf("Welcome %s (ID:%d)\nCommands: /name <new>, /list, /msg <id> <text>, /quit", h.name, h.id))
	h.reg.BroadcastExcept(fmt.Sprintf("[Server] %s (ID:%d) joined.", h.name, h.id), h.id)
	h.aud.Connect(h.id, h.name)

	reader := bufio.NewReader(h.conn)
	for {
		line, err := readLine(reader)
		if err != nil {
			return
		}
		if line == "" {
			// Blank lines are discarded, not acted on. Peers send them.
			continue
		}

		start := time.Now()
		cmd, quit := h.dispatch(line)
		commandsTotal.WithLabelValues(cmd).Inc()
		commandDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
		if quit {
			return
		}
	}
}

// dispatch routes one non-empty line and reports the command label and
// whether the session should close. Matching mirrors the wire contract:
// prefix matches, with /name and /msg requiring their trailing space, so
// a bare "/name" falls through to the unknown-command reply.
func (h *sessionHandler) dispatch(line string) (string, bool) {
	if !strings.HasPrefix(line, "/") {
		h.reg.BroadcastExcept(fmt.Sprintf("%s (ID:%d): %s", h.name, h.id, line), h.id)
		h.aud.Message(h.id, h.name, line)
		return "broadcast", false
	}

	switch {
	case strings.HasPrefix(line, "/quit"):
		return "quit", true
	case strings.HasPrefix(line, "/name "):
		h.handleName(strings.TrimPrefix(line, "/name "))
		return "name", false
	case strings.HasPrefix(line, "/list"):
		h.handleList()
		return "list", false
	case strings.HasPrefix(line, "/msg "):
		h.handleMsg(strings.TrimPrefix(line, "/msg "))
		return "msg", false
	default:
		h.reg.SendTo(h.id, "Unknown command.")
		return "unknown", false
	}
}

func (h *sessionHandler) handleName(arg string) {
	if arg == "" {
		h.reg.SendTo(h.id, "Usage: /name <newname>")
		return
	}
	name, ok := h.reg.Rename(h.id, arg)
	if !ok {
		return
	}
	h.name = name
	h.reg.Broadcast(fmt.Sprintf("[Server] ID %d is now known as %s", h.id, name))
	h.aud.Rename(h.id, name)
	h.logger.Info().Str("name", name).Msg("session renamed")
}

func (h *sessionHandler) handleList() {
	var b strings.Builder
	b.WriteString("=== Connected Users ===\n")
	for _, s := range h.reg.Snapshot() {
		fmt.Fprintf(&b, "ID:%d  %s\n", s.ID, s.Name)
	}
	b.WriteString("=======================")
	h.reg.SendTo(h.id, b.String())
}

func (h *sessionHandler) handleMsg(rest string) {
	id, text := splitTarget(rest)
	target, ok := h.reg.Lookup(id)
	if !ok {
		h.reg.SendTo(h.id, "User not found.")
		return
	}
	h.reg.SendTo(target.ID, fmt.Sprintf("[PM from %s (ID:%d)]: %s", h.name, h.id, text))
	h.reg.SendTo(h.id, "[PM sent]")
	h.aud.PrivateMessage(h.id, target.ID, text)
}

// teardown announces the disconnect and releases the slot. When shutdown
// got there first the unregister reports dead and nothing is announced or
// audited twice.
func (h *sessionHandler) teardown() {
	if !h.reg.Unregister(h.id) {
		return
	}
	h.reg.Broadcast(fmt.Sprintf("[Server] %s (ID:%d) disconnected.", h.name, h.id))
	h.aud.Disconnect(h.id, h.name)
	h.logger.Info().Msg("session closed")
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
