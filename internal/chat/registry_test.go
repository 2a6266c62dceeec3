package chat

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// pipeSession registers one end of a net.Pipe and returns the session
// info plus a line channel on the peer end.
func pipeSession(t *testing.T, r *Registry) (SessionInfo, <-chan string) {
	t.Helper()
	server, peer := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = peer.Close()
	})
	info, err := r.Register(server)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return info, lineChan(t, peer)
}

func TestRegistry_IDsUniqueAndIncreasing(t *testing.T) {
	r := NewRegistry(8, zerolog.Nop())

	var prev int64
	for i := 0; i < 5; i++ {
		info, _ := pipeSession(t, r)
		if info.ID <= prev {
			t.Fatalf("id %d not greater than previous %d", info.ID, prev)
		}
		prev = info.ID
	}
	if prev != 5 {
		t.Fatalf("expected last id 5, got %d", prev)
	}
}

func TestRegistry_IDsNeverReused(t *testing.T) {
	r := NewRegistry(1, zerolog.Nop())

	first, _ := pipeSession(t, r)
	if first.ID != 1 || first.Name != "Client-1" {
		t.Fatalf("unexpected first session: %+v", first)
	}
	if !r.Unregister(first.ID) {
		t.Fatal("unregister reported dead session")
	}

	second, _ := pipeSession(t, r)
	if second.ID != 2 || second.Name != "Client-2" {
		t.Fatalf("slot reuse leaked identity: %+v", second)
	}
	if _, ok := r.Lookup(first.ID); ok {
		t.Fatal("dead id still resolvable")
	}
	if got := r.Snapshot(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestRegistry_FullTableRejectsAndStaysUnchanged(t *testing.T) {
	r := NewRegistry(2, zerolog.Nop())

	pipeSession(t, r)
	pipeSession(t, r)
	before := r.Snapshot()

	server, peer := net.Pipe()
	defer server.Close()
	defer peer.Close()
	if _, err := r.Register(server); !errors.Is(err, ErrServerFull) {
		t.Fatalf("expected ErrServerFull, got %v", err)
	}

	after := r.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("table changed on rejected register: %+v -> %+v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("table changed on rejected register: %+v -> %+v", before, after)
		}
	}
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	r := NewRegistry(4, zerolog.Nop())
	info, _ := pipeSession(t, r)

	if !r.Unregister(info.ID) {
		t.Fatal("first unregister failed")
	}
	if r.Unregister(info.ID) {
		t.Fatal("second unregister reported live session")
	}
}

func TestRegistry_RenameTruncatesAndIsVisible(t *testing.T) {
	r := NewRegistry(4, zerolog.Nop())
	info, _ := pipeSession(t, r)

	long := strings.Repeat("x", 50)
	name, ok := r.Rename(info.ID, long)
	if !ok {
		t.Fatal("rename failed")
	}
	if name != long[:MaxNameLen] {
		t.Fatalf("expected truncation to %d bytes, got %q", MaxNameLen, name)
	}

	got, ok := r.Lookup(info.ID)
	if !ok || got.Name != name {
		t.Fatalf("lookup after rename: %+v", got)
	}
	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].Name != name {
		t.Fatalf("snapshot after rename: %+v", snap)
	}

	if _, ok := r.Rename(999, "ghost"); ok {
		t.Fatal("rename of missing id succeeded")
	}
}

func TestRegistry_BroadcastExceptSkipsOnlySender(t *testing.T) {
	r := NewRegistry(4, zerolog.Nop())
	s1, ch1 := pipeSession(t, r)
	_, ch2 := pipeSession(t, r)
	_, ch3 := pipeSession(t, r)

	r.BroadcastExcept("hello room", s1.ID)
	expectLine(t, ch2, "hello room")
	expectLine(t, ch3, "hello room")
	expectNoLine(t, ch1)

	r.Broadcast("for everyone")
	expectLine(t, ch1, "for everyone")
	expectLine(t, ch2, "for everyone")
	expectLine(t, ch3, "for everyone")
}

func TestRegistry_SendToMissingIsNoop(t *testing.T) {
	r := NewRegistry(4, zerolog.Nop())
	_, ch1 := pipeSession(t, r)

	if r.SendTo(42, "anyone there") {
		t.Fatal("SendTo reported delivery to a missing session")
	}
	expectNoLine(t, ch1)
}

func TestRegistry_ShutdownNotifiesOnceAndEmpties(t *testing.T) {
	r := NewRegistry(4, zerolog.Nop())
	_, ch1 := pipeSession(t, r)
	_, ch2 := pipeSession(t, r)

	r.Shutdown()
	r.Shutdown() // second call must be a no-op

	for _, ch := range []<-chan string{ch1, ch2} {
		notices := 0
		for _, line := range drainUntilClosed(t, ch) {
			if line == "[Server] Shutting down." {
				notices++
			}
		}
		if notices != 1 {
			t.Fatalf("expected exactly one shutdown notice, got %d", notices)
		}
	}

	if snap := r.Snapshot(); len(snap) != 0 {
		t.Fatalf("snapshot not empty after shutdown: %+v", snap)
	}

	server, peer := net.Pipe()
	defer server.Close()
	defer peer.Close()
	if _, err := r.Register(server); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}
