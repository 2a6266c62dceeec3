package chat

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// lineChan feeds every line read from conn into the returned channel and
// closes it when the connection ends.
func lineChan(t *testing.T, conn net.Conn) <-chan string {
	t.Helper()
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func nextLine(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatalf("connection closed while waiting for a line")
		}
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for a line")
	}
	return ""
}

func expectLine(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	if got := nextLine(t, ch); got != want {
		t.Fatalf("got line %q, want %q", got, want)
	}
}

// expectNoLine asserts that nothing arrives within a short window and the
// connection stays open.
func expectNoLine(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatalf("connection closed unexpectedly")
		}
		t.Fatalf("unexpected line %q", s)
	case <-time.After(120 * time.Millisecond):
	}
}

// drainUntilClosed collects every remaining line until the connection
// closes.
func drainUntilClosed(t *testing.T, ch <-chan string) []string {
	t.Helper()
	var lines []string
	deadline := time.NewTimer(2 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return lines
			}
			lines = append(lines, s)
		case <-deadline.C:
			t.Fatalf("timeout waiting for connection to close (got %v)", lines)
		}
	}
}

func sendLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}
