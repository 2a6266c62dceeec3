package chat

import (
	"bufio"
	"net"
)

// startWriter drains out onto conn, one newline-terminated line per
// message. The writer owns the final close of conn, so lines queued
// before the outbox closed (the shutdown notice included) are flushed
// before the handle dies. Closing out stops the writer.
func startWriter(conn net.Conn, out <-chan string) {
	go func() {
		defer conn.Close()
		w := bufio.NewWriter(conn)
		for msg := range out {
			// Best-effort: on a broken connection keep draining so the
			// registry side never blocks behind a dead peer.
			if _, err := w.WriteString(msg + "\n"); err != nil {
				continue
			}
			if err := w.Flush(); err != nil {
				continue
			}
		}
	}()
}
