// Package client implements the interactive terminal peer: it relays
// lines between stdin/stdout and one server connection.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

var errDisconnected = errors.New("disconnected from server")

// Run connects to addr and relays until the server closes the connection,
// stdin ends, /quit is typed, or ctx is cancelled. Cancellation (the
// interrupt case) sends /quit before dropping the connection.
func Run(ctx context.Context, addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}

	fmt.Printf("Connected to %s\n", addr)
	fmt.Println("Type messages. Commands: /name <new>, /list, /msg <id> <text>, /quit")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Server -> terminal. Returning an error cancels gctx so the
		// watcher below releases the connection.
		_, _ = io.Copy(os.Stdout, conn)
		fmt.Fprintln(os.Stderr, "[Disconnected from server]")
		return errDisconnected
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			// Interrupted locally: tell the server before hanging up.
			_, _ = conn.Write([]byte("/quit\n"))
		}
		_ = conn.Close()
		return nil
	})

	// Terminal -> server. Stdin reads cannot be unblocked, so this
	// goroutine is abandoned when the connection goes away first.
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := sc.Text()
			if _, err := conn.Write([]byte(line + "\n")); err != nil {
				return
			}
			if strings.HasPrefix(line, "/quit") {
				return
			}
		}
		// stdin ended; the server will see EOF and tear the session down.
		_ = conn.Close()
	}()

	err = g.Wait()
	if errors.Is(err, errDisconnected) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
