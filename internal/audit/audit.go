// Package audit appends timestamped lifecycle and message records to a
// log file. The records are one line each and are a side effect of the
// chat protocol, not part of it: nothing reads them back.
package audit

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Log is an append-only event log. A nil *Log discards every event, so
// callers never guard their audit calls.
type Log struct {
	f         *os.File
	logger    zerolog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Open opens path for appending, creating it if needed.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Log{
		f:      f,
		logger: zerolog.New(f).With().Timestamp().Logger(),
	}, nil
}

func (l *Log) Connect(id int64, name string) {
	if l == nil {
		return
	}
	l.logger.Log().Str("event", "CONNECT").Int64("id", id).Str("name", name).Send()
}

func (l *Log) Rename(id int64, name string) {
	if l == nil {
		return
	}
	l.logger.Log().Str("event", "RENAME").Int64("id", id).Str("name", name).Send()
}

func (l *Log) Message(id int64, name, text string) {
	if l == nil {
		return
	}
	l.logger.Log().Str("event", "MSG").Int64("id", id).Str("name", name).Str("text", text).Send()
}

func (l *Log) PrivateMessage(from, to int64, text string) {
	if l == nil {
		return
	}
	l.logger.Log().Str("event", "PM").Int64("from", from).Int64("to", to).Str("text", text).Send()
}

func (l *Log) Disconnect(id int64, name string) {
	if l == nil {
		return
	}
	l.logger.Log().Str("event", "DISCONNECT").Int64("id", id).Str("name", name).Send()
}

func (l *Log) Shutdown() {
	if l == nil {
		return
	}
	l.logger.Log().Str("event", "SHUTDOWN").Send()
}

// Close closes the underlying file exactly once; later calls return the
// first result.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.closeOnce.Do(func() {
		l.closeErr = l.f.Close()
	})
	return l.closeErr
}
