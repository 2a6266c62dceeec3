package chat

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/audit"
)

// Options configures a Server.
type Options struct {
	Addr        string
	MetricsAddr string // empty disables the metrics endpoint
	MaxSessions int
}

// Server owns the listener, the registry, and one handler goroutine per
// accepted connection. Per-session errors never cross sessions; the only
// fatal condition is failing to bind at startup.
type Server struct {
	opts       Options
	logger     zerolog.Logger
	aud        *audit.Log
	reg        *Registry
	listener   net.Listener
	metricsSrv *http.Server
	handlers   sync.WaitGroup
	stopOnce   sync.Once
}

func NewServer(opts Options, logger zerolog.Logger, aud *audit.Log) *Server {
	return &Server{
		opts:   opts,
		logger: logger,
		aud:    aud,
		reg:    NewRegistry(opts.MaxSessions, logger),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.listener = ln

	if s.opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		s.metricsSrv = &http.Server{Addr: s.opts.MetricsAddr, Handler: mux}
		go func() {
			if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go s.acceptLoop(ln)

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("server started")
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.opts.Addr
	}
	return s.listener.Addr().String()
}

// Stop closes the listener, tears every session down with the shutdown
// notice, waits for all handlers, and closes the audit log. Safe to call
// more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("shutting down")

		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.reg.Shutdown()
		s.handlers.Wait()

		if s.metricsSrv != nil {
			_ = s.metricsSrv.Close()
		}

		s.aud.Shutdown()
		if err := s.aud.Close(); err != nil {
			s.logger.Error().Err(err).Msg("closing audit log")
		}

		s.logger.Info().Msg("shutdown complete")
	})
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Closed listener means shutdown; anything else we skip and
			// keep serving the sessions we already have.
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			continue
		}

		logger := s.logger.With().
			Str("conn", uuid.NewString()).
			Str("remote", conn.RemoteAddr().String()).
			Logger()

		info, err := s.reg.Register(conn)
		if err != nil {
			if errors.Is(err, ErrServerFull) {
				rejectedFullTotal.Inc()
				_, _ = conn.Write([]byte("Server full.\n"))
			}
			logger.Warn().Err(err).Msg("connection rejected")
			_ = conn.Close()
			continue
		}
		logger.Info().Int64("id", info.ID).Msg("client connected")

		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			newSessionHandler(s.reg, s.aud, conn, info, logger).run()
		}()
	}
}
