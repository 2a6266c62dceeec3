package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal/audit"
	"github.com/chatrelay/chatrelay/internal/chat"
	"github.com/chatrelay/chatrelay/internal/config"
	"github.com/chatrelay/chatrelay/internal/log"
)

var (
	flagConfig      string
	flagAddr        string
	flagMetricsAddr string
	flagAuditLog    string
	flagLogLevel    string
)

func main() {
	cmd := &cobra.Command{
		Use:           "chatrelay-server",
		Short:         "Line-oriented TCP chat relay server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&flagAddr, "addr", "", "chat listen address")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "metrics listen address")
	cmd.Flags().StringVar(&flagAuditLog, "audit-log", "", "audit log path")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := cmd.Execute(); err != nil {
		logger := log.New("error")
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{
		ListenAddr:  flagAddr,
		MetricsAddr: flagMetricsAddr,
		AuditLog:    flagAuditLog,
		LogLevel:    flagLogLevel,
	})

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Msg("configuration loaded")

	aud, err := audit.Open(cfg.AuditLog)
	if err != nil {
		return err
	}

	srv := chat.NewServer(chat.Options{
		Addr:        cfg.ListenAddr,
		MetricsAddr: cfg.MetricsAddr,
		MaxSessions: cfg.MaxSessions,
	}, logger, aud)
	if err := srv.Start(); err != nil {
		_ = aud.Close()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
	return nil
}
