package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sudhirj/rangeproxy/internal/config"
	"github.com/sudhirj/rangeproxy/internal/proxy"
	"github.com/sudhirj/rangeproxy/internal/stats"
)

func newServeCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the proxy listener until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, log)
		},
	}
}

func runServe(cmd *cobra.Command, log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	reg := stats.New()
	var mirror *stats.PrometheusMirror
	if cfg.MetricsEnabled {
		mirror = stats.NewPrometheusMirror(reg)
	}

	ln, err := proxy.NewListener(cfg, reg, mirror, log.WithFields(logrus.Fields{"component": "proxy"}))
	if err != nil {
		return fmt.Errorf("binding listener: %w", err)
	}
	defer ln.Close()

	log.WithFields(logrus.Fields{"addr": ln.Addr().String()}).Info("proxy listening")

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ln.Serve(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
