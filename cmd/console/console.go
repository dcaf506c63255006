package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"propadmin/internal/platform/debug"
	"propadmin/internal/platform/logger"
	"propadmin/internal/session"
	"propadmin/internal/tui"
)

func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive admin console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd)
		},
	}
}

func runConsole(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	client, err := newClient(cfg, registry)
	if err != nil {
		return err
	}

	notifier := tui.NewNotifier()
	manager := session.New(client,
		session.WithLogger(log),
		session.WithNotifier(notifier),
	)
	defer manager.Close()

	if cfg.DebugAddr != "" {
		dbg := debug.New(cfg.DebugAddr, registry, log)
		dbg.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = dbg.Shutdown(ctx)
		}()
	}

	return tui.Run(client, manager, notifier)
}
