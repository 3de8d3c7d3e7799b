package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	httpadapter "github.com/melih/dockdash/internal/adapters/http"
	"github.com/melih/dockdash/internal/adapters/socket"
	"github.com/melih/dockdash/internal/dashboard"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the dashboard UI backed by one session to the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:3000", "address the dashboard listens on")
	cmd.Flags().String("backend", "ws://localhost:8000/ws", "websocket URL of the hub")
	must(v.BindPFlag("dashboard.addr", cmd.Flags().Lookup("addr")))
	must(v.BindPFlag("backend.url", cmd.Flags().Lookup("backend")))
	return cmd
}

func runDashboard() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	log := logrus.NewEntry(logger).WithField("component", "dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Session: one socket, one view model
	state := dashboard.NewState()
	session := socket.NewSession(cfg.Backend.URL, state, log, socket.WithDialAttempts(cfg.Backend.DialAttempts))
	defer session.Close()

	if err := session.Connect(ctx); err != nil {
		// Keep serving so the UI can report the failure.
		log.WithError(err).Error("could not reach backend")
	} else {
		go session.Run(ctx)
	}

	// 2. HTTP
	app, err := httpadapter.NewApp(httpadapter.NewDashboardHandler(state, session, session), cfg.Dashboard.AccessLog)
	if err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Dashboard.Addr).Info("dashboard listening")
		errc <- app.Listen(cfg.Dashboard.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(5 * time.Second)
}
