package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/melih/dockdash/internal/adapters/docker"
	"github.com/melih/dockdash/internal/adapters/socket"
	"github.com/melih/dockdash/internal/core/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch the Docker engine and serve dashboards over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8000", "address the hub listens on")
	cmd.Flags().String("docker-host", "", "docker endpoint (defaults to DOCKER_HOST)")
	must(v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr")))
	must(v.BindPFlag("docker.host", cmd.Flags().Lookup("docker-host")))
	return cmd
}

func runServe() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	log := logrus.NewEntry(logger).WithField("component", "hub")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Engine adapter
	dockerAdapter, err := docker.NewAdapter(cfg.Docker.Host, cfg.Docker.StopTimeout)
	if err != nil {
		return err
	}
	defer dockerAdapter.Close()

	// 2. Hub and monitor reference each other: the monitor broadcasts
	// through the hub, the hub answers commands through the monitor.
	hub := socket.NewHub(log)
	monitor := services.NewMonitor(dockerAdapter, hub, log.WithField("component", "monitor"))
	hub.SetBackend(monitor)

	if err := monitor.Load(ctx); err != nil {
		return err
	}

	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("engine event stream ended")
			stop()
		}
	}()

	// 3. Serve
	srv := &http.Server{Addr: cfg.Serve.Addr, Handler: hub.Router()}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Serve.Addr).Info("hub listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hub.Close(); err != nil {
		log.WithError(err).Warn("closing dashboards")
	}
	return srv.Shutdown(shutdownCtx)
}
