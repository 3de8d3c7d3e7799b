package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/melih/dockdash/internal/config"
)

var (
	v          = viper.New()
	configFile string
)

func main() {
	root := &cobra.Command{
		Use:           "dockdash",
		Short:         "Live dashboard for the containers and images on a Docker host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./dockdash.yaml if present)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	must(v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level")))

	root.AddCommand(newServeCmd(), newDashboardCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg.Log)
	config.PrintSettings(v, logger)
	return cfg, logger, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
