package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tsoernes/enhanced-terminal/internal/config"
	"github.com/tsoernes/enhanced-terminal/internal/keepalive"
	"github.com/tsoernes/enhanced-terminal/internal/logger"
	"github.com/tsoernes/enhanced-terminal/internal/registry"
	"github.com/tsoernes/enhanced-terminal/internal/rpcstdio"
	"github.com/tsoernes/enhanced-terminal/internal/terminal"
)

var version = "dev"

func main() {
	var logLevel string
	var logFile string
	var configPath string

	root := &cobra.Command{
		Use:   "enhanced-terminal-mcp",
		Short: "PTY-backed command execution service exposed over a stdio RPC transport",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "optional log file path, in addition to stderr")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the optional YAML defaults file")

	root.AddCommand(
		serveCmd(&logLevel, &logFile, &configPath),
		detectCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(logLevel, logFile, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stdio RPC server (reads requests from stdin, writes responses to stdout)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(*logLevel, *logFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			path := *configPath
			if path == "" {
				if p, err := config.DefaultConfigPath(); err == nil {
					path = p
				}
			}
			mgr := config.NewManager()
			if err := mgr.Load(path); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg := mgr.Get()

			ka := keepalive.New(keepalive.Config{
				Enabled:     cfg.Keepalive.Enabled,
				PrimeOnUse:  cfg.Keepalive.PrimeOnUse,
				Wrap:        cfg.Keepalive.Wrap,
				RefreshSecs: cfg.Keepalive.RefreshSecs,
				AskPass:     cfg.Keepalive.AskPass,
			}, logger.Log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ka.StartRefresh(ctx)
			defer ka.Stop()

			facade := terminal.New(registry.New(), ka, logger.Log)
			srv := rpcstdio.New(facade, logger.Log)

			logger.Info("enhanced-terminal-mcp serving on stdio", "version", version)
			return srv.Serve(ctx, os.Stdin, os.Stdout)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}
