// Command inkwell runs the conversational e-signature orchestrator.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/auth"
	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/conversation"
	"github.com/inkwell-ai/inkwell/internal/format"
	"github.com/inkwell-ai/inkwell/internal/gateway"
	"github.com/inkwell-ai/inkwell/internal/observability"
	"github.com/inkwell-ai/inkwell/internal/orchestrator"
	"github.com/inkwell-ai/inkwell/internal/session"
	"github.com/inkwell-ai/inkwell/internal/tools"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inkwell",
		Short:         "Conversational orchestrator for the Inkwell e-signature service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newTokenCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var configPath, subject, name string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate an operator token for the admin endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			svc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry.Std())
			if !svc.Enabled() {
				return errors.New("auth.jwt_secret is not configured")
			}
			token, err := svc.Generate(subject, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	return cmd
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(observability.LogConfig{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		RedactPatterns: observability.DefaultRedactPatterns,
	})
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := session.NewManager(cfg.Session.TTL.Std())
	sessions.OnCountChange(func(n int) {
		metrics.ActiveSessions.Set(float64(n))
	})
	janitor, err := session.NewJanitor(sessions, cfg.Session.SweepSchedule, logger)
	if err != nil {
		return fmt.Errorf("session janitor: %w", err)
	}
	janitor.Start()
	defer janitor.Stop()

	toolsClient := tools.NewClient(cfg.Tools.URL, cfg.Tools.Timeout.Std(), logger)

	formatter, err := format.NewFormatter(cfg.Formatter)
	if err != nil {
		return err
	}
	if formatter == nil {
		logger.Warn("no formatter API key configured, responses use the deterministic renderer")
	}
	gate := format.NewGate(formatter, cfg.Formatter.Timeout.Std(), logger, metrics)

	orch, err := orchestrator.New(orchestrator.Options{
		Store:       store,
		Executor:    toolsClient,
		Gate:        gate,
		Metrics:     metrics,
		Logger:      logger,
		ToolTimeout: cfg.Tools.Timeout.Std(),
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := gateway.NewServer(addr, gateway.Options{
		Sessions:     sessions,
		Operators:    auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry.Std()),
		Chat:         orch,
		Tools:        toolsClient,
		HistoryLimit: cfg.Conversations.HistoryLimit,
		Logger:       logger,
		Metrics:      metrics,
		Gatherer:     registry,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newStore(cfg *config.Config) (conversation.Store, error) {
	switch cfg.Conversations.Backend {
	case "sqlite":
		return conversation.NewSQLiteStore(cfg.Conversations.Path)
	default:
		return conversation.NewMemoryStore(), nil
	}
}
