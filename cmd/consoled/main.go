// Command consoled serves the incident-response console: form fragments for
// the loaded schemas and the access-approval workflow, with every filed
// request recorded in the grant log.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/consolekit"
	"github.com/pthm/consolekit/internal/grants"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "consoled",
		Short: "Incident-response console server",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "consoled.yaml", "path to config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func run(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	grantLog, err := grants.Open(ctx, cfg.GrantsDB)
	if err != nil {
		return fmt.Errorf("open grant log: %w", err)
	}
	defer grantLog.Close()

	console := consolekit.NewConsole()
	console.Bridge.Logger = logger

	for _, path := range cfg.Schemas {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		schema, err := consolekit.ParseSchema(data)
		if err != nil {
			return err
		}
		console.AddSchema(schema)
		logger.Info("schema loaded", "name", schema.Name, "path", path)
	}

	acl := console.EnableACL(approvalService(grantLog))
	acl.Logger = logger
	acl.FullPageRefresh = cfg.FullPageRefresh

	handler := consolekit.NewHandler(console.Registry, []byte(cfg.SigningKey))
	handler.Logger = logger
	handler.Sensitive = cfg.SensitiveState

	mux := http.NewServeMux()
	mux.Handle("/render/", handler)

	logger.Info("listening", "addr", cfg.Listen)
	srv := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// approvalService validates and records requests the way the approval
// backend expects: both an approver and a reason are required before
// anything is filed.
func approvalService(log *grants.Store) consolekit.ApprovalService {
	return consolekit.ApprovalFunc(func(ctx context.Context, req consolekit.ACLRequest) error {
		if req.Approver == "" {
			return fmt.Errorf("approval request for %s: approver is required", req.Subject)
		}
		if req.Reason == "" {
			return fmt.Errorf("approval request for %s: reason is required", req.Subject)
		}
		_, err := log.Record(ctx, grants.Grant{
			Subject:   req.Subject,
			Approver:  req.Approver,
			Reason:    req.Reason,
			Keepalive: req.Keepalive,
		})
		return err
	})
}
