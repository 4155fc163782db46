package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/halofields/internal/config"
	"github.com/JonMunkholm/halofields/internal/logging"
	"github.com/JonMunkholm/halofields/internal/sandbox"
)

func sandboxCmd() *cobra.Command {
	var failures []string

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve a local stand-in for the authorization and field APIs",
		Long: `sandbox serves /auth/token and /api/fieldinfo locally so a CSV file can be
rehearsed end to end. Point BASE_URL at the printed address and use the
sandbox client id and secret.

--fail makes every request for a label answer with a fixed status and body:

  fieldimport sandbox --fail "Escalation Reason=500:quota exceeded"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveSandbox(cmd.Context(), failures)
		},
	}

	cmd.Flags().StringArrayVar(&failures, "fail", nil, `Inject a failure as "label=status:body" (repeatable)`)
	return cmd
}

func serveSandbox(ctx context.Context, failures []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadServe()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	srv := sandbox.New(sandbox.Config{
		ClientID:     cfg.Sandbox.ClientID,
		ClientSecret: cfg.Sandbox.ClientSecret,
		TokenTTL:     cfg.Sandbox.TokenTTL,
		RateLimit:    cfg.Sandbox.RateLimit,
		RateWindow:   cfg.Sandbox.RateWindow,
	})
	for _, raw := range failures {
		label, status, body, err := parseFailure(raw)
		if err != nil {
			return err
		}
		srv.FailLabel(label, status, body)
		slog.Info("failure injected", "label", label, "status", status)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Sandbox.Addr())
	}()
	fmt.Printf("sandbox: BASE_URL=http://%s/\n", cfg.Sandbox.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Sandbox.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("sandbox stopped", "fields_created", len(srv.Fields()))
	return nil
}

// parseFailure parses "label=status:body". The body may be empty.
func parseFailure(raw string) (string, int, string, error) {
	label, rest, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(label) == "" {
		return "", 0, "", fmt.Errorf("invalid --fail %q: want label=status:body", raw)
	}
	statusText, body, _ := strings.Cut(rest, ":")
	status, err := strconv.Atoi(strings.TrimSpace(statusText))
	if err != nil || status < 400 || status > 599 {
		return "", 0, "", fmt.Errorf("invalid --fail %q: status must be 400-599", raw)
	}
	return strings.TrimSpace(label), status, body, nil
}
