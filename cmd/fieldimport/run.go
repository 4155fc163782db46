package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonMunkholm/halofields/internal/auth"
	"github.com/JonMunkholm/halofields/internal/config"
	"github.com/JonMunkholm/halofields/internal/console"
	"github.com/JonMunkholm/halofields/internal/fieldapi"
	"github.com/JonMunkholm/halofields/internal/importer"
	"github.com/JonMunkholm/halofields/internal/logging"
	"github.com/JonMunkholm/halofields/internal/source"
)

type runOptions struct {
	file     string
	mode     string
	plain    bool
	logLevel string

	// stdin and stdout default to the process streams.
	stdin  io.Reader
	stdout io.Writer
}

// reportedError is a failure already rendered to the operator; main exits
// non-zero without printing it again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func run(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.stdin == nil {
		opts.stdin = os.Stdin
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.file != "" {
		cfg.Source.FileName = opts.file
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logFile, err := logging.OpenRunLog(cfg.Logging.Dir, time.Now(), cfg.Logging.MaxAge, cfg.Logging.MaxCount)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stderr, logFile))

	slog.Info("configuration loaded", "config", cfg.String(), "log_file", logFile.Name())

	var con *console.Console
	if opts.plain {
		con = console.NewPlain(opts.stdin, opts.stdout)
	} else {
		con = console.NewSurvey(opts.stdout)
	}
	theme := con.Theme()

	var mode importer.RunMode
	if opts.mode != "" {
		m, ok := importer.ParseRunMode(opts.mode)
		if !ok {
			return fmt.Errorf("invalid --mode %q: must be import, debug or quit", opts.mode)
		}
		mode = m
	}

	httpClient := &http.Client{Timeout: cfg.API.HTTPTimeout}
	creds := auth.NewManager(cfg.API.TokenURL(), cfg.API.ClientID, cfg.API.ClientSecret, httpClient)

	// Without a credential no field can be created, so fail before loading.
	cred, err := creds.Credential(ctx)
	if err != nil {
		con.Print(console.RenderError(theme, "Authorization failed", err))
		return &reportedError{err: fmt.Errorf("authorize: %w", err)}
	}
	slog.Info("authorized", "token_type", cred.TokenType, "expires_at", cred.ExpiresAt)

	fields, err := source.LoadFile(cfg.Source.FileName, source.Options{CollectErrors: cfg.Source.CollectErrors})
	if err != nil {
		con.Print(console.RenderError(theme, "Could not load field definitions", err))
		return &reportedError{err: err}
	}

	client, err := fieldapi.NewClient(cfg.API.APIURL(), creds, httpClient, cfg.API.SubmitDelay)
	if err != nil {
		return err
	}

	con.Print(console.RenderStats(theme, console.Stats{
		Authorized:   true,
		TokenType:    cred.TokenType,
		Source:       cfg.Source.FileName,
		Endpoint:     client.Endpoint(),
		FieldsLoaded: len(fields),
	}))

	ctrl := importer.NewController(fields, client, con)
	if mode == 0 {
		mode, err = ctrl.ChooseMode(ctx)
		if err != nil {
			return abortedOr(err)
		}
	}

	results, err := ctrl.Run(ctx, mode)
	if results != nil && mode != importer.ModeQuit {
		con.Print(console.RenderSummary(theme, results))
	}
	if mode == importer.ModeQuit {
		con.Print("Goodbye.")
	}
	if err != nil {
		return abortedOr(err)
	}
	return nil
}

// abortedOr turns an operator interrupt into a quiet exit.
func abortedOr(err error) error {
	if errors.Is(err, console.ErrAborted) || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		slog.Info("run aborted by operator", "error", err)
		return nil
	}
	return err
}
