// Package main provides the fieldimport binary: it creates custom field
// definitions on a remote tenant from a CSV file, either all at once or one
// field at a time, and can serve a local sandbox to rehearse against.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "fieldimport"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile string
		opts    runOptions
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Create custom fields from a CSV file",
		Long: `fieldimport reads custom field definitions from a CSV file with the columns
name, label, field_type_id, input_type_id and selection_options, and creates
each one through the field-creation API.

Fields are submitted one at a time with a fixed pause between requests. In
debug mode every field is shown before it is sent and can be processed,
skipped, or the run stopped.

Settings come from the environment, optionally seeded from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading settings")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file of field definitions (overrides SOURCE_FILE_NAME)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Run mode: import, debug or quit (default: ask)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Plain output and line-based prompts")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(sandboxCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// loadEnvFile loads path into the environment, overwriting existing
// variables. A missing default file is not an error; a missing file named
// explicitly is.
func loadEnvFile(path string, explicit bool) error {
	if err := godotenv.Overload(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		slog.Debug("no .env file found, using environment variables")
		return nil
	}
	slog.Debug("loaded env file", "path", path)
	return nil
}
