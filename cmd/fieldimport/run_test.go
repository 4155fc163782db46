package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/halofields/internal/auth"
	"github.com/JonMunkholm/halofields/internal/console"
	"github.com/JonMunkholm/halofields/internal/sandbox"
	"github.com/JonMunkholm/halofields/internal/source"
)

const validCSV = `name,label,field_type_id,input_type_id,selection_options
CFRegion,Region,2,0,"North,South"
CFNotes,Notes,1,,
`

const invalidRowCSV = `name,label,field_type_id,input_type_id,selection_options
CFRegion,Region,2,0,"North,South"
bad name,Broken,0,,
`

// runEnv points the run at a sandbox and writes csv to a temp file, returning
// the sandbox and the file path.
func runEnv(t *testing.T, secret, csv string) (*sandbox.Server, string) {
	t.Helper()

	sb := sandbox.New(sandbox.Config{ClientID: "client", ClientSecret: "secret"})
	ts := httptest.NewServer(sb.Handler())
	t.Cleanup(ts.Close)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	for _, k := range []string{"HALO_BASE_URL", "HALO_CLIENT_ID", "HALO_CLIENT_SECRET", "HTTP_TIMEOUT", "SOURCE_COLLECT_ERRORS", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	t.Setenv("BASE_URL", ts.URL+"/")
	t.Setenv("CLIENT_ID", "client")
	t.Setenv("CLIENT_SECRET", secret)
	t.Setenv("SUBMIT_DELAY", "0s")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))

	path := filepath.Join(dir, "fields.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return sb, path
}

func TestRun_Import(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		csv        string
		wantErr    func(error) bool
		wantShown  string
		wantFields int
		wantTokens int
	}{
		{
			name:   "rejected credentials stop before loading",
			secret: "wrong",
			csv:    validCSV,
			wantErr: func(err error) bool {
				return errors.Is(err, auth.ErrInvalidCredentials)
			},
			wantShown: "Authorization failed",
		},
		{
			name:   "invalid row stops before submitting",
			secret: "secret",
			csv:    invalidRowCSV,
			wantErr: func(err error) bool {
				var rowErr *source.RowError
				return errors.As(err, &rowErr) && rowErr.Line == 3
			},
			wantShown:  "Could not load field definitions",
			wantTokens: 1,
		},
		{
			name:       "valid file creates every field",
			secret:     "secret",
			csv:        validCSV,
			wantShown:  "Import Summary",
			wantFields: 2,
			wantTokens: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, path := runEnv(t, tt.secret, tt.csv)
			var out bytes.Buffer

			err := run(t.Context(), runOptions{
				file:   path,
				mode:   "import",
				plain:  true,
				stdin:  strings.NewReader(""),
				stdout: &out,
			})

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("run() error = %v", err)
				}
			} else {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("run() error = %v, want a matching error", err)
				}
				var reported *reportedError
				if !errors.As(err, &reported) {
					t.Errorf("run() error = %v, want it marked as already shown", err)
				}
			}

			if n := strings.Count(out.String(), tt.wantShown); n != 1 {
				t.Errorf("output shows %q %d times, want once:\n%s", tt.wantShown, n, out.String())
			}
			if got := len(sb.Fields()); got != tt.wantFields {
				t.Errorf("fields created = %d, want %d", got, tt.wantFields)
			}
			if got := sb.TokenRequests(); got != tt.wantTokens {
				t.Errorf("token requests = %d, want %d", got, tt.wantTokens)
			}
		})
	}
}

func TestAbortedOr(t *testing.T) {
	for _, err := range []error{console.ErrAborted, context.Canceled, io.EOF, fmt.Errorf("ask: %w", io.EOF)} {
		if got := abortedOr(err); got != nil {
			t.Errorf("abortedOr(%v) = %v, want nil", err, got)
		}
	}
	if err := abortedOr(os.ErrClosed); !errors.Is(err, os.ErrClosed) {
		t.Errorf("abortedOr(other) = %v, want it returned", err)
	}
}
