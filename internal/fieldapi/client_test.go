package fieldapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/halofields/internal/customfield"
)

type staticCreds struct {
	header      string
	err         error
	invalidated int
}

func (s *staticCreds) HeaderValue(context.Context) (string, error) {
	return s.header, s.err
}

func (s *staticCreds) Invalidate() {
	s.invalidated++
}

type capturedRequest struct {
	method        string
	path          string
	authorization string
	contentType   string
	body          map[string]any
}

// fieldServer answers every request with status and body and records what it
// received.
func fieldServer(t *testing.T, status int, body string) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []capturedRequest
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)

		mu.Lock()
		reqs = append(reqs, capturedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			contentType:   r.Header.Get("Content-Type"),
			body:          decoded,
		})
		mu.Unlock()

		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	return ts, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), reqs...)
	}
}

func newTestClient(t *testing.T, apiURL string, creds CredentialSource) *Client {
	t.Helper()
	c, err := NewClient(apiURL, creds, nil, 0)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func mustField(t *testing.T, name, label string, typeID uint8, inputID *uint8, options string) customfield.CustomField {
	t.Helper()
	cf, err := customfield.New(name, label, typeID, inputID, options)
	if err != nil {
		t.Fatalf("customfield.New(%q) error = %v", name, err)
	}
	return cf
}

func u8(v uint8) *uint8 { return &v }

func TestNewClient_Endpoint(t *testing.T) {
	tests := []struct {
		apiURL string
		want   string
	}{
		{"https://tenant.example.com/api", "https://tenant.example.com/api/fieldinfo"},
		{"https://tenant.example.com/api/", "https://tenant.example.com/api/fieldinfo"},
	}
	for _, tt := range tests {
		c := newTestClient(t, tt.apiURL, &staticCreds{})
		if got := c.Endpoint(); got != tt.want {
			t.Errorf("Endpoint() for %q = %q, want %q", tt.apiURL, got, tt.want)
		}
	}
}

func TestNewClient_DelayDefaults(t *testing.T) {
	c, err := NewClient("http://x/api", &staticCreds{}, nil, -1)
	if err != nil {
		t.Fatal(err)
	}
	if c.delay != DefaultDelay {
		t.Errorf("delay = %v, want %v", c.delay, DefaultDelay)
	}
	if c.httpClient != http.DefaultClient {
		t.Error("nil httpClient should fall back to http.DefaultClient")
	}
}

func TestSubmit_Request(t *testing.T) {
	ts, requests := fieldServer(t, http.StatusOK, `{"id":1}`)
	c := newTestClient(t, ts.URL+"/api", &staticCreds{header: "Bearer tok-1"})

	cf := mustField(t, "CFPriority", "Priority", customfield.TypeSingleSelect, u8(2), "Low, Medium ,High")
	if err := c.Submit(context.Background(), cf); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	reqs := requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	got := reqs[0]

	if got.method != http.MethodPost || got.path != "/api/fieldinfo" {
		t.Errorf("request = %s %s, want POST /api/fieldinfo", got.method, got.path)
	}
	if got.authorization != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", got.authorization, "Bearer tok-1")
	}
	if got.contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got.contentType)
	}

	want := map[string]any{
		"usage":               float64(1),
		"name":                "CFPriority",
		"label":               "Priority",
		"type":                float64(2),
		"inputtype":           float64(2),
		"new_values":          "Low, Medium, High",
		"searchable":          true,
		"user_searchable":     true,
		"calendar_searchable": true,
		"copytochild":         true,
		"copytochildonupdate": true,
	}
	if diff := cmp.Diff(want, got.body); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_OmitsAbsentAttributes(t *testing.T) {
	ts, requests := fieldServer(t, http.StatusCreated, "")
	c := newTestClient(t, ts.URL, &staticCreds{header: "Bearer t"})

	if err := c.Submit(context.Background(), mustField(t, "CFNotes", "Notes", customfield.TypeMemo, nil, "")); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	body := requests()[0].body
	for _, key := range []string{"inputtype", "new_values"} {
		if _, ok := body[key]; ok {
			t.Errorf("memo payload should omit %q, got %v", key, body[key])
		}
	}
}

func TestSubmit_Non2xx(t *testing.T) {
	ts, _ := fieldServer(t, http.StatusInternalServerError, "quota exceeded")
	c := newTestClient(t, ts.URL, &staticCreds{header: "Bearer t"})

	err := c.Submit(context.Background(), mustField(t, "CFRegion", "Region", customfield.TypeText, nil, ""))

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("Submit() error = %v, want *SubmissionError", err)
	}
	if subErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", subErr.StatusCode)
	}
	if subErr.Label != "Region" {
		t.Errorf("Label = %q, want Region", subErr.Label)
	}
	msg := err.Error()
	for _, want := range []string{"Region", "500", "quota exceeded"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %q", msg, want)
		}
	}
}

func TestSubmit_ErrorBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		wantTruncated bool
	}{
		{"at limit", maxErrorBody, false},
		{"over limit", maxErrorBody + 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := fieldServer(t, http.StatusBadRequest, strings.Repeat("x", tt.size))
			c := newTestClient(t, ts.URL, &staticCreds{header: "Bearer t"})

			err := c.Submit(context.Background(), mustField(t, "CFRegion", "Region", customfield.TypeText, nil, ""))

			var subErr *SubmissionError
			if !errors.As(err, &subErr) {
				t.Fatalf("Submit() error = %v, want *SubmissionError", err)
			}
			if len(subErr.Body) != maxErrorBody {
				t.Errorf("len(Body) = %d, want %d", len(subErr.Body), maxErrorBody)
			}
			if subErr.Truncated != tt.wantTruncated {
				t.Errorf("Truncated = %v, want %v", subErr.Truncated, tt.wantTruncated)
			}
			if got := strings.HasSuffix(err.Error(), "[truncated]"); got != tt.wantTruncated {
				t.Errorf("error ends with [truncated] = %v, want %v", got, tt.wantTruncated)
			}
		})
	}
}

func TestSubmit_UnauthorizedInvalidatesCredential(t *testing.T) {
	ts, _ := fieldServer(t, http.StatusUnauthorized, "token expired")
	creds := &staticCreds{header: "Bearer stale"}
	c := newTestClient(t, ts.URL, creds)

	err := c.Submit(context.Background(), mustField(t, "CFRegion", "Region", customfield.TypeText, nil, ""))
	if err == nil {
		t.Fatal("Submit() expected error")
	}
	if creds.invalidated != 1 {
		t.Errorf("Invalidate() calls = %d, want 1", creds.invalidated)
	}
}

func TestSubmit_CredentialError(t *testing.T) {
	ts, requests := fieldServer(t, http.StatusOK, "")
	sentinel := errors.New("invalid credentials")
	c := newTestClient(t, ts.URL, &staticCreds{err: sentinel})

	err := c.Submit(context.Background(), mustField(t, "CFRegion", "Region", customfield.TypeText, nil, ""))
	if !errors.Is(err, sentinel) {
		t.Fatalf("Submit() error = %v, want wrapped %v", err, sentinel)
	}
	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Errorf("error = %T, want *CredentialError", err)
	}
	if !strings.HasPrefix(err.Error(), "credential: ") {
		t.Errorf("error = %q, want credential prefix", err)
	}
	if n := len(requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	ts, _ := fieldServer(t, http.StatusOK, "")
	url := ts.URL
	ts.Close()

	c := newTestClient(t, url, &staticCreds{header: "Bearer t"})
	err := c.Submit(context.Background(), mustField(t, "CFRegion", "Region", customfield.TypeText, nil, ""))

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("Submit() error = %v, want *TransportError", err)
	}
	if tErr.Label != "Region" {
		t.Errorf("Label = %q, want Region", tErr.Label)
	}
}

func TestSubmit_WaitsBeforeEveryRequest(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record("request")
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, &staticCreds{header: "Bearer t"}, nil, 250*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	c.wait = func(_ context.Context, d time.Duration) error {
		record("wait " + d.String())
		return nil
	}

	for _, name := range []string{"CFOne", "CFTwo"} {
		if err := c.Submit(context.Background(), mustField(t, name, name, customfield.TypeText, nil, "")); err != nil {
			t.Fatalf("Submit(%s) error = %v", name, err)
		}
	}

	want := []string{"wait 250ms", "request", "wait 250ms", "request"}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_CancelledDuringWait(t *testing.T) {
	ts, requests := fieldServer(t, http.StatusOK, "")
	c, err := NewClient(ts.URL, &staticCreds{header: "Bearer t"}, nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Submit(ctx, mustField(t, "CFRegion", "Region", customfield.TypeText, nil, ""))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Submit() error = %v, want context.Canceled", err)
	}
	if n := len(requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}
