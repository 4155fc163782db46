package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/halofields/internal/customfield"
	"github.com/JonMunkholm/halofields/internal/fieldapi"
	"github.com/JonMunkholm/halofields/internal/importer"
	"github.com/JonMunkholm/halofields/internal/source"
)

func mustField(t *testing.T, name, label string, typeID uint8, input *uint8, options string) customfield.CustomField {
	t.Helper()
	cf, err := customfield.New(name, label, typeID, input, options)
	if err != nil {
		t.Fatalf("customfield.New(%q) error = %v", name, err)
	}
	return cf
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestMenu(t *testing.T) {
	if got := MainMenu.Choices(); got != "1/2/3" {
		t.Errorf("Choices() = %q, want 1/2/3", got)
	}
	assertContains(t, MainMenu.Render(PlainTheme()), "Main Menu", "1. Import all fields", "3. Quit")
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(PlainTheme(), Stats{
		Authorized:   true,
		TokenType:    "Bearer",
		Source:       "fields.csv",
		FieldsLoaded: 12,
	})
	assertContains(t, out, "authorized", "Bearer", "fields.csv", "12")

	out = RenderStats(PlainTheme(), Stats{})
	assertContains(t, out, "not authorized")
}

func TestRenderField(t *testing.T) {
	two := uint8(2)
	cf := mustField(t, "CFPriority", "Priority", customfield.TypeSingleSelect, &two, "Low,High")

	out := RenderField(PlainTheme(), 1, 3, cf)
	assertContains(t, out, "Field 2 of 3", "Priority", "CFPriority", "2 (single select)", "Low, High")

	memo := mustField(t, "CFNotes", "Notes", customfield.TypeMemo, nil, "")
	out = RenderField(PlainTheme(), 0, 1, memo)
	if strings.Contains(out, "Input type") || strings.Contains(out, "Options") {
		t.Errorf("memo card should have no input type or options:\n%s", out)
	}
}

func TestRenderSummary(t *testing.T) {
	r := &importer.Results{}
	r.AddSuccess("Region")
	r.AddFailure("Escalation Reason", &fieldapi.SubmissionError{
		Label:      "Escalation Reason",
		StatusCode: 500,
		Status:     "500 Internal Server Error",
		Body:       "quota exceeded",
	})

	out := RenderSummary(PlainTheme(), r)
	assertContains(t, out,
		"Total processed", "2",
		"Escalation Reason",
		"[SUB004]",
		"quota exceeded",
	)
}

func TestRenderError_Joined(t *testing.T) {
	err := fmt.Errorf("load fields.csv: %w", errors.Join(
		&source.RowError{Line: 3, Err: errors.New("first")},
		&source.RowError{Line: 7, Err: errors.New("second")},
	))

	out := RenderError(PlainTheme(), "Could not load fields", err)
	assertContains(t, out, "Could not load fields", "row 3: first", "row 7: second")
}

func TestPlainConsole_AskMode(t *testing.T) {
	var out bytes.Buffer
	c := NewPlain(strings.NewReader(" 2 \n"), &out)

	got, err := c.AskMode(context.Background())
	if err != nil {
		t.Fatalf("AskMode() error = %v", err)
	}
	if got != "2" {
		t.Errorf("AskMode() = %q, want %q", got, "2")
	}
	assertContains(t, out.String(), "Main Menu", "Enter your choice (1/2/3):")

	if _, err := c.AskMode(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("AskMode() at end of input error = %v, want io.EOF", err)
	}
}

// TestPlainConsole_DrivesController runs a debug session through the plain
// console: an invalid mode, debug mode, then skip, process and quit.
func TestPlainConsole_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	c := NewPlain(pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	type answer struct {
		text string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		text, err := c.AskMode(ctx)
		done <- answer{text, err}
	}()

	cancel()
	select {
	case got := <-done:
		if !errors.Is(got.err, context.Canceled) {
			t.Fatalf("AskMode() error = %v, want context.Canceled", got.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AskMode() still blocked after cancel")
	}

	// A line typed after the cancelled prompt answers the next one.
	go func() { _, _ = io.WriteString(pw, "1\n") }()
	got, err := c.AskMode(context.Background())
	if err != nil {
		t.Fatalf("AskMode() after cancel error = %v", err)
	}
	if got != "1" {
		t.Errorf("AskMode() after cancel = %q, want %q", got, "1")
	}
}

func TestPlainConsole_DrivesController(t *testing.T) {
	fields := []customfield.CustomField{
		mustField(t, "CFOne", "One", customfield.TypeText, nil, ""),
		mustField(t, "CFTwo", "Two", customfield.TypeText, nil, ""),
		mustField(t, "CFThree", "Three", customfield.TypeText, nil, ""),
	}
	sub := &countingSubmitter{}

	var out bytes.Buffer
	c := NewPlain(strings.NewReader("x\n2\n2\n1\n3\n"), &out)
	ctrl := importer.NewController(fields, sub, c)

	mode, err := ctrl.ChooseMode(context.Background())
	if err != nil {
		t.Fatalf("ChooseMode() error = %v", err)
	}
	results, err := ctrl.Run(context.Background(), mode)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sub.labels != "Two" {
		t.Errorf("submitted = %q, want %q", sub.labels, "Two")
	}
	if len(results.Successful) != 1 {
		t.Errorf("successful = %d, want 1", len(results.Successful))
	}
	assertContains(t, out.String(), `Invalid choice "x"`, "Field 3 of 3", "✓ created Two")
}

type countingSubmitter struct {
	labels string
}

func (s *countingSubmitter) Submit(_ context.Context, cf customfield.CustomField) error {
	s.labels += cf.Label().String()
	return nil
}
