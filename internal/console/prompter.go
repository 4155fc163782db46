package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/JonMunkholm/halofields/internal/customfield"
	"github.com/JonMunkholm/halofields/internal/importer"
)

// ErrAborted is returned when the operator interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// askFunc reads one answer for message.
type askFunc func(ctx context.Context, message string) (string, error)

// Console draws screens to out and reads answers through ask. It implements
// importer.Prompter.
type Console struct {
	out   io.Writer
	theme Theme
	ask   askFunc
}

var _ importer.Prompter = (*Console)(nil)

// NewSurvey returns a Console that prompts with survey on the process
// terminal.
func NewSurvey(out io.Writer) *Console {
	return &Console{out: out, theme: DefaultTheme(), ask: surveyAsk}
}

// NewPlain returns a Console without styling that reads answers line by line
// from in. A prompt returns ctx.Err() as soon as ctx is done, even while the
// read is still pending; the pending line is kept for the next prompt.
func NewPlain(in io.Reader, out io.Writer) *Console {
	lines := &lineReader{scanner: bufio.NewScanner(in)}
	return &Console{
		out:   out,
		theme: PlainTheme(),
		ask: func(ctx context.Context, message string) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			fmt.Fprintf(out, "%s ", message)
			return lines.next(ctx)
		},
	}
}

type lineResult struct {
	text string
	err  error
}

// lineReader scans in a single background goroutine so a blocked read never
// holds up a cancelled prompt.
type lineReader struct {
	scanner *bufio.Scanner
	once    sync.Once
	lines   chan lineResult
}

func (r *lineReader) next(ctx context.Context) (string, error) {
	r.once.Do(func() {
		r.lines = make(chan lineResult)
		go r.scan()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

func (r *lineReader) scan() {
	defer close(r.lines)
	for r.scanner.Scan() {
		r.lines <- lineResult{text: r.scanner.Text()}
	}
	if err := r.scanner.Err(); err != nil {
		r.lines <- lineResult{err: err}
	}
}

func surveyAsk(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Input{Message: message}, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Theme returns the console's theme.
func (c *Console) Theme() Theme {
	return c.theme
}

// Print writes s followed by a newline.
func (c *Console) Print(s string) {
	fmt.Fprintln(c.out, s)
}

// AskMode shows the main menu and reads a choice.
func (c *Console) AskMode(ctx context.Context) (string, error) {
	c.Print(MainMenu.Render(c.theme))
	return c.ask(ctx, fmt.Sprintf("Enter your choice (%s):", MainMenu.Choices()))
}

// AskAction shows the field card and the debug menu and reads a choice.
func (c *Console) AskAction(ctx context.Context, index, total int, cf customfield.CustomField) (string, error) {
	c.Print(RenderField(c.theme, index, total, cf))
	c.Print(DebugMenu.Render(c.theme))
	return c.ask(ctx, fmt.Sprintf("Enter your choice (%s):", DebugMenu.Choices()))
}

// InvalidChoice reports a rejected answer.
func (c *Console) InvalidChoice(answer string) {
	c.Print(c.theme.Warning.Render(fmt.Sprintf("Invalid choice %q. Please try again.", answer)))
}

// Recorded prints the outcome of one submission.
func (c *Console) Recorded(o importer.Outcome) {
	c.Print(RenderOutcome(c.theme, o))
}
