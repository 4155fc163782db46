package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/halofields/internal/customfield"
	"github.com/JonMunkholm/halofields/internal/importer"
)

// Stats describes the state of a run before the menu is shown.
type Stats struct {
	Authorized   bool
	TokenType    string
	Source       string
	Endpoint     string
	FieldsLoaded int
}

func (t Theme) row(key, value string) string {
	return t.Key.Render(key) + " " + t.Value.Render(value) + "\n"
}

// RenderStats draws the initial statistics screen.
func RenderStats(theme Theme, s Stats) string {
	auth := theme.Failure.Render("not authorized")
	if s.Authorized {
		auth = theme.Success.Render("authorized")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Custom Field Import"))
	b.WriteString("\n\n")
	b.WriteString(theme.Key.Render("Authentication") + " " + auth + "\n")
	if s.TokenType != "" {
		b.WriteString(theme.row("Token type", s.TokenType))
	}
	if s.Source != "" {
		b.WriteString(theme.row("Source file", s.Source))
	}
	if s.Endpoint != "" {
		b.WriteString(theme.row("Endpoint", s.Endpoint))
	}
	b.WriteString(theme.row("Fields loaded", fmt.Sprint(s.FieldsLoaded)))
	return b.String()
}

// RenderField draws the card for field index (0-based) of total.
func RenderField(theme Theme, index, total int, cf customfield.CustomField) string {
	ft := cf.Type()

	var b strings.Builder
	b.WriteString(theme.Heading.Render(fmt.Sprintf("Field %d of %d", index+1, total)))
	b.WriteByte('\n')
	b.WriteString(theme.row("Label", cf.Label().String()))
	b.WriteString(theme.row("Name", cf.Name().String()))
	b.WriteString(theme.row("Type", fmt.Sprintf("%d (%s)", ft.TypeID(), ft.Kind())))

	if id, ok := customfield.InputTypeID(ft); ok {
		b.WriteString(theme.row("Input type", fmt.Sprintf("%d (%s)", id, inputName(ft))))
	}
	if options, ok := customfield.SelectionOptions(ft); ok {
		value := theme.Muted.Render("none")
		if len(options) > 0 {
			value = strings.Join(options, ", ")
		}
		b.WriteString(theme.Key.Render("Options") + " " + value + "\n")
	}

	return theme.Card.Render(strings.TrimSuffix(b.String(), "\n"))
}

func inputName(ft customfield.FieldType) string {
	switch v := ft.(type) {
	case customfield.Text:
		return v.Input().String()
	case customfield.SingleSelect:
		return v.Input().String()
	case customfield.Date:
		return v.Input().String()
	default:
		return ""
	}
}

// RenderOutcome draws a one-line progress entry for a submission.
func RenderOutcome(theme Theme, o importer.Outcome) string {
	if o.Success {
		return theme.Success.Render("✓ created") + " " + o.Label
	}
	return theme.Failure.Render("✗ failed ") + " " + o.Label + theme.Muted.Render(" ("+importer.MapError(o.Error).Code+")")
}

// RenderSummary draws the end-of-run summary.
func RenderSummary(theme Theme, r *importer.Results) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Import Summary"))
	b.WriteString("\n\n")
	b.WriteString(theme.row("Total processed", fmt.Sprint(r.Total())))
	b.WriteString(theme.Key.Render("Successful") + " " + theme.Success.Render(fmt.Sprint(len(r.Successful))) + "\n")
	b.WriteString(theme.Key.Render("Failed") + " " + theme.Failure.Render(fmt.Sprint(len(r.Failed))) + "\n")

	if len(r.Failed) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(theme.Heading.Render("Failed fields"))
	b.WriteByte('\n')
	for _, o := range r.Failed {
		msg := importer.MapError(o.Error)
		fmt.Fprintf(&b, "  %s %s\n", theme.Failure.Render("•"), theme.Value.Render(o.Label))
		fmt.Fprintf(&b, "    %s %s\n", theme.Muted.Render("["+msg.Code+"]"), msg.Message)
		fmt.Fprintf(&b, "    %s\n", o.Error)
	}
	return b.String()
}

// RenderError draws a fatal error with its user message. Joined errors are
// listed one per line.
func RenderError(theme Theme, title string, err error) string {
	msg := importer.MapError(err)

	var b strings.Builder
	b.WriteString(theme.Failure.Render(title))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s %s\n", theme.Muted.Render("["+msg.Code+"]"), msg.Message)
	if msg.Action != "" {
		b.WriteString(theme.Muted.Render(msg.Action))
		b.WriteByte('\n')
	}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	} else {
		fmt.Fprintf(&b, "  %s\n", err)
	}
	return b.String()
}
