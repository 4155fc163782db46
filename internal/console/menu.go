package console

import (
	"fmt"
	"strings"
)

// MenuItem is one numbered choice.
type MenuItem struct {
	Key   string
	Label string
}

// Menu is a titled list of choices.
type Menu struct {
	Title string
	Items []MenuItem
}

// MainMenu selects the run mode.
var MainMenu = Menu{
	Title: "Main Menu",
	Items: []MenuItem{
		{Key: "1", Label: "Import all fields"},
		{Key: "2", Label: "Debug mode (one field at a time)"},
		{Key: "3", Label: "Quit"},
	},
}

// DebugMenu is shown for every field in debug mode.
var DebugMenu = Menu{
	Title: "Debug Options",
	Items: []MenuItem{
		{Key: "1", Label: "Process this field"},
		{Key: "2", Label: "Skip this field"},
		{Key: "3", Label: "Quit debug mode"},
	},
}

// Choices returns the menu keys, e.g. "1/2/3".
func (m Menu) Choices() string {
	keys := make([]string, len(m.Items))
	for i, item := range m.Items {
		keys[i] = item.Key
	}
	return strings.Join(keys, "/")
}

// Render draws the menu.
func (m Menu) Render(theme Theme) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render(m.Title))
	b.WriteByte('\n')
	for _, item := range m.Items {
		fmt.Fprintf(&b, "  %s. %s\n", theme.Value.Render(item.Key), item.Label)
	}
	return b.String()
}
