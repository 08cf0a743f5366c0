package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Accept   key.Binding
	Activate key.Binding
	Left     key.Binding
	Right    key.Binding
	Export   key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev")),
		Accept:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "accept suggestion")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load/press")),
		Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "less")),
		Right:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "more")),
		Export:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "export")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy path")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Activate, k.Export, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Accept},
		{k.Activate, k.Left, k.Right},
		{k.Export, k.Copy, k.Help, k.Quit},
	}
}

const helpMarkdown = `# memegen

Load an image, type your captions and press **Generate**.

| Field | Keys |
|---|---|
| Image | type a path, ` + "`tab`" + ` accepts the first suggestion, ` + "`enter`" + ` loads |
| Top / Bottom | captions, drawn in upper case |
| Volume | ` + "`←`" + ` / ` + "`→`" + ` in steps of 5 |
| Voice | ` + "`←`" + ` / ` + "`→`" + ` cycles voices |

## Buttons

- **Generate** draws the captions. Available until you clear.
- **Clear** wipes the canvas and re-enables Generate.
- **Read** speaks the captions with the selected voice and volume.

The voice list updates on its own when the speech engine gains or loses voices.

## Keys

- ` + "`ctrl+s`" + ` export the canvas as PNG
- ` + "`ctrl+y`" + ` copy the exported path
- ` + "`?`" + ` toggle this help
- ` + "`ctrl+c`" + ` quit
`

// glamourStyleName resolves "auto" against the terminal background.
func glamourStyleName(style string) string {
	if style == "" || style == styles.AutoStyle {
		if termenv.HasDarkBackground() {
			return styles.DarkStyle
		}
		return styles.LightStyle
	}
	return style
}

func renderHelp(style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyleName(style)),
		glamour.WithWordWrap(max(20, min(width, 100))),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return "", fmt.Errorf("error rendering help: %w", err)
	}
	return out, nil
}
