package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/memegen/internal/meme"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString("\n  " + logoView() + "\n\n")
	b.WriteString(indent(m.formView(), 2))

	if m.showHelp {
		b.WriteString("\n" + m.helpText)
	} else {
		b.WriteString("\n" + indent(m.previewView(), 2))
	}

	b.WriteString("\n" + m.statusBarView() + "\n")
	b.WriteString("  " + m.help.View(m.keys))
	return b.String()
}

func (m model) label(f focus, text string) string {
	if m.focus == f {
		return focusedLabelStyle(text)
	}
	return labelStyle(text)
}

func (m model) formView() string {
	var b strings.Builder

	path := m.pathInput.View()
	if m.loading {
		path += " " + m.spinner.View()
	}
	fmt.Fprintf(&b, "%s%s\n", m.label(focusPath, "Image"), path)
	if m.focus == focusPath {
		for i, s := range m.suggestions {
			if i == 0 {
				b.WriteString(firstSuggestionStyle(s) + "\n")
				continue
			}
			b.WriteString(suggestionStyle(s) + "\n")
		}
	}
	fmt.Fprintf(&b, "%s%s\n", m.label(focusTop, "Top"), m.topInput.View())
	fmt.Fprintf(&b, "%s%s\n", m.label(focusBottom, "Bottom"), m.bottomInput.View())
	fmt.Fprintf(&b, "%s%s\n", m.label(focusVolume, "Volume"), volumeView(m.volumeBar, m.ctrl.Session().Volume))
	fmt.Fprintf(&b, "%s%s\n\n", m.label(focusVoice, "Voice"), m.voiceView())
	b.WriteString(m.buttonsView())
	return b.String()
}

func (m model) voiceView() string {
	opts := m.ctrl.Voices().Options()
	idx := m.voiceIndex
	if idx >= len(opts) {
		idx = 0
	}
	s := "‹ " + voiceLabel(opts[idx]) + " ›"
	if m.speech == nil {
		return subtleStyle("speech disabled")
	}
	if !m.voiceSel.enabled {
		return subtleStyle(s)
	}
	return s
}

func (m model) buttonsView() string {
	buttons := []struct {
		f focus
		c *control
	}{
		{focusGenerate, m.generate},
		{focusClear, m.clear},
		{focusRead, m.read},
	}
	views := make([]string, 0, len(buttons))
	for _, btn := range buttons {
		style := buttonStyle
		switch {
		case !btn.c.enabled:
			style = disabledButtonStyle
		case m.focus == btn.f:
			style = focusedButtonStyle
		}
		label := btn.c.label
		if m.focus == btn.f && !btn.c.enabled {
			label = "× " + label
		}
		views = append(views, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (m model) previewView() string {
	if m.ctrl.Session().Image == nil {
		return previewBorderStyle.Render(previewPlaceholderText("no image loaded"))
	}
	return previewBorderStyle.Render(strings.TrimSuffix(m.preview, "\n"))
}

func (m model) statusBarView() string {
	width := max(m.common.width, 40)

	logo := logoView()

	var note string
	if img := m.ctrl.Session().Image; img != nil {
		note = fmt.Sprintf("%s · %d×%d · %s", filepath.Base(img.Path), img.Width(), img.Height(), stateLabel(m.ctrl.State()))
	} else {
		note = stateLabel(m.ctrl.State())
	}

	noteStyle := statusBarNoteStyle
	if m.status.text != "" {
		note = m.status.text
		noteStyle = statusBarMessageStyle
		if m.status.isError {
			noteStyle = statusBarErrorStyle
		}
	}

	helpNote := statusBarHelpStyle(" ? Help ")
	avail := max(0, width-ansi.PrintableRuneWidth(logo)-ansi.PrintableRuneWidth(helpNote)-2)
	note = truncate.StringWithTail(" "+note+" ", uint(avail), ellipsis)
	padding := max(0, avail-ansi.PrintableRuneWidth(note))

	return logo + " " +
		noteStyle(note) +
		noteStyle(strings.Repeat(" ", padding)) + " " +
		helpNote
}

func stateLabel(s meme.State) string {
	switch s {
	case meme.StateRendered:
		return "rendered"
	default:
		return "ready"
	}
}
