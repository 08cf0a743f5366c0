package ui

import "github.com/dgnsrekt/memegen/internal/meme"

// control is a UI element whose enablement the meme controller drives.
type control struct {
	label   string
	enabled bool
}

func (c *control) SetEnabled(enabled bool) {
	c.enabled = enabled
}

var _ meme.Control = (*control)(nil)

// focus is the element receiving keyboard input.
type focus int

const (
	focusPath focus = iota
	focusTop
	focusBottom
	focusVolume
	focusVoice
	focusGenerate
	focusClear
	focusRead
	focusCount
)

func (f focus) String() string {
	return [...]string{
		"path", "top", "bottom", "volume", "voice", "generate", "clear", "read",
	}[f]
}

func (f focus) next() focus { return (f + 1) % focusCount }
func (f focus) prev() focus { return (f + focusCount - 1) % focusCount }

func (f focus) isButton() bool {
	return f == focusGenerate || f == focusClear || f == focusRead
}

func (f focus) isInput() bool {
	return f == focusPath || f == focusTop || f == focusBottom
}
