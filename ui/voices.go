package ui

import (
	"github.com/dgnsrekt/memegen/internal/voice"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const maxVoiceLabelWidth = 40

// voiceLabel fits an option label into the selector.
func voiceLabel(o voice.Option) string {
	if runewidth.StringWidth(o.Label) <= maxVoiceLabelWidth {
		return o.Label
	}
	return truncate.StringWithTail(o.Label, maxVoiceLabelWidth, ellipsis)
}

// cycle moves index by delta within n options, wrapping around.
func cycle(index, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((index+delta)%n + n) % n
}
