package ui

import (
	"testing"

	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/internal/voice"
)

func TestStepVolume(t *testing.T) {
	tests := []struct {
		v        speech.Volume
		delta    int
		expected speech.Volume
	}{
		{50, 1, 55},
		{50, -1, 45},
		{98, 1, 100},
		{3, -1, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := stepVolume(tt.v, tt.delta); got != tt.expected {
			t.Errorf("stepVolume(%d, %d) = %d, want %d", tt.v, tt.delta, got, tt.expected)
		}
	}
}

func TestVolumeIcon(t *testing.T) {
	tests := []struct {
		v        speech.Volume
		expected string
	}{
		{0, "🔇"},
		{20, "🔈"},
		{50, "🔉"},
		{100, "🔊"},
	}
	for _, tt := range tests {
		if got := volumeIcon(tt.v); got != tt.expected {
			t.Errorf("volumeIcon(%d) = %q, want %q", tt.v, got, tt.expected)
		}
	}
}

func TestCycle(t *testing.T) {
	tests := []struct {
		index, delta, n, expected int
	}{
		{0, 1, 3, 1},
		{2, 1, 3, 0},
		{0, -1, 3, 2},
		{0, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := cycle(tt.index, tt.delta, tt.n); got != tt.expected {
			t.Errorf("cycle(%d, %d, %d) = %d, want %d", tt.index, tt.delta, tt.n, got, tt.expected)
		}
	}
}

func TestVoiceLabel(t *testing.T) {
	short := voice.Option{Value: "a", Label: "Alice (en-US)"}
	if got := voiceLabel(short); got != short.Label {
		t.Errorf("voiceLabel() = %q", got)
	}

	long := voice.Option{Label: "en_US-libritts_r-medium-with-a-very-long-suffix (en_US) -- DEFAULT"}
	got := voiceLabel(long)
	if len([]rune(got)) > maxVoiceLabelWidth {
		t.Errorf("voiceLabel() = %q, longer than %d", got, maxVoiceLabelWidth)
	}
}
