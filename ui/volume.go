package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dgnsrekt/memegen/internal/speech"
)

const volumeStep = 5

var volumeIcons = [...]string{"🔇", "🔈", "🔉", "🔊"}

func newVolumeBar() progress.Model {
	return progress.New(
		progress.WithScaledGradient(string(fuchsia), "#89F0CB"),
		progress.WithWidth(24),
		progress.WithoutPercentage(),
	)
}

// volumeIcon returns the speaker icon for v's level.
func volumeIcon(v speech.Volume) string {
	return volumeIcons[v.Level()]
}

// stepVolume moves v by delta steps, clamped to 0-100.
func stepVolume(v speech.Volume, delta int) speech.Volume {
	n := int(v) + delta*volumeStep
	switch {
	case n < int(speech.MinVolume):
		n = int(speech.MinVolume)
	case n > int(speech.MaxVolume):
		n = int(speech.MaxVolume)
	}
	return speech.Volume(n)
}

func volumeView(bar progress.Model, v speech.Volume) string {
	return fmt.Sprintf("%s %s %3d", volumeIcon(v), bar.ViewAs(v.Gain()), v)
}
