// Package speech builds utterances from meme captions and hands them to a
// text-to-speech Service.
package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

var (
	// ErrVoiceResolutionMiss reports that the selected voice is no longer
	// offered by the service. It is never fatal: the utterance falls back to
	// the service's default voice.
	ErrVoiceResolutionMiss = errors.New("selected voice not available")

	// ErrInvalidVolume is returned for volume levels outside 0-100.
	ErrInvalidVolume = errors.New("volume must be between 0 and 100")

	// ErrServiceUnavailable is returned when no speech service is configured.
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// Voice describes a synthesis voice offered by a Service.
type Voice struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
	Default  bool   `yaml:"default,omitempty"`
}

// Utterance is a unit of text submitted for playback. A nil Voice selects
// the service's default voice.
type Utterance struct {
	Text   string
	Voice  *Voice
	Volume float64 // 0.0 to 1.0
}

// Service is a text-to-speech backend.
type Service interface {
	// ListVoices returns the voices currently offered. The list may be empty
	// while the backend is still starting.
	ListVoices(ctx context.Context) ([]Voice, error)

	// VoicesChanged signals every time the voice set changes.
	VoicesChanged() <-chan struct{}

	// Speak queues an utterance for playback and returns without waiting
	// for audio. Earlier utterances are not interrupted.
	Speak(ctx context.Context, u Utterance) error
}

// Resolver finds a voice by exact name.
type Resolver interface {
	Lookup(name string) (Voice, bool)
}

// Volume is the user-facing volume level, 0 to 100.
type Volume int

const (
	MinVolume Volume = 0
	MaxVolume Volume = 100
)

// Valid reports whether v is within 0-100.
func (v Volume) Valid() bool {
	return v >= MinVolume && v <= MaxVolume
}

// Validate returns ErrInvalidVolume when v is out of range.
func (v Volume) Validate() error {
	if !v.Valid() {
		return fmt.Errorf("%w, got %d", ErrInvalidVolume, int(v))
	}
	return nil
}

// Gain converts the level to a playback gain between 0.0 and 1.0.
func (v Volume) Gain() float64 {
	return float64(v) / 100
}

// Level buckets the volume into the four speaker-icon levels:
// 0 (muted), 1 (1-33), 2 (34-66) and 3 (67-100).
func (v Volume) Level() int {
	switch {
	case v >= 67:
		return 3
	case v >= 34:
		return 2
	case v >= 1:
		return 1
	default:
		return 0
	}
}

// Request carries everything needed to build an utterance.
type Request struct {
	Top    string
	Bottom string

	// Voice is the selected voice name. Empty or DefaultVoice selects the
	// service default.
	Voice  string
	Volume Volume
}

// DefaultVoice is the reserved selection value meaning "no specific voice".
const DefaultVoice = "none"

// BuildUtterance assembles the utterance for req. The returned error is
// either nil or ErrVoiceResolutionMiss; in both cases the utterance is
// usable and Voice is nil when no specific voice resolved.
func BuildUtterance(req Request, voices Resolver) (Utterance, error) {
	u := Utterance{
		Text:   req.Top + " " + req.Bottom,
		Volume: req.Volume.Gain(),
	}

	if req.Voice == "" || req.Voice == DefaultVoice {
		return u, nil
	}

	if voices != nil {
		if v, ok := voices.Lookup(req.Voice); ok {
			u.Voice = &v
			return u, nil
		}
	}
	return u, fmt.Errorf("%w: %q", ErrVoiceResolutionMiss, req.Voice)
}

// Invoke builds the utterance for req and submits it to svc. A voice miss
// is logged and playback continues with the default voice; only validation
// and service errors are returned.
func Invoke(ctx context.Context, svc Service, voices Resolver, req Request) (Utterance, error) {
	if svc == nil {
		return Utterance{}, ErrServiceUnavailable
	}
	if err := req.Volume.Validate(); err != nil {
		return Utterance{}, err
	}

	u, err := BuildUtterance(req, voices)
	if err != nil {
		log.Warn("falling back to default voice", "error", err)
	}

	log.Debug("speaking", "chars", len(u.Text), "voice", voiceName(u.Voice), "volume", u.Volume)
	if err := svc.Speak(ctx, u); err != nil {
		return u, fmt.Errorf("unable to speak: %w", err)
	}
	return u, nil
}

func voiceName(v *Voice) string {
	if v == nil {
		return DefaultVoice
	}
	return v.Name
}
