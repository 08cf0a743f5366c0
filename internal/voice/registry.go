// Package voice keeps the list of synthesis voices offered by a speech
// service and the options presented in the voice selector.
package voice

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/speech"
)

// Option is one entry of the voice selector.
type Option struct {
	Value string // voice name, or speech.DefaultVoice
	Label string
}

// DefaultOption is the reserved "no specific voice" entry. It is always
// present regardless of what the service reports.
var DefaultOption = Option{Value: speech.DefaultVoice, Label: "Default"}

// Label returns the selector label for v: "name (language)", with
// " -- DEFAULT" appended for the default voice.
func Label(v speech.Voice) string {
	label := fmt.Sprintf("%s (%s)", v.Name, v.Language)
	if v.Default {
		label += " -- DEFAULT"
	}
	return label
}

// Registry holds the current voice list. It is rebuilt wholesale on every
// Refresh and is not safe for concurrent use.
type Registry struct {
	svc    speech.Service
	voices []speech.Voice
}

// NewRegistry returns an empty registry backed by svc.
func NewRegistry(svc speech.Service) *Registry {
	return &Registry{svc: svc}
}

// Refresh replaces the voice list with the service's current voices. At
// most one voice keeps the default flag: the first the service marks. On
// error the previous list is kept.
func (r *Registry) Refresh(ctx context.Context) error {
	if r.svc == nil {
		r.voices = nil
		return speech.ErrServiceUnavailable
	}

	voices, err := r.svc.ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("unable to list voices: %w", err)
	}

	rebuilt := make([]speech.Voice, len(voices))
	seenDefault := false
	for i, v := range voices {
		if v.Default {
			if seenDefault {
				v.Default = false
			}
			seenDefault = true
		}
		if v.Name == speech.DefaultVoice {
			log.Warn("voice name collides with the default sentinel and cannot be selected", "voice", v.Name)
		}
		rebuilt[i] = v
	}
	r.voices = rebuilt

	log.Debug("voice list refreshed", "count", len(rebuilt))
	return nil
}

// Voices returns a copy of the current list.
func (r *Registry) Voices() []speech.Voice {
	out := make([]speech.Voice, len(r.voices))
	copy(out, r.voices)
	return out
}

// Len returns the number of voices, excluding the default option.
func (r *Registry) Len() int {
	return len(r.voices)
}

// Lookup finds a voice by exact name. It implements speech.Resolver.
func (r *Registry) Lookup(name string) (speech.Voice, bool) {
	for _, v := range r.voices {
		if v.Name == name {
			return v, true
		}
	}
	return speech.Voice{}, false
}

// Default returns the voice the service marked as default, if any.
func (r *Registry) Default() (speech.Voice, bool) {
	for _, v := range r.voices {
		if v.Default {
			return v, true
		}
	}
	return speech.Voice{}, false
}

// Options returns the selector entries: DefaultOption first, then one per
// voice in service order.
func (r *Registry) Options() []Option {
	opts := make([]Option, 0, len(r.voices)+1)
	opts = append(opts, DefaultOption)
	for _, v := range r.voices {
		opts = append(opts, Option{Value: v.Name, Label: Label(v)})
	}
	return opts
}

// Index returns the position of value in Options, or 0 (the default option)
// when it is not present.
func (r *Registry) Index(value string) int {
	for i, o := range r.Options() {
		if o.Value == value {
			return i
		}
	}
	return 0
}

var _ speech.Resolver = (*Registry)(nil)
