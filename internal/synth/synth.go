// Package synth implements speech.Service on top of a synthesis Engine, an
// audio player and an audio cache. Utterances play one at a time in the
// order they were queued.
package synth

import (
	"context"
	"errors"

	"github.com/dgnsrekt/memegen/internal/speech"
)

var (
	// ErrQueueFull is returned by Speak when the playback queue is full.
	ErrQueueFull = errors.New("speech queue is full")

	// ErrClosed is returned by Speak after Close.
	ErrClosed = errors.New("speech service is closed")
)

// Audio is synthesized 16-bit little-endian mono PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
}

// Engine turns text into audio.
type Engine interface {
	// Name identifies the engine in cache keys and logs.
	Name() string

	// Voices lists the voices the engine can currently synthesize with.
	Voices(ctx context.Context) ([]speech.Voice, error)

	// Synthesize renders text with voice, or the engine default when voice
	// is nil.
	Synthesize(ctx context.Context, text string, voice *speech.Voice) (Audio, error)

	Close() error
}

// Watcher is implemented by engines that can observe their voice set
// changing.
type Watcher interface {
	Changes() <-chan struct{}
}

// Player plays PCM at its own sample rate.
type Player interface {
	Play(pcm []byte) error
	Wait(ctx context.Context) error
	Stop() error
	SetVolume(volume float64) error
	SampleRate() int
	Close() error
}

// Cache stores rendered PCM by key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}
