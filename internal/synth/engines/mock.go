package engines

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/internal/synth"
)

// MockVoices is the voice set a Mock starts with.
var MockVoices = []speech.Voice{
	{Name: "mock-alice", Language: "en-US", Default: true},
	{Name: "mock-bob", Language: "en-GB"},
	{Name: "mock-chloe", Language: "fr-FR"},
}

// MockCall records one Synthesize call.
type MockCall struct {
	Text  string
	Voice string
}

// Mock synthesizes silence sized by word count.
type Mock struct {
	mu      sync.Mutex
	voices  []speech.Voice
	rate    int
	perWord time.Duration
	calls   []MockCall
	failing error
	closed  bool
	changes chan struct{}
}

var (
	_ synth.Engine  = (*Mock)(nil)
	_ synth.Watcher = (*Mock)(nil)
)

// NewMock returns a mock engine producing audio at sampleRate.
func NewMock(sampleRate int) *Mock {
	voices := make([]speech.Voice, len(MockVoices))
	copy(voices, MockVoices)
	return &Mock{
		voices:  voices,
		rate:    sampleRate,
		perWord: 150 * time.Millisecond,
		changes: make(chan struct{}, 1),
	}
}

// Name implements synth.Engine.
func (m *Mock) Name() string { return "mock" }

// Voices implements synth.Engine.
func (m *Mock) Voices(context.Context) ([]speech.Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]speech.Voice, len(m.voices))
	copy(out, m.voices)
	return out, nil
}

// SetVoices replaces the voice set and signals a change.
func (m *Mock) SetVoices(voices []speech.Voice) {
	m.mu.Lock()
	m.voices = append([]speech.Voice(nil), voices...)
	m.mu.Unlock()

	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Changes implements synth.Watcher.
func (m *Mock) Changes() <-chan struct{} { return m.changes }

// FailWith makes subsequent syntheses return err.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = err
}

// Synthesize implements synth.Engine.
func (m *Mock) Synthesize(ctx context.Context, text string, voice *speech.Voice) (synth.Audio, error) {
	if err := ctx.Err(); err != nil {
		return synth.Audio{}, err
	}
	if err := validateText(text); err != nil {
		return synth.Audio{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return synth.Audio{}, errors.New("mock engine is closed")
	}
	if m.failing != nil {
		return synth.Audio{}, m.failing
	}

	call := MockCall{Text: text, Voice: speech.DefaultVoice}
	if voice != nil {
		call.Voice = voice.Name
	}
	m.calls = append(m.calls, call)

	words := len(strings.Fields(text))
	return synth.Audio{
		PCM:        audio.Silence(time.Duration(words)*m.perWord, m.rate),
		SampleRate: m.rate,
	}, nil
}

// Calls returns the recorded Synthesize calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Close implements synth.Engine.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
