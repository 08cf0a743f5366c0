package voice

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/speech"
)

type stubService struct {
	voices []speech.Voice
	err    error
}

func (s *stubService) ListVoices(context.Context) ([]speech.Voice, error) {
	return s.voices, s.err
}

func (s *stubService) VoicesChanged() <-chan struct{} { return nil }

func (s *stubService) Speak(context.Context, speech.Utterance) error { return nil }

func TestLabel(t *testing.T) {
	tests := []struct {
		voice    speech.Voice
		expected string
	}{
		{speech.Voice{Name: "Alice", Language: "en-US"}, "Alice (en-US)"},
		{speech.Voice{Name: "Bob", Language: "en-GB", Default: true}, "Bob (en-GB) -- DEFAULT"},
		{speech.Voice{}, " ()"},
	}
	for _, tt := range tests {
		if got := Label(tt.voice); got != tt.expected {
			t.Errorf("Label(%+v) = %q, want %q", tt.voice, got, tt.expected)
		}
	}
}

func TestRefreshEmpty(t *testing.T) {
	r := NewRegistry(&stubService{})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	opts := r.Options()
	if len(opts) != 1 || opts[0] != DefaultOption {
		t.Errorf("Options() = %+v, want only the default option", opts)
	}
	if got := r.Index(speech.DefaultVoice); got != 0 {
		t.Errorf("Index(default) = %d, want 0", got)
	}
}

func TestRefreshReplacesList(t *testing.T) {
	svc := &stubService{voices: []speech.Voice{
		{Name: "Alice", Language: "en-US"},
		{Name: "Bob", Language: "en-GB", Default: true},
		{Name: "Carol", Language: "fr-FR", Default: true},
	}}
	r := NewRegistry(svc)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	expected := []Option{
		DefaultOption,
		{Value: "Alice", Label: "Alice (en-US)"},
		{Value: "Bob", Label: "Bob (en-GB) -- DEFAULT"},
		{Value: "Carol", Label: "Carol (fr-FR)"},
	}
	opts := r.Options()
	if len(opts) != len(expected) {
		t.Fatalf("Options() = %+v", opts)
	}
	for i := range expected {
		if opts[i] != expected[i] {
			t.Errorf("Options()[%d] = %+v, want %+v", i, opts[i], expected[i])
		}
	}
	if d, ok := r.Default(); !ok || d.Name != "Bob" {
		t.Errorf("Default() = %+v, %v", d, ok)
	}
	if got := r.Index("Carol"); got != 3 {
		t.Errorf("Index(Carol) = %d, want 3", got)
	}
	if got := r.Index("Nobody"); got != 0 {
		t.Errorf("Index(Nobody) = %d, want 0", got)
	}

	// The service's own slice is not aliased.
	if !svc.voices[2].Default {
		t.Error("Refresh mutated the service's voice slice")
	}

	// A later refresh with fewer voices drops the rest entirely.
	svc.voices = []speech.Voice{{Name: "Dave", Language: "de-DE"}}
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, ok := r.Lookup("Alice"); ok {
		t.Error("Alice survived a full rebuild")
	}
	if _, ok := r.Default(); ok {
		t.Error("default survived a rebuild without one")
	}
	if v, ok := r.Lookup("Dave"); !ok || v.Language != "de-DE" {
		t.Errorf("Lookup(Dave) = %+v, %v", v, ok)
	}
}

func TestRefreshErrorKeepsList(t *testing.T) {
	svc := &stubService{voices: []speech.Voice{{Name: "Alice", Language: "en-US"}}}
	r := NewRegistry(svc)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	svc.err = errors.New("engine down")
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() succeeded, want error")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after failed refresh, want 1", r.Len())
	}
}

func TestRefreshWithoutService(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Refresh(context.Background()); !errors.Is(err, speech.ErrServiceUnavailable) {
		t.Errorf("Refresh() error = %v", err)
	}
	if len(r.Options()) != 1 {
		t.Error("default option missing without a service")
	}
}

func TestVoicesReturnsCopy(t *testing.T) {
	r := NewRegistry(&stubService{voices: []speech.Voice{{Name: "Alice"}}})
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	vs := r.Voices()
	vs[0].Name = "Mallory"
	if _, ok := r.Lookup("Alice"); !ok {
		t.Error("Voices() exposed internal storage")
	}
}

func TestRefreshWarnsOnSentinelCollision(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	svc := &stubService{voices: []speech.Voice{
		{Name: speech.DefaultVoice, Language: "en"},
		{Name: "alice", Language: "en-US"},
	}}
	r := NewRegistry(svc)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if !strings.Contains(buf.String(), "collides with the default sentinel") {
		t.Errorf("expected a collision warning, log was %q", buf.String())
	}

	buf.Reset()
	svc.voices = svc.voices[1:]
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "collides") {
		t.Errorf("unexpected warning: %q", buf.String())
	}
}
