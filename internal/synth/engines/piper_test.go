package engines

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/memegen/internal/speech"
)

func newTestPiper(t *testing.T, dir string, config PiperConfig) *Piper {
	t.Helper()
	config.ModelDir = dir
	p, err := NewPiper(config)
	if err != nil {
		t.Fatalf("NewPiper() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPiperDiscoversModels(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "en_US-amy-medium.onnx"), "")
	touch(t, filepath.Join(dir, "de_DE-thorsten-low.onnx"), "")
	touch(t, filepath.Join(dir, "de_DE-thorsten-low.onnx.json"),
		`{"language":{"code":"de_DE"},"audio":{"sample_rate":16000}}`)
	touch(t, filepath.Join(dir, "notes.txt"), "")

	p := newTestPiper(t, dir, PiperConfig{DefaultModel: "en_US-amy-medium.onnx"})
	voices, err := p.Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	expected := []speech.Voice{
		{Name: "de_DE-thorsten-low", Language: "de_DE"},
		{Name: "en_US-amy-medium", Language: "en_US", Default: true},
	}
	if len(voices) != len(expected) {
		t.Fatalf("Voices() = %+v", voices)
	}
	for i := range expected {
		if voices[i] != expected[i] {
			t.Errorf("voice %d = %+v, want %+v", i, voices[i], expected[i])
		}
	}

	m, err := p.model(&speech.Voice{Name: "de_DE-thorsten-low"})
	if err != nil || m.sampleRate != 16000 || m.configPath == "" {
		t.Errorf("model() = %+v, %v", m, err)
	}
	m, err = p.model(nil)
	if err != nil || m.voice.Name != "en_US-amy-medium" || m.sampleRate != defaultPiperRate {
		t.Errorf("default model() = %+v, %v", m, err)
	}
}

func TestPiperRequiresDirectory(t *testing.T) {
	if _, err := NewPiper(PiperConfig{}); err == nil {
		t.Error("expected error without model dir")
	}
	if _, err := NewPiper(PiperConfig{ModelDir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestPiperNoModels(t *testing.T) {
	p := newTestPiper(t, t.TempDir(), PiperConfig{})
	if _, err := p.Synthesize(context.Background(), "hi", nil); err == nil {
		t.Error("expected error with no models")
	}
}

func TestPiperWatchesModelDir(t *testing.T) {
	dir := t.TempDir()
	p := newTestPiper(t, dir, PiperConfig{})

	touch(t, filepath.Join(dir, "fr_FR-siwis-low.onnx"), "")
	select {
	case <-p.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after adding a model")
	}
	voices, _ := p.Voices(context.Background())
	if len(voices) != 1 || voices[0].Language != "fr_FR" {
		t.Errorf("Voices() = %+v", voices)
	}

	if err := os.Remove(filepath.Join(dir, "fr_FR-siwis-low.onnx")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-p.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after removing a model")
	}
	if voices, _ := p.Voices(context.Background()); len(voices) != 0 {
		t.Errorf("Voices() = %+v, want none", voices)
	}
}

func TestPiperSynthesize(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "en_US-amy-medium.onnx"), "")
	bin := writeScript(t, t.TempDir(), "piper",
		`[ "$1" = "--model" ] || exit 2
[ "$3" = "--output-raw" ] || exit 2
cat`)

	p := newTestPiper(t, dir, PiperConfig{Binary: bin})
	out, err := p.Synthesize(context.Background(), "ab", nil)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(out.PCM) != "ab" || out.SampleRate != defaultPiperRate {
		t.Errorf("Synthesize() = %q at %d", out.PCM, out.SampleRate)
	}
}

func TestLanguageFromName(t *testing.T) {
	tests := map[string]string{
		"en_US-amy-medium": "en_US",
		"custom":           "custom",
		"":                 "",
	}
	for name, expected := range tests {
		if got := languageFromName(name); got != expected {
			t.Errorf("languageFromName(%q) = %q, want %q", name, got, expected)
		}
	}
}
