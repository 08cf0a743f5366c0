package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgnsrekt/memegen/internal/speech"
	"gopkg.in/yaml.v3"
)

func TestWriteVoices(t *testing.T) {
	voices := []speech.Voice{
		{Name: "en_US-lessac-medium", Language: "en_US", Default: true},
		{Name: "de_DE-thorsten-low", Language: "de_DE"},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeVoices(&buf, voices, false); err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
		}
		if !strings.HasPrefix(lines[0], "en_US-lessac-medium\t") {
			t.Errorf("line 0 = %q", lines[0])
		}
		if !strings.Contains(lines[0], "DEFAULT") {
			t.Errorf("default voice not marked: %q", lines[0])
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeVoices(&buf, voices, true); err != nil {
			t.Fatal(err)
		}
		var got []speech.Voice
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid yaml: %v\n%s", err, buf.String())
		}
		if len(got) != 2 || got[0] != voices[0] || got[1] != voices[1] {
			t.Errorf("round trip = %+v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeVoices(&buf, nil, false); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "no voices available") {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestValidEngine(t *testing.T) {
	for _, name := range []string{"mock", "piper", "gtts", "none"} {
		if !validEngine(name) {
			t.Errorf("%q should be valid", name)
		}
	}
	for _, name := range []string{"", "google", "MOCK"} {
		if validEngine(name) {
			t.Errorf("%q should be invalid", name)
		}
	}
}
