package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

func samples(vals ...int16) []byte {
	b := make([]byte, len(vals)*BytesPerSample)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*BytesPerSample:], uint16(v))
	}
	return b
}

func decodeSamples(b []byte) []int16 {
	out := make([]int16, len(b)/BytesPerSample)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*BytesPerSample:]))
	}
	return out
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int
		rate     int
		expected time.Duration
	}{
		{"one second", 44100 * 2, 44100, time.Second},
		{"half second", 22050, 22050, 500 * time.Millisecond},
		{"empty", 0, 44100, 0},
		{"invalid rate", 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(make([]byte, tt.bytes), tt.rate); got != tt.expected {
				t.Errorf("Duration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSilence(t *testing.T) {
	b := Silence(250*time.Millisecond, 16000)
	if len(b) != 4000*BytesPerSample {
		t.Errorf("len = %d, want %d", len(b), 4000*BytesPerSample)
	}
	for _, v := range b {
		if v != 0 {
			t.Fatal("silence is not zeroed")
		}
	}
}

func TestResampleSameRate(t *testing.T) {
	in := samples(1, 2, 3)
	out, err := Resample(append(in, 0xff), 22050, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeSamples(out); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Resample() = %v, want [1 2 3]", got)
	}
	out[0] = 99
	if in[0] != 1 {
		t.Error("Resample() aliased its input")
	}
}

func TestResampleUp(t *testing.T) {
	out, err := Resample(samples(0, 100, 200), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	expected := []int16{0, 50, 100, 150, 200, 200}
	got := decodeSamples(out)
	if len(got) != len(expected) {
		t.Fatalf("Resample() = %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], expected[i])
		}
	}
}

func TestResampleDown(t *testing.T) {
	out, err := Resample(samples(0, 10, 20, 30), 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := decodeSamples(out)
	if len(got) != 2 || got[0] != 0 || got[1] != 20 {
		t.Errorf("Resample() = %v, want [0 20]", got)
	}
}

func TestResampleDuration(t *testing.T) {
	in := Silence(time.Second, 22050)
	out, err := Resample(in, 22050, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if d := Duration(out, 44100); d != time.Second {
		t.Errorf("resampled duration = %v, want 1s", d)
	}
}

func TestResampleInvalidRate(t *testing.T) {
	if _, err := Resample(samples(1), 0, 44100); err == nil {
		t.Error("expected error for zero rate")
	}
}
