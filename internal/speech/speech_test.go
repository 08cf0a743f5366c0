package speech

import (
	"context"
	"errors"
	"testing"
)

type voiceList []Voice

func (l voiceList) Lookup(name string) (Voice, bool) {
	for _, v := range l {
		if v.Name == name {
			return v, true
		}
	}
	return Voice{}, false
}

type fakeService struct {
	spoken []Utterance
	err    error
}

func (f *fakeService) ListVoices(context.Context) ([]Voice, error) { return nil, nil }
func (f *fakeService) VoicesChanged() <-chan struct{}              { return nil }
func (f *fakeService) Speak(_ context.Context, u Utterance) error {
	if f.err != nil {
		return f.err
	}
	f.spoken = append(f.spoken, u)
	return nil
}

func TestBuildUtterance(t *testing.T) {
	voices := voiceList{
		{Name: "Alice", Language: "en-US"},
		{Name: "Bob", Language: "en-GB", Default: true},
	}

	tests := []struct {
		name      string
		req       Request
		text      string
		volume    float64
		voice     string
		expectErr error
	}{
		{
			name:   "captions and half volume",
			req:    Request{Top: "HELLO", Bottom: "WORLD", Volume: 50},
			text:   "HELLO WORLD",
			volume: 0.5,
		},
		{
			name:   "empty captions keep the separator",
			req:    Request{Top: "", Bottom: "", Volume: 100},
			text:   " ",
			volume: 1,
		},
		{
			name:   "case is preserved",
			req:    Request{Top: "hello", Bottom: "World", Volume: 0},
			text:   "hello World",
			volume: 0,
		},
		{
			name:   "exact voice match",
			req:    Request{Top: "a", Bottom: "b", Voice: "Alice", Volume: 10},
			text:   "a b",
			volume: 0.1,
			voice:  "Alice",
		},
		{
			name:   "sentinel selects default",
			req:    Request{Top: "a", Bottom: "b", Voice: DefaultVoice, Volume: 10},
			text:   "a b",
			volume: 0.1,
		},
		{
			name:      "missing voice falls back",
			req:       Request{Top: "a", Bottom: "b", Voice: "alice", Volume: 10},
			text:      "a b",
			volume:    0.1,
			expectErr: ErrVoiceResolutionMiss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := BuildUtterance(tt.req, voices)
			if !errors.Is(err, tt.expectErr) {
				t.Fatalf("BuildUtterance() error = %v, want %v", err, tt.expectErr)
			}
			if u.Text != tt.text {
				t.Errorf("Text = %q, want %q", u.Text, tt.text)
			}
			if u.Volume != tt.volume {
				t.Errorf("Volume = %v, want %v", u.Volume, tt.volume)
			}
			switch {
			case tt.voice == "" && u.Voice != nil:
				t.Errorf("Voice = %+v, want nil", u.Voice)
			case tt.voice != "" && (u.Voice == nil || u.Voice.Name != tt.voice):
				t.Errorf("Voice = %+v, want %s", u.Voice, tt.voice)
			}
		})
	}
}

func TestBuildUtteranceWithoutResolver(t *testing.T) {
	u, err := BuildUtterance(Request{Voice: "Alice"}, nil)
	if !errors.Is(err, ErrVoiceResolutionMiss) {
		t.Errorf("error = %v, want ErrVoiceResolutionMiss", err)
	}
	if u.Voice != nil {
		t.Errorf("Voice = %+v, want nil", u.Voice)
	}
}

func TestInvoke(t *testing.T) {
	svc := &fakeService{}
	voices := voiceList{{Name: "Alice", Language: "en-US"}}

	u, err := Invoke(context.Background(), svc, voices, Request{Top: "HELLO", Bottom: "WORLD", Voice: "Gone", Volume: 50})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(svc.spoken) != 1 || svc.spoken[0].Text != "HELLO WORLD" || svc.spoken[0].Voice != nil {
		t.Errorf("spoken = %+v", svc.spoken)
	}
	if u.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", u.Volume)
	}

	// Invoking again does not wait for or cancel the first utterance.
	if _, err := Invoke(context.Background(), svc, voices, Request{Voice: "Alice", Volume: 1}); err != nil {
		t.Fatalf("second Invoke() error = %v", err)
	}
	if len(svc.spoken) != 2 || svc.spoken[1].Voice == nil {
		t.Errorf("spoken = %+v", svc.spoken)
	}
}

func TestInvokeErrors(t *testing.T) {
	if _, err := Invoke(context.Background(), nil, nil, Request{}); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("nil service error = %v", err)
	}

	svc := &fakeService{}
	if _, err := Invoke(context.Background(), svc, nil, Request{Volume: 101}); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("volume 101 error = %v", err)
	}
	if len(svc.spoken) != 0 {
		t.Error("invalid request reached the service")
	}

	boom := errors.New("queue full")
	svc.err = boom
	if _, err := Invoke(context.Background(), svc, nil, Request{Volume: 5}); !errors.Is(err, boom) {
		t.Errorf("service error = %v, want %v", err, boom)
	}
}

func TestVolume(t *testing.T) {
	tests := []struct {
		v     Volume
		valid bool
		level int
		gain  float64
	}{
		{0, true, 0, 0},
		{1, true, 1, 0.01},
		{33, true, 1, 0.33},
		{34, true, 2, 0.34},
		{66, true, 2, 0.66},
		{67, true, 3, 0.67},
		{100, true, 3, 1},
		{-1, false, 0, -0.01},
		{101, false, 3, 1.01},
	}
	for _, tt := range tests {
		if got := tt.v.Valid(); got != tt.valid {
			t.Errorf("Volume(%d).Valid() = %v, want %v", tt.v, got, tt.valid)
		}
		if got := tt.v.Level(); got != tt.level {
			t.Errorf("Volume(%d).Level() = %d, want %d", tt.v, got, tt.level)
		}
		if got := tt.v.Gain(); got != tt.gain {
			t.Errorf("Volume(%d).Gain() = %v, want %v", tt.v, got, tt.gain)
		}
	}
}
