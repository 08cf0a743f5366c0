package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MockPlayer simulates playback without producing sound. Each Play lasts
// the PCM's duration divided by Speed; a zero Speed finishes instantly.
type MockPlayer struct {
	mu      sync.Mutex
	state   State
	volume  float64
	rate    int
	speed   float64
	plays   []Playback
	done    chan struct{}
	failing error

	// OnPlay is called after each accepted Play.
	OnPlay func(pcm []byte, volume float64)
}

// Playback records a single Play call.
type Playback struct {
	PCM    []byte
	Volume float64
}

// NewMockPlayer returns a mock at sampleRate whose playback lasts
// duration/speed.
func NewMockPlayer(sampleRate int, speed float64) *MockPlayer {
	return &MockPlayer{
		volume: 1,
		rate:   sampleRate,
		speed:  speed,
	}
}

// FailWith makes subsequent Play calls return err.
func (mp *MockPlayer) FailWith(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.failing = err
}

// Play records pcm and simulates playback.
func (mp *MockPlayer) Play(pcm []byte) error {
	mp.mu.Lock()
	if mp.state == StateClosed {
		mp.mu.Unlock()
		return ErrClosed
	}
	if mp.failing != nil {
		err := mp.failing
		mp.mu.Unlock()
		return err
	}
	if len(pcm) == 0 {
		mp.mu.Unlock()
		return errors.New("audio data is empty")
	}
	mp.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)
	mp.plays = append(mp.plays, Playback{PCM: data, Volume: mp.volume})
	volume := mp.volume

	if mp.speed > 0 {
		done := make(chan struct{})
		mp.done = done
		mp.state = StatePlaying
		d := time.Duration(float64(Duration(data, mp.rate)) / mp.speed)
		go mp.finishAfter(d, done)
	}
	onPlay := mp.OnPlay
	mp.mu.Unlock()

	if onPlay != nil {
		onPlay(data, volume)
	}
	return nil
}

func (mp *MockPlayer) finishAfter(d time.Duration, done chan struct{}) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-done:
		return
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.done == done {
		mp.stopLocked()
	}
}

func (mp *MockPlayer) stopLocked() {
	if mp.done != nil {
		close(mp.done)
		mp.done = nil
	}
	if mp.state == StatePlaying {
		mp.state = StateStopped
	}
}

// Wait blocks until simulated playback finishes or ctx is done.
func (mp *MockPlayer) Wait(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for mp.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Stop ends simulated playback.
func (mp *MockPlayer) Stop() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.stopLocked()
	return nil
}

// IsPlaying reports whether simulated playback is in progress.
func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state == StatePlaying
}

// State returns the current player state.
func (mp *MockPlayer) State() State {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state
}

// SetVolume sets the volume recorded with subsequent plays.
func (mp *MockPlayer) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.volume = volume
	return nil
}

// Volume returns the current volume.
func (mp *MockPlayer) Volume() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.volume
}

// SampleRate returns the simulated device rate.
func (mp *MockPlayer) SampleRate() int {
	return mp.rate
}

// Plays returns a copy of the recorded playbacks.
func (mp *MockPlayer) Plays() []Playback {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	out := make([]Playback, len(mp.plays))
	copy(out, mp.plays)
	return out
}

// Close stops playback and rejects further plays.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.stopLocked()
	mp.state = StateClosed
	return nil
}
