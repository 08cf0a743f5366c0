package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int           // output rate in Hz
	BufferSize time.Duration // device buffer; zero lets oto decide
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100,
		BufferSize: 100 * time.Millisecond,
	}
}

func validateConfig(config PlayerConfig) error {
	if config.SampleRate < 8000 || config.SampleRate > 192000 {
		return fmt.Errorf("sample rate must be between 8000 and 192000 Hz, got %d", config.SampleRate)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// otoContext is process-wide: oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func sharedContext(config PlayerConfig) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   config.SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   config.BufferSize,
		})
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		otoCtx, otoRate = ctx, config.SampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != config.SampleRate {
		return nil, fmt.Errorf("audio device already opened at %d Hz", otoRate)
	}
	return otoCtx, nil
}

// Player plays mono 16-bit little-endian PCM through oto. One buffer plays
// at a time; Play replaces whatever is playing.
type Player struct {
	context *oto.Context

	mu     sync.Mutex
	player *oto.Player
	data   []byte // kept alive for the duration of playback

	state      atomic.Int32
	volume     atomic.Uint64 // math.Float64bits
	sampleRate int
}

// NewPlayer opens the audio device.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ctx, err := sharedContext(config)
	if err != nil {
		return nil, err
	}

	p := &Player{
		context:    ctx,
		sampleRate: config.SampleRate,
	}
	p.state.Store(int32(StateStopped))
	p.volume.Store(math.Float64bits(1))
	log.Debug("audio device ready", "sample_rate", config.SampleRate)
	return p, nil
}

// Play starts playback of pcm, stopping any current playback.
func (p *Player) Play(pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}
	if p.State() == StateClosed {
		return ErrClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	p.data = make([]byte, len(pcm))
	copy(p.data, pcm)
	p.player = p.context.NewPlayer(bytes.NewReader(p.data))
	p.player.SetVolume(p.Volume())
	p.player.Play()
	p.state.Store(int32(StatePlaying))
	return nil
}

// Wait blocks until the current playback finishes or ctx is done.
func (p *Player) Wait(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Stop stops playback and releases the buffer.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		if err := p.player.Close(); err != nil {
			log.Debug("closing oto player", "error", err)
		}
		p.player = nil
	}
	p.data = nil
	if p.State() == StatePlaying {
		p.state.Store(int32(StateStopped))
	}
}

// IsPlaying reports whether audio is still being played.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return false
	}
	if p.player.IsPlaying() {
		return true
	}
	p.stopLocked()
	return false
}

// State returns the current player state.
func (p *Player) State() State {
	return State(p.state.Load())
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	p.volume.Store(math.Float64bits(volume))

	p.mu.Lock()
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	p.mu.Unlock()
	return nil
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// SampleRate returns the device sample rate.
func (p *Player) SampleRate() int {
	return p.sampleRate
}

// Close stops playback. The oto context itself lives for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}
