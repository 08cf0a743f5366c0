package synth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/cache"
	"github.com/dgnsrekt/memegen/internal/speech"
)

// Config configures a Service.
type Config struct {
	QueueSize int           // pending utterances before Speak fails
	Timeout   time.Duration // per-utterance synthesis bound
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize: 8,
		Timeout:   30 * time.Second,
	}
}

// Service queues utterances and plays them in order on one worker.
type Service struct {
	engine Engine
	player Player
	cache  Cache
	config Config

	queue   chan speech.Utterance
	changes chan struct{}
	errs    chan error

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	pending int
	idle    chan struct{} // closed when pending drops to zero
}

var _ speech.Service = (*Service)(nil)

// New starts a service. The service owns engine and player and closes
// them on Close. A nil cache disables caching.
func New(engine Engine, player Player, c Cache, config Config) *Service {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		engine:  engine,
		player:  player,
		cache:   c,
		config:  config,
		queue:   make(chan speech.Utterance, config.QueueSize),
		changes: make(chan struct{}, 1),
		errs:    make(chan error, config.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	s.done.Add(1)
	go s.worker()

	if w, ok := engine.(Watcher); ok {
		s.done.Add(1)
		go s.forward(w.Changes())
	}
	return s
}

// ListVoices returns the engine's current voices.
func (s *Service) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	return s.engine.Voices(ctx)
}

// VoicesChanged signals when the engine's voice set changes. Signals
// arriving before the previous one was read are coalesced.
func (s *Service) VoicesChanged() <-chan struct{} {
	return s.changes
}

// Errors reports playback failures. Failures are dropped when nobody reads.
func (s *Service) Errors() <-chan error {
	return s.errs
}

// Speak queues u and returns without waiting for playback.
func (s *Service) Speak(_ context.Context, u speech.Utterance) error {
	if u.Volume < 0 || u.Volume > 1 {
		return fmt.Errorf("%w: %v", speech.ErrInvalidVolume, u.Volume)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	select {
	case s.queue <- u:
		if s.pending == 0 {
			s.idle = make(chan struct{})
		}
		s.pending++
		return nil
	default:
		return ErrQueueFull
	}
}

// Wait blocks until every queued utterance has played or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()
		return nil
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops playback, drops queued utterances and closes the engine
// and player.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.done.Wait()

	var errs []string
	if err := s.player.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := s.engine.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing speech service: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Service) forward(changes <-chan struct{}) {
	defer s.done.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			select {
			case s.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (s *Service) worker() {
	defer s.done.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.drain()
			return
		case u := <-s.queue:
			if err := s.play(u); err != nil && s.ctx.Err() == nil {
				log.Error("speech playback failed", "engine", s.engine.Name(), "error", err)
				select {
				case s.errs <- err:
				default:
				}
			}
			s.finished()
		}
	}
}

func (s *Service) finished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}

func (s *Service) drain() {
	_ = s.player.Stop()
	for {
		select {
		case <-s.queue:
			s.finished()
		default:
			return
		}
	}
}

func (s *Service) play(u speech.Utterance) error {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		log.Debug("skipping blank utterance")
		return nil
	}

	pcm, err := s.render(text, u.Voice)
	if err != nil {
		return err
	}
	if err := s.player.SetVolume(u.Volume); err != nil {
		return err
	}
	if err := s.player.Play(pcm); err != nil {
		return fmt.Errorf("unable to play audio: %w", err)
	}
	return s.player.Wait(s.ctx)
}

// render returns PCM at the player's rate, from cache when possible.
func (s *Service) render(text string, voice *speech.Voice) ([]byte, error) {
	rate := s.player.SampleRate()
	name := speech.DefaultVoice
	if voice != nil {
		name = voice.Name
	}
	key := cache.Key(s.engine.Name(), name, fmt.Sprint(rate), text)

	if s.cache != nil {
		if pcm, ok := s.cache.Get(key); ok {
			log.Debug("speech cache hit", "voice", name)
			return pcm, nil
		}
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	out, err := s.engine.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("unable to synthesize: %w", err)
	}
	pcm, err := audio.Resample(out.PCM, out.SampleRate, rate)
	if err != nil {
		return nil, err
	}
	log.Debug("synthesized", "engine", s.engine.Name(), "voice", name,
		"took", time.Since(start), "audio", audio.Duration(pcm, rate))

	if s.cache != nil {
		if err := s.cache.Put(key, pcm); err != nil {
			log.Debug("not caching audio", "error", err)
		}
	}
	return pcm, nil
}
