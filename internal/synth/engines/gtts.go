package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/internal/synth"
	"golang.org/x/time/rate"
)

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	Binary string // defaults to "gtts-cli"
	FFmpeg string // defaults to "ffmpeg"

	// Languages offered as voices, e.g. "en", "fr". Defaults to DefaultLanguage.
	Languages       []string
	DefaultLanguage string // defaults to "en"
	Slow            bool

	SampleRate        int // PCM rate ffmpeg converts to, defaults to 44100
	RequestsPerMinute int // defaults to 50
	Timeout           time.Duration
}

// GTTS synthesizes with gtts-cli (Google Translate TTS) and converts the
// MP3 to PCM with ffmpeg. Requests are rate limited to avoid being blocked.
type GTTS struct {
	config  GTTSConfig
	limiter *rate.Limiter
}

var _ synth.Engine = (*GTTS)(nil)

// NewGTTS creates a gTTS engine.
func NewGTTS(config GTTSConfig) (*GTTS, error) {
	if config.Binary == "" {
		config.Binary = "gtts-cli"
	}
	if config.FFmpeg == "" {
		config.FFmpeg = "ffmpeg"
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}
	if len(config.Languages) == 0 {
		config.Languages = []string{config.DefaultLanguage}
	}
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 50
	}
	if config.RequestsPerMinute < 0 {
		return nil, errors.New("requests per minute must be positive")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &GTTS{
		config:  config,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Name implements synth.Engine.
func (e *GTTS) Name() string { return "gtts" }

// Voices implements synth.Engine. Each configured language is a voice.
func (e *GTTS) Voices(context.Context) ([]speech.Voice, error) {
	voices := make([]speech.Voice, 0, len(e.config.Languages))
	for _, lang := range e.config.Languages {
		voices = append(voices, speech.Voice{
			Name:     lang,
			Language: lang,
			Default:  lang == e.config.DefaultLanguage,
		})
	}
	return voices, nil
}

// Synthesize implements synth.Engine: text → gtts-cli → MP3 → ffmpeg → PCM.
func (e *GTTS) Synthesize(ctx context.Context, text string, voice *speech.Voice) (synth.Audio, error) {
	if err := validateText(text); err != nil {
		return synth.Audio{}, err
	}

	lang := e.config.DefaultLanguage
	if voice != nil && voice.Language != "" {
		lang = voice.Language
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return synth.Audio{}, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	mp3, err := run(ctx, e.config.Timeout, nil, e.config.Binary, e.gttsArgs(text, lang)...)
	if err != nil {
		return synth.Audio{}, fmt.Errorf("MP3 generation failed: %w", err)
	}

	pcm, err := run(ctx, e.config.Timeout, bytes.NewReader(mp3), e.config.FFmpeg, e.ffmpegArgs()...)
	if err != nil {
		return synth.Audio{}, fmt.Errorf("MP3 to PCM conversion failed: %w", err)
	}
	return synth.Audio{PCM: pcm, SampleRate: e.config.SampleRate}, nil
}

func (e *GTTS) gttsArgs(text, lang string) []string {
	args := []string{text, "-l", lang}
	if e.config.Slow {
		args = append(args, "--slow")
	}
	return append(args, "-o", "-")
}

func (e *GTTS) ffmpegArgs() []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", strconv.Itoa(e.config.SampleRate),
		"-ac", "1",
		"-",
	}
}

// Validate checks that gtts-cli and ffmpeg are on PATH.
func (e *GTTS) Validate() error {
	if _, err := exec.LookPath(e.config.Binary); err != nil {
		return fmt.Errorf("%s not found in PATH: %w\n\nInstall with: pip install gtts", e.config.Binary, err)
	}
	if _, err := exec.LookPath(e.config.FFmpeg); err != nil {
		return fmt.Errorf("%s not found in PATH: %w\n\nInstall ffmpeg for audio conversion", e.config.FFmpeg, err)
	}
	return nil
}

// Close implements synth.Engine.
func (e *GTTS) Close() error { return nil }
