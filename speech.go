package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/cache"
	"github.com/dgnsrekt/memegen/internal/synth"
	"github.com/dgnsrekt/memegen/internal/synth/engines"
	"github.com/dgnsrekt/memegen/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

const (
	engineMock  = "mock"
	enginePiper = "piper"
	engineGTTS  = "gtts"
	engineNone  = "none"
)

func validEngine(name string) bool {
	switch name {
	case engineMock, enginePiper, engineGTTS, engineNone:
		return true
	}
	return false
}

// validator is implemented by engines that depend on external binaries.
type validator interface {
	Validate() error
}

// newEngine creates the named synthesis engine from the config. rate is the
// sample rate the mock engine produces.
func newEngine(name string, rate int) (synth.Engine, error) {
	var (
		engine synth.Engine
		err    error
	)
	switch name {
	case engineMock:
		return engines.NewMock(rate), nil
	case enginePiper:
		engine, err = engines.NewPiper(engines.PiperConfig{
			Binary:       viper.GetString("speech.piper.binary"),
			ModelDir:     utils.ExpandPath(viper.GetString("speech.piper.model_dir")),
			DefaultModel: viper.GetString("speech.piper.default_model"),
			Timeout:      viper.GetDuration("speech.timeout"),
		})
	case engineGTTS:
		engine, err = engines.NewGTTS(engines.GTTSConfig{
			Binary:            viper.GetString("speech.gtts.binary"),
			Languages:         viper.GetStringSlice("speech.gtts.languages"),
			DefaultLanguage:   viper.GetString("speech.gtts.default_language"),
			Slow:              viper.GetBool("speech.gtts.slow"),
			RequestsPerMinute: viper.GetInt("speech.gtts.requests_per_minute"),
			Timeout:           viper.GetDuration("speech.timeout"),
		})
	default:
		return nil, fmt.Errorf("unknown speech engine %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to create %s engine: %w", name, err)
	}
	if v, ok := engine.(validator); ok {
		if err := v.Validate(); err != nil {
			_ = engine.Close()
			return nil, err
		}
	}
	return engine, nil
}

func cacheConfig() (cache.Config, error) {
	config := cache.DefaultConfig()
	config.DiskCapacity = int64(viper.GetInt("cache.max_size")) << 20
	config.Compression = viper.GetInt("cache.compression")

	dir := viper.GetString("cache.dir")
	if dir == "" {
		base, err := gap.NewScope(gap.User, "memegen").CacheDir()
		if err != nil {
			return config, fmt.Errorf("unable to find cache directory: %w", err)
		}
		dir = filepath.Join(base, "speech")
	}
	config.Dir = utils.ExpandPath(dir)
	return config, nil
}

// newSpeechService wires an engine, player and cache into a speech service.
// The returned closer shuts all of them down.
func newSpeechService(name string) (*synth.Service, func() error, error) {
	var player synth.Player
	if name == engineMock {
		player = audio.NewMockPlayer(audio.DefaultPlayerConfig().SampleRate, 1)
	} else {
		p, err := audio.NewPlayer(audio.DefaultPlayerConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open audio output: %w", err)
		}
		player = p
	}

	engine, err := newEngine(name, player.SampleRate())
	if err != nil {
		_ = player.Close()
		return nil, nil, err
	}

	config, err := cacheConfig()
	if err != nil {
		_ = player.Close()
		_ = engine.Close()
		return nil, nil, err
	}
	c, err := cache.New(config)
	if err != nil {
		_ = player.Close()
		_ = engine.Close()
		return nil, nil, fmt.Errorf("unable to open speech cache: %w", err)
	}

	svc := synth.New(engine, player, c, synth.Config{
		QueueSize: viper.GetInt("speech.queue_size"),
		Timeout:   viper.GetDuration("speech.timeout"),
	})
	log.Debug("speech service ready", "engine", engine.Name(), "rate", player.SampleRate(), "cache", config.Dir)

	closer := func() error {
		stats := c.Stats()
		log.Debug("speech cache", "hits", stats.Hits, "misses", stats.Misses, "hit_rate", stats.HitRate())
		return errors.Join(svc.Close(), c.Close())
	}
	return svc, closer, nil
}
