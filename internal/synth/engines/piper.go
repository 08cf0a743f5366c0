package engines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/internal/synth"
	"github.com/fsnotify/fsnotify"
)

const (
	modelExt          = ".onnx"
	defaultPiperRate  = 22050
	defaultPiperLimit = 10 * time.Second
)

// PiperConfig holds configuration for the Piper engine.
type PiperConfig struct {
	Binary       string        // defaults to "piper"
	ModelDir     string        // directory of *.onnx voice models
	DefaultModel string        // model name marked as the default voice
	Timeout      time.Duration // per synthesis
}

// piperModel is a discovered voice model.
type piperModel struct {
	voice      speech.Voice
	path       string
	configPath string
	sampleRate int
}

// Piper synthesizes with the piper binary, one fresh process per request
// with stdin pre-filled. The model directory is watched so voices appear
// and disappear while running.
type Piper struct {
	config PiperConfig

	mu     sync.RWMutex
	models map[string]piperModel
	order  []string

	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

var (
	_ synth.Engine  = (*Piper)(nil)
	_ synth.Watcher = (*Piper)(nil)
)

// NewPiper scans the model directory and starts watching it.
func NewPiper(config PiperConfig) (*Piper, error) {
	if config.Binary == "" {
		config.Binary = "piper"
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultPiperLimit
	}
	if config.ModelDir == "" {
		return nil, errors.New("piper model directory is required")
	}
	if info, err := os.Stat(config.ModelDir); err != nil {
		return nil, fmt.Errorf("piper model directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("piper model directory %s is not a directory", config.ModelDir)
	}

	p := &Piper{
		config:  config,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if err := p.scan(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to watch model directory: %w", err)
	}
	if err := watcher.Add(config.ModelDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("unable to watch model directory: %w", err)
	}
	p.watcher = watcher

	p.wg.Add(1)
	go p.watch()
	return p, nil
}

// Name implements synth.Engine.
func (p *Piper) Name() string { return "piper" }

// Voices implements synth.Engine.
func (p *Piper) Voices(context.Context) ([]speech.Voice, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	voices := make([]speech.Voice, 0, len(p.order))
	for _, name := range p.order {
		voices = append(voices, p.models[name].voice)
	}
	return voices, nil
}

// Changes implements synth.Watcher.
func (p *Piper) Changes() <-chan struct{} { return p.changes }

// Synthesize implements synth.Engine.
func (p *Piper) Synthesize(ctx context.Context, text string, voice *speech.Voice) (synth.Audio, error) {
	if err := validateText(text); err != nil {
		return synth.Audio{}, err
	}
	model, err := p.model(voice)
	if err != nil {
		return synth.Audio{}, err
	}

	args := []string{"--model", model.path, "--output-raw"}
	if model.configPath != "" {
		args = append(args, "--config", model.configPath)
	}

	pcm, err := run(ctx, p.config.Timeout, strings.NewReader(text), p.config.Binary, args...)
	if err != nil {
		return synth.Audio{}, err
	}
	return synth.Audio{PCM: pcm, SampleRate: model.sampleRate}, nil
}

// Validate checks that the piper binary is on PATH.
func (p *Piper) Validate() error {
	if _, err := exec.LookPath(p.config.Binary); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", p.config.Binary, err)
	}
	return nil
}

// Close stops watching the model directory.
func (p *Piper) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		err = p.watcher.Close()
		p.wg.Wait()
	})
	return err
}

func (p *Piper) model(voice *speech.Voice) (piperModel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if voice != nil {
		if m, ok := p.models[voice.Name]; ok {
			return m, nil
		}
		log.Warn("piper voice not found, using default", "voice", voice.Name)
	}
	for _, name := range p.order {
		if m := p.models[name]; m.voice.Default {
			return m, nil
		}
	}
	if len(p.order) > 0 {
		return p.models[p.order[0]], nil
	}
	return piperModel{}, fmt.Errorf("no piper models in %s", p.config.ModelDir)
}

func (p *Piper) watch() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, modelExt) && !strings.HasSuffix(event.Name, modelExt+".json") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			log.Debug("piper model directory changed", "event", event)
			if p.rescan() {
				select {
				case p.changes <- struct{}{}:
				default:
				}
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Error("piper model watcher", "error", err)
		}
	}
}

// rescan reloads the model list and reports whether the voices changed.
func (p *Piper) rescan() bool {
	before, _ := p.Voices(context.Background())
	if err := p.scan(); err != nil {
		log.Error("rescanning piper models", "error", err)
		return false
	}
	after, _ := p.Voices(context.Background())
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}

func (p *Piper) scan() error {
	entries, err := os.ReadDir(p.config.ModelDir)
	if err != nil {
		return fmt.Errorf("unable to read model directory: %w", err)
	}

	models := make(map[string]piperModel)
	var order []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != modelExt {
			continue
		}
		m := loadModel(p.config.ModelDir, e.Name())
		m.voice.Default = m.voice.Name == strings.TrimSuffix(p.config.DefaultModel, modelExt)
		models[m.voice.Name] = m
		order = append(order, m.voice.Name)
	}
	sort.Strings(order)

	p.mu.Lock()
	p.models, p.order = models, order
	p.mu.Unlock()
	return nil
}

// piperSidecar is the subset of a model's .onnx.json we read.
type piperSidecar struct {
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
}

func loadModel(dir, file string) piperModel {
	name := strings.TrimSuffix(file, modelExt)
	m := piperModel{
		voice:      speech.Voice{Name: name, Language: languageFromName(name)},
		path:       filepath.Join(dir, file),
		sampleRate: defaultPiperRate,
	}

	configPath := m.path + ".json"
	data, err := os.ReadFile(configPath)
	if err != nil {
		return m
	}
	m.configPath = configPath

	var sidecar piperSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		log.Warn("ignoring malformed piper model config", "path", configPath, "error", err)
		return m
	}
	if sidecar.Language.Code != "" {
		m.voice.Language = sidecar.Language.Code
	}
	if sidecar.Audio.SampleRate > 0 {
		m.sampleRate = sidecar.Audio.SampleRate
	}
	return m
}

// languageFromName extracts the locale prefix of names like
// "en_US-amy-medium".
func languageFromName(name string) string {
	lang, _, _ := strings.Cut(name, "-")
	return lang
}
