// Package meme holds the meme session: its control state machine and the
// controller that reacts to UI events by compositing, clearing and speaking.
package meme

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/compose"
	"github.com/dgnsrekt/memegen/internal/decode"
	"github.com/dgnsrekt/memegen/internal/fit"
	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/internal/voice"
)

// Control is a UI control whose enablement the controller drives.
type Control interface {
	SetEnabled(enabled bool)
}

// Controls are the handles the controller updates after every transition.
// Nil handles are skipped.
type Controls struct {
	Submit      Control
	Reset       Control
	Read        Control
	VoiceSelect Control
}

func (c Controls) apply(e Enablement) {
	for _, h := range []struct {
		control Control
		enabled bool
	}{
		{c.Submit, e.Submit},
		{c.Reset, e.Reset},
		{c.Read, e.Read},
		{c.VoiceSelect, e.VoiceSelect},
	} {
		if h.control != nil {
			h.control.SetEnabled(h.enabled)
		}
	}
}

// Session is the mutable state of one meme-editing session.
type Session struct {
	Captions compose.Captions
	Image    *decode.Image // nil until the first image decodes
	Fit      fit.Result
	Volume   speech.Volume
	Voice    string // selected voice name or speech.DefaultVoice
}

// Kind identifies a Message.
type Kind int

const (
	KindImageDecoded Kind = iota
	KindImageFailed
	KindCaptionsChanged
	KindSubmit
	KindReset
	KindReadAloud
	KindVolumeChanged
	KindVoiceSelected
	KindVoicesChanged
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindImageDecoded:
		return "image-decoded"
	case KindImageFailed:
		return "image-failed"
	case KindCaptionsChanged:
		return "captions-changed"
	case KindSubmit:
		return "submit"
	case KindReset:
		return "reset"
	case KindReadAloud:
		return "read-aloud"
	case KindVolumeChanged:
		return "volume-changed"
	case KindVoiceSelected:
		return "voice-selected"
	case KindVoicesChanged:
		return "voices-changed"
	default:
		return "unknown"
	}
}

// Message is a UI event delivered to Controller.Dispatch.
type Message interface {
	Kind() Kind
}

type (
	// ImageDecoded carries a freshly decoded source image.
	ImageDecoded struct{ Image *decode.Image }
	// ImageFailed reports a failed image load.
	ImageFailed struct{ Err error }
	// CaptionsChanged carries the caption inputs as typed.
	CaptionsChanged struct{ Captions compose.Captions }
	// Submit is the generate action.
	Submit struct{}
	// Reset is the clear action.
	Reset struct{}
	// ReadAloud is the read-text action.
	ReadAloud struct{}
	// VolumeChanged carries a new volume level.
	VolumeChanged struct{ Volume speech.Volume }
	// VoiceSelected carries the chosen selector value.
	VoiceSelected struct{ Voice string }
	// VoicesChanged signals that the speech service's voice set changed.
	VoicesChanged struct{}
)

func (ImageDecoded) Kind() Kind    { return KindImageDecoded }
func (ImageFailed) Kind() Kind     { return KindImageFailed }
func (CaptionsChanged) Kind() Kind { return KindCaptionsChanged }
func (Submit) Kind() Kind          { return KindSubmit }
func (Reset) Kind() Kind           { return KindReset }
func (ReadAloud) Kind() Kind       { return KindReadAloud }
func (VolumeChanged) Kind() Kind   { return KindVolumeChanged }
func (VoiceSelected) Kind() Kind   { return KindVoiceSelected }
func (VoicesChanged) Kind() Kind   { return KindVoicesChanged }

type handler func(ctx context.Context, msg Message) error

// Config configures a Controller.
type Config struct {
	Surface    canvas.Surface
	Compositor *compose.Compositor // defaults to compose.DefaultStyle
	Speech     speech.Service      // nil disables read-aloud
	Controls   Controls

	Volume speech.Volume
	Voice  string
}

// Controller owns a Session and reacts to Messages. Dispatch must be called
// from a single goroutine.
type Controller struct {
	session    Session
	surface    canvas.Surface
	compositor *compose.Compositor
	machine    *Machine
	voices     *voice.Registry
	speech     speech.Service
	controls   Controls
	handlers   map[Kind]handler
}

// New returns a controller in StateIdle and applies the idle enablement to
// the controls.
func New(cfg Config) (*Controller, error) {
	if cfg.Surface == nil {
		return nil, errors.New("controller needs a surface")
	}
	if b := cfg.Surface.Bounds(); b.Dx() != b.Dy() {
		return nil, NewError(ErrorCodeInvalidDimension,
			fmt.Sprintf("canvas is %dx%d", b.Dx(), b.Dy()), ErrNonSquareCanvas)
	}
	if err := cfg.Volume.Validate(); err != nil {
		return nil, NewError(ErrorCodeInvalidInput, "invalid initial volume", err)
	}
	if cfg.Compositor == nil {
		cfg.Compositor = compose.New(compose.DefaultStyle())
	}
	if cfg.Voice == "" {
		cfg.Voice = speech.DefaultVoice
	}

	c := &Controller{
		session: Session{
			Volume: cfg.Volume,
			Voice:  cfg.Voice,
		},
		surface:    cfg.Surface,
		compositor: cfg.Compositor,
		machine:    NewMachine(),
		voices:     voice.NewRegistry(cfg.Speech),
		speech:     cfg.Speech,
		controls:   cfg.Controls,
	}
	c.handlers = map[Kind]handler{
		KindImageDecoded:    c.handleImageDecoded,
		KindImageFailed:     c.handleImageFailed,
		KindCaptionsChanged: c.handleCaptionsChanged,
		KindSubmit:          c.handleSubmit,
		KindReset:           c.handleReset,
		KindReadAloud:       c.handleReadAloud,
		KindVolumeChanged:   c.handleVolumeChanged,
		KindVoiceSelected:   c.handleVoiceSelected,
		KindVoicesChanged:   c.handleVoicesChanged,
	}
	c.machine.OnTransition(func(from State, ev Event, to State) {
		log.Debug("control state transition", "from", from, "event", ev, "to", to)
		c.controls.apply(to.Enablement())
	})
	c.controls.apply(c.machine.Enablement())
	return c, nil
}

// Init performs the startup voice refresh. A service that is not ready yet
// yields an empty list; the next VoicesChanged repopulates it.
func (c *Controller) Init(ctx context.Context) error {
	if c.speech == nil {
		return nil
	}
	return c.Dispatch(ctx, VoicesChanged{})
}

// Dispatch routes msg to its handler.
func (c *Controller) Dispatch(ctx context.Context, msg Message) error {
	if msg == nil {
		return NewError(ErrorCodeUnknownMessage, "nil message", nil)
	}
	h, ok := c.handlers[msg.Kind()]
	if !ok {
		return NewError(ErrorCodeUnknownMessage, fmt.Sprintf("no handler for %s", msg.Kind()), nil)
	}
	if err := h(ctx, msg); err != nil {
		log.Debug("dispatch failed", "kind", msg.Kind(), "error", err)
		return err
	}
	return nil
}

// Session returns a copy of the session state.
func (c *Controller) Session() Session {
	return c.session
}

// State returns the current control state.
func (c *Controller) State() State {
	return c.machine.Current()
}

// Enablement returns the current control flags.
func (c *Controller) Enablement() Enablement {
	return c.machine.Enablement()
}

// Voices returns the voice registry.
func (c *Controller) Voices() *voice.Registry {
	return c.voices
}

// Surface returns the drawing surface.
func (c *Controller) Surface() canvas.Surface {
	return c.surface
}

func (c *Controller) handleImageDecoded(_ context.Context, msg Message) error {
	img := msg.(ImageDecoded).Image
	if img == nil || img.Image == nil {
		return NewError(ErrorCodeDecode, "no image", decode.ErrDecode)
	}

	r, err := fit.ComputeRect(c.surface.Bounds(), img.Bounds())
	if err != nil {
		return NewError(ErrorCodeInvalidDimension, "unable to fit image", err).
			WithContext("path", img.Path)
	}

	c.session.Image = img
	c.session.Fit = r
	if _, err := c.machine.Fire(EventImageLoaded); err != nil {
		return err
	}

	// Live preview, independent of the control state.
	c.compose()
	log.Debug("image composited", "path", img.Path, "fit", r)
	return nil
}

func (c *Controller) handleImageFailed(_ context.Context, msg Message) error {
	err := msg.(ImageFailed).Err
	if err == nil {
		err = decode.ErrDecode
	}
	log.Warn("image load failed", "error", err)
	return NewError(ErrorCodeDecode, "unable to load image", err)
}

func (c *Controller) handleCaptionsChanged(_ context.Context, msg Message) error {
	c.session.Captions = msg.(CaptionsChanged).Captions
	return nil
}

func (c *Controller) handleSubmit(_ context.Context, _ Message) error {
	if !c.machine.Enablement().Submit {
		return c.disabled("submit")
	}
	if _, err := c.machine.Fire(EventSubmit); err != nil {
		return err
	}
	c.compose()
	return nil
}

func (c *Controller) handleReset(_ context.Context, _ Message) error {
	if !c.machine.Enablement().Reset {
		return c.disabled("reset")
	}
	if _, err := c.machine.Fire(EventReset); err != nil {
		return err
	}
	c.compositor.Clear(c.surface)
	return nil
}

func (c *Controller) handleReadAloud(ctx context.Context, _ Message) error {
	if !c.machine.Enablement().Read {
		return c.disabled("read")
	}
	if c.speech == nil {
		return NewError(ErrorCodeSpeechUnavailable, "no speech engine configured", speech.ErrServiceUnavailable)
	}

	req := speech.Request{
		Top:    c.session.Captions.Top,
		Bottom: c.session.Captions.Bottom,
		Voice:  c.session.Voice,
		Volume: c.session.Volume,
	}
	if _, err := speech.Invoke(ctx, c.speech, c.voices, req); err != nil {
		return NewError(ErrorCodeSpeechUnavailable, "unable to read captions", err)
	}
	return nil
}

func (c *Controller) handleVolumeChanged(_ context.Context, msg Message) error {
	v := msg.(VolumeChanged).Volume
	if err := v.Validate(); err != nil {
		return NewError(ErrorCodeInvalidInput, "invalid volume", err)
	}
	c.session.Volume = v
	return nil
}

func (c *Controller) handleVoiceSelected(_ context.Context, msg Message) error {
	if !c.machine.Enablement().VoiceSelect {
		return c.disabled("voice select")
	}
	name := msg.(VoiceSelected).Voice
	if name == "" {
		name = speech.DefaultVoice
	}
	if name != speech.DefaultVoice {
		if _, ok := c.voices.Lookup(name); !ok {
			return NewError(ErrorCodeVoiceResolution, "unknown voice", speech.ErrVoiceResolutionMiss).
				WithContext("voice", name)
		}
	}
	c.session.Voice = name
	return nil
}

func (c *Controller) handleVoicesChanged(ctx context.Context, _ Message) error {
	if err := c.voices.Refresh(ctx); err != nil {
		return NewError(ErrorCodeSpeechUnavailable, "unable to refresh voices", err)
	}
	if c.session.Voice != speech.DefaultVoice {
		if _, ok := c.voices.Lookup(c.session.Voice); !ok {
			log.Info("selected voice no longer offered", "voice", c.session.Voice)
		}
	}
	return nil
}

func (c *Controller) compose() {
	var img = c.session.Image
	if img == nil {
		c.compositor.Compose(c.surface, fit.Result{}, nil, c.session.Captions)
		return
	}
	c.compositor.Compose(c.surface, c.session.Fit, img.Image, c.session.Captions)
}

func (c *Controller) disabled(action string) error {
	return NewError(ErrorCodeControlDisabled, action+" is not available", ErrControlDisabled).
		WithContext("state", c.machine.Current().String())
}
