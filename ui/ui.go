// Package ui provides the terminal interface for memegen.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/compose"
	"github.com/dgnsrekt/memegen/internal/decode"
	"github.com/dgnsrekt/memegen/internal/meme"
	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/utils"
	"github.com/muesli/gitcha"
)

const (
	statusMessageTimeout = time.Second * 3
	ellipsis             = "…"
	defaultOutput        = "meme.png"
)

// Deps are the pieces the UI drives.
type Deps struct {
	Surface    *canvas.Image
	Compositor *compose.Compositor
	Speech     speech.Service // nil disables read-aloud
}

// errorReporter is implemented by speech services that report playback
// failures asynchronously.
type errorReporter interface {
	Errors() <-chan error
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) (*tea.Program, error) {
	log.Debug("starting memegen ui", "image", cfg.ImagePath, "speech", deps.Speech != nil)

	m, err := newModel(cfg, deps)
	if err != nil {
		return nil, err
	}
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(m, opts...), nil
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	imageLoadedMsg          decode.Result
	refreshVoicesMsg        struct{}
	voicesChangedMsg        struct{}
	speechErrMsg            struct{ err error }
	statusMessageTimeoutMsg int
	exportedMsg             struct {
		path string
		err  error
	}
)

type statusMessage struct {
	text    string
	isError bool
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	cwd    string
	width  int
	height int
}

type model struct {
	common *commonModel

	ctrl    *meme.Controller
	surface *canvas.Image
	speech  speech.Service

	generate *control
	clear    *control
	read     *control
	voiceSel *control

	focus       focus
	pathInput   textinput.Model
	topInput    textinput.Model
	bottomInput textinput.Model
	volumeBar   progress.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap

	loading     bool
	voiceIndex  int
	files       []string
	suggestions []string
	fileFinder  chan gitcha.SearchResult

	preview    string
	showHelp   bool
	helpText   string
	status     statusMessage
	statusSeq  int
	lastExport string
}

func newTextInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 48
	ti.SetValue(value)
	return ti
}

func newModel(cfg Config, deps Deps) (model, error) {
	if deps.Surface == nil {
		return model{}, errors.New("ui needs a canvas")
	}

	common := &commonModel{cfg: cfg}
	m := model{
		common:      common,
		surface:     deps.Surface,
		speech:      deps.Speech,
		generate:    &control{label: "Generate"},
		clear:       &control{label: "Clear"},
		read:        &control{label: "Read"},
		voiceSel:    &control{label: "Voice"},
		pathInput:   newTextInput("path/to/image.png", cfg.ImagePath),
		topInput:    newTextInput("top text", cfg.Top),
		bottomInput: newTextInput("bottom text", cfg.Bottom),
		volumeBar:   newVolumeBar(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	m.spinner.Style = lipgloss.NewStyle().Foreground(fuchsia)

	voiceName := cfg.Voice
	if voiceName == "" {
		voiceName = speech.DefaultVoice
	}
	ctrl, err := meme.New(meme.Config{
		Surface:    deps.Surface,
		Compositor: deps.Compositor,
		Speech:     deps.Speech,
		Controls: meme.Controls{
			Submit:      m.generate,
			Reset:       m.clear,
			Read:        m.read,
			VoiceSelect: m.voiceSel,
		},
		Volume: speech.Volume(cfg.Volume),
		// The selector starts disabled; the choice is applied once the
		// voice list loads.
		Voice: speech.DefaultVoice,
	})
	if err != nil {
		return model{}, err
	}
	m.ctrl = ctrl
	m.common.cfg.Voice = voiceName

	_ = m.ctrl.Dispatch(context.Background(), meme.CaptionsChanged{Captions: m.captions()})
	m.loading = cfg.ImagePath != ""
	m.pathInput.Focus()
	return m, nil
}

func (m model) captions() compose.Captions {
	return compose.Captions{Top: m.topInput.Value(), Bottom: m.bottomInput.Value()}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{findLocalFiles(*m.common), textinput.Blink}

	if path := m.pathInput.Value(); path != "" {
		cmds = append(cmds, m.spinner.Tick, loadImageCmd(utils.ExpandPath(path)))
	}
	if m.speech != nil {
		cmds = append(cmds,
			func() tea.Msg { return refreshVoicesMsg{} },
			waitForVoicesChanged(m.speech.VoicesChanged()),
		)
		if r, ok := m.speech.(errorReporter); ok {
			cmds = append(cmds, waitForSpeechError(r.Errors()))
		}
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.help.Width = msg.Width
		m.refreshPreview()
		if m.showHelp {
			m.renderHelp()
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case imageLoadedMsg:
		m.loading = false
		cmds = append(cmds, m.imageLoaded(decode.Result(msg)))

	case refreshVoicesMsg:
		cmds = append(cmds, m.refreshVoices(true))

	case voicesChangedMsg:
		cmds = append(cmds, m.refreshVoices(false), waitForVoicesChanged(m.speech.VoicesChanged()))

	case speechErrMsg:
		cmds = append(cmds, m.showStatus(statusMessage{text: "Speech failed: " + msg.err.Error(), isError: true}))
		if r, ok := m.speech.(errorReporter); ok {
			cmds = append(cmds, waitForSpeechError(r.Errors()))
		}

	case exportedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showStatus(statusMessage{text: "Export failed: " + msg.err.Error(), isError: true}))
			break
		}
		m.lastExport = msg.path
		cmds = append(cmds, m.showStatus(statusMessage{text: "Saved " + msg.path}))

	case statusMessageTimeoutMsg:
		if int(msg) == m.statusSeq {
			m.status = statusMessage{}
		}

	case initLocalFileSearchMsg:
		m.fileFinder = msg.ch
		m.common.cwd = msg.cwd
		cmds = append(cmds, findNextLocalFile(msg.ch))

	case foundLocalFileMsg:
		m.files = append(m.files, stripAbsolutePath(msg.Path, m.common.cwd))
		m.updateSuggestions()
		cmds = append(cmds, findNextLocalFile(m.fileFinder))

	case localFileSearchFinished:
		log.Debug("found images", "count", len(m.files))

	case errMsg:
		cmds = append(cmds, m.showStatus(statusMessage{text: msg.Error(), isError: true}))
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	// Ctrl+C always quits no matter where in the application you are.
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case m.focus == focusPath && key.Matches(msg, m.keys.Accept) && len(m.suggestions) > 0:
		m.pathInput.SetValue(m.suggestions[0])
		m.pathInput.CursorEnd()
		m.updateSuggestions()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus(m.focus.next())

	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus(m.focus.prev())

	case key.Matches(msg, m.keys.Export):
		return m, m.export()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyExportPath()

	case key.Matches(msg, m.keys.Help) && !m.focus.isInput():
		m.showHelp = !m.showHelp
		if m.showHelp {
			m.renderHelp()
		}
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		return m, m.activate()

	case key.Matches(msg, m.keys.Left) && m.focus == focusVolume:
		return m, m.changeVolume(-1)
	case key.Matches(msg, m.keys.Right) && m.focus == focusVolume:
		return m, m.changeVolume(1)
	case key.Matches(msg, m.keys.Left) && m.focus == focusVoice:
		return m, m.changeVoice(-1)
	case key.Matches(msg, m.keys.Right) && m.focus == focusVoice:
		return m, m.changeVoice(1)

	// Arrows move between buttons, wrapping within the row.
	case key.Matches(msg, m.keys.Left) && m.focus.isButton():
		if m.focus == focusGenerate {
			return m, m.setFocus(focusRead)
		}
		return m, m.setFocus(m.focus.prev())
	case key.Matches(msg, m.keys.Right) && m.focus.isButton():
		if m.focus == focusRead {
			return m, m.setFocus(focusGenerate)
		}
		return m, m.setFocus(m.focus.next())
	}

	return m, m.updateInput(msg)
}

// updateInput forwards msg to the focused text input.
func (m *model) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusPath:
		before := m.pathInput.Value()
		m.pathInput, cmd = m.pathInput.Update(msg)
		if m.pathInput.Value() != before {
			m.updateSuggestions()
		}
	case focusTop, focusBottom:
		if m.focus == focusTop {
			m.topInput, cmd = m.topInput.Update(msg)
		} else {
			m.bottomInput, cmd = m.bottomInput.Update(msg)
		}
		if c := m.captions(); c != m.ctrl.Session().Captions {
			_ = m.ctrl.Dispatch(context.Background(), meme.CaptionsChanged{Captions: c})
		}
	}
	return cmd
}

func (m *model) setFocus(f focus) tea.Cmd {
	m.pathInput.Blur()
	m.topInput.Blur()
	m.bottomInput.Blur()
	m.focus = f

	switch f {
	case focusPath:
		return m.pathInput.Focus()
	case focusTop:
		return m.topInput.Focus()
	case focusBottom:
		return m.bottomInput.Focus()
	}
	return nil
}

func (m *model) activate() tea.Cmd {
	switch m.focus {
	case focusPath:
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return m.showStatus(statusMessage{text: "Type an image path first", isError: true})
		}
		m.loading = true
		return tea.Batch(m.spinner.Tick, loadImageCmd(utils.ExpandPath(path)))
	case focusTop, focusBottom:
		return m.setFocus(m.focus.next())
	case focusGenerate:
		return m.press(m.generate, meme.Submit{})
	case focusClear:
		return m.press(m.clear, meme.Reset{})
	case focusRead:
		return m.press(m.read, meme.ReadAloud{})
	}
	return nil
}

// press dispatches a button action. Disabled buttons reject activation.
func (m *model) press(c *control, msg meme.Message) tea.Cmd {
	if !c.enabled {
		return m.showStatus(statusMessage{text: c.label + " is not available right now", isError: true})
	}
	err := m.ctrl.Dispatch(context.Background(), msg)
	m.refreshPreview()
	if err != nil {
		return m.showStatus(statusMessage{text: describeError(err), isError: true})
	}
	switch msg.(type) {
	case meme.Submit:
		m.applyConfiguredVoice()
	case meme.ReadAloud:
		return m.showStatus(statusMessage{text: "Reading captions…"})
	}
	return nil
}

// applyConfiguredVoice selects the voice chosen on the command line or in
// an earlier session once the selector becomes live.
func (m *model) applyConfiguredVoice() {
	want := m.common.cfg.Voice
	if want == m.ctrl.Session().Voice {
		return
	}
	if _, ok := m.ctrl.Voices().Lookup(want); !ok && want != speech.DefaultVoice {
		return
	}
	if err := m.ctrl.Dispatch(context.Background(), meme.VoiceSelected{Voice: want}); err != nil {
		log.Debug("unable to apply voice", "voice", want, "error", err)
	}
}

func (m *model) imageLoaded(res decode.Result) tea.Cmd {
	if res.Err != nil {
		err := m.ctrl.Dispatch(context.Background(), meme.ImageFailed{Err: res.Err})
		return m.showStatus(statusMessage{text: describeError(err), isError: true})
	}
	if err := m.ctrl.Dispatch(context.Background(), meme.ImageDecoded{Image: res.Image}); err != nil {
		return m.showStatus(statusMessage{text: describeError(err), isError: true})
	}
	m.refreshPreview()
	return m.showStatus(statusMessage{text: "Loaded " + imageSummary(res.Image)})
}

func (m *model) refreshVoices(initial bool) tea.Cmd {
	if err := m.ctrl.Dispatch(context.Background(), meme.VoicesChanged{}); err != nil {
		log.Warn("unable to refresh voices", "error", err)
		return nil
	}
	registry := m.ctrl.Voices()
	if initial && m.common.cfg.Voice != speech.DefaultVoice {
		if _, ok := registry.Lookup(m.common.cfg.Voice); !ok {
			log.Warn("configured voice not available", "voice", m.common.cfg.Voice)
		}
	}

	// Keep showing the configured voice until the user picks one; the
	// selector is only live in the rendered state.
	selected := m.ctrl.Session().Voice
	if selected == speech.DefaultVoice {
		selected = m.common.cfg.Voice
	}
	m.voiceIndex = registry.Index(selected)
	if !initial {
		return m.showStatus(statusMessage{text: fmt.Sprintf("Voices updated (%d available)", registry.Len())})
	}
	return nil
}

func (m *model) changeVolume(delta int) tea.Cmd {
	v := stepVolume(m.ctrl.Session().Volume, delta)
	if err := m.ctrl.Dispatch(context.Background(), meme.VolumeChanged{Volume: v}); err != nil {
		return m.showStatus(statusMessage{text: describeError(err), isError: true})
	}
	return nil
}

func (m *model) changeVoice(delta int) tea.Cmd {
	if !m.voiceSel.enabled {
		return m.showStatus(statusMessage{text: "Generate the meme before choosing a voice", isError: true})
	}
	opts := m.ctrl.Voices().Options()
	idx := cycle(m.voiceIndex, delta, len(opts))
	if err := m.ctrl.Dispatch(context.Background(), meme.VoiceSelected{Voice: opts[idx].Value}); err != nil {
		return m.showStatus(statusMessage{text: describeError(err), isError: true})
	}
	m.voiceIndex = idx
	m.common.cfg.Voice = opts[idx].Value
	return nil
}

func (m *model) export() tea.Cmd {
	out := m.common.cfg.Output
	if out == "" {
		out = defaultOutput
	}
	return exportCmd(m.surface.Snapshot(), utils.ExpandPath(out))
}

func (m *model) copyExportPath() tea.Cmd {
	if m.lastExport == "" {
		return m.showStatus(statusMessage{text: "Nothing exported yet (ctrl+s)", isError: true})
	}
	copyToClipboard(m.lastExport)
	return m.showStatus(statusMessage{text: "Copied " + m.lastExport})
}

func (m *model) updateSuggestions() {
	m.suggestions = suggest(m.pathInput.Value(), m.files)
}

func (m *model) refreshPreview() {
	m.preview = renderPreview(m.surface.RGBA(), previewColumns(m.common.cfg.PreviewWidth, m.common.width))
}

func (m *model) renderHelp() {
	out, err := renderHelp(m.common.cfg.GlamourStyle, m.common.width)
	if err != nil {
		log.Error("error rendering help", "error", err)
		out = helpMarkdown
	}
	m.helpText = out
}

func (m *model) showStatus(s statusMessage) tea.Cmd {
	m.statusSeq++
	m.status = s
	seq := m.statusSeq
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg(seq)
	})
}

// describeError turns controller errors into status text.
func describeError(err error) string {
	switch meme.CodeOf(err) {
	case meme.ErrorCodeDecode:
		return "Unable to load image: " + rootCause(err).Error()
	case meme.ErrorCodeInvalidDimension:
		return "Image has no usable size"
	case meme.ErrorCodeControlDisabled:
		return "That action is not available right now"
	case meme.ErrorCodeSpeechUnavailable:
		return "Speech unavailable: " + rootCause(err).Error()
	case meme.ErrorCodeVoiceResolution:
		return "That voice is no longer available"
	}
	return err.Error()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func imageSummary(img *decode.Image) string {
	return fmt.Sprintf("%s (%s, %d×%d, %s)",
		filepath.Base(img.Path), img.Format, img.Width(), img.Height(), humanizeBytes(img.Size))
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
