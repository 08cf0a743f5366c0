package ui

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/decode"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

func loadImageCmd(path string) tea.Cmd {
	return func() tea.Msg {
		res := <-decode.Load(context.Background(), path)
		return imageLoadedMsg(res)
	}
}

func waitForVoicesChanged(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return voicesChangedMsg{}
	}
}

func waitForSpeechError(ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return speechErrMsg{err}
	}
}

// exportCmd writes img as a PNG at path.
func exportCmd(img image.Image, path string) tea.Cmd {
	return func() tea.Msg {
		abs, err := filepath.Abs(path)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return exportedMsg{err: err}
		}
		f, err := os.Create(abs)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return exportedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return exportedMsg{err: err}
		}
		log.Debug("exported meme", "path", abs)
		return exportedMsg{path: abs}
	}
}

func copyToClipboard(s string) {
	// OSC 52 for remote terminals, then the system clipboard.
	termenv.Copy(s)
	if err := clipboard.WriteAll(s); err != nil {
		log.Debug("unable to write system clipboard", "error", err)
	}
}

func humanizeBytes(n int64) string {
	if n <= 0 {
		return "unknown size"
	}
	return humanize.Bytes(uint64(n))
}
