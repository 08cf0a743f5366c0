package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/decode"
	"github.com/muesli/gitcha"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 5

type (
	initLocalFileSearchMsg struct {
		cwd string
		ch  chan gitcha.SearchResult
	}
	foundLocalFileMsg       gitcha.SearchResult
	localFileSearchFinished struct{}
)

// imagePatterns are the gitcha patterns for every decodable extension.
func imagePatterns() []string {
	patterns := make([]string, 0, len(decode.Extensions)*2)
	for _, ext := range decode.Extensions {
		patterns = append(patterns, "*"+ext, "*"+strings.ToUpper(ext))
	}
	return patterns
}

func ignorePatterns(m commonModel) []string {
	return []string{
		m.cfg.HomeDir + "/Library",
		"node_modules",
		".git",
	}
}

func findLocalFiles(m commonModel) tea.Cmd {
	return func() tea.Msg {
		cwd, err := os.Getwd()
		if err != nil {
			log.Error("error finding local files", "error", err)
			return errMsg{err}
		}

		var ch chan gitcha.SearchResult
		if m.cfg.ShowAllFiles {
			ch, err = gitcha.FindAllFilesExcept(cwd, imagePatterns(), nil)
		} else {
			ch, err = gitcha.FindFilesExcept(cwd, imagePatterns(), ignorePatterns(m))
		}
		if err != nil {
			log.Error("error finding local files", "error", err)
			return errMsg{err}
		}
		return initLocalFileSearchMsg{ch: ch, cwd: cwd}
	}
}

func findNextLocalFile(ch chan gitcha.SearchResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if ok {
			return foundLocalFileMsg(res)
		}
		log.Debug("local image search finished")
		return localFileSearchFinished{}
	}
}

func stripAbsolutePath(fullPath, cwd string) string {
	fp, _ := filepath.EvalSymlinks(fullPath)
	cp, _ := filepath.EvalSymlinks(cwd)
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}

// suggest returns up to maxSuggestions files matching query, best first.
// An empty query lists files alphabetically.
func suggest(query string, files []string) []string {
	if len(files) == 0 {
		return nil
	}
	if strings.TrimSpace(query) == "" {
		out := append([]string(nil), files...)
		sort.Strings(out)
		if len(out) > maxSuggestions {
			out = out[:maxSuggestions]
		}
		return out
	}

	matches := fuzzy.Find(query, files)
	out := make([]string, 0, maxSuggestions)
	for _, match := range matches {
		if match.Str == query {
			continue
		}
		out = append(out, match.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
