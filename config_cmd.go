package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# where --output and ctrl+s write the meme
output: "meme.png"
# show all files, including hidden and ignored.
all: false
# mouse support (TUI-mode only)
mouse: false
# write debug logs
debug: false

# canvas size in pixels; width and height must match
canvas:
  width: 400
  height: 400

# caption style
style:
  # caption height as a fraction of the canvas height
  font_ratio: 0.1
  # caption outline width in pixels, 0 disables it
  outline: 0

# read-aloud
speech:
  # mock, piper, gtts or none
  engine: "mock"
  # 0-100
  volume: 100
  # "none" uses the engine's default voice
  voice: "none"
  queue_size: 8
  timeout: "30s"

  piper:
    binary: "piper"
    # directory of *.onnx voice models, watched for changes
    model_dir: "~/.local/share/piper"
    default_model: ""

  gtts:
    binary: "gtts-cli"
    languages: ["en"]
    default_language: "en"
    slow: false
    requests_per_minute: 50

# synthesized audio cache
cache:
  # defaults to the user cache directory
  dir: ""
  # disk tier size in MB, 0 keeps audio in memory only
  max_size: 100
  # zstd level, 0 stores raw audio
  compression: 3
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the memegen config file",
	Long:    paragraph(fmt.Sprintf("\n%s the memegen config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("memegen config\nmemegen config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("memegen", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
