package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgnsrekt/memegen/internal/audio"
	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/internal/voice"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var voicesYAML bool

var voicesCmd = &cobra.Command{
	Use:     "voices",
	Short:   "List the voices offered by the speech engine",
	Long:    paragraph(fmt.Sprintf("\n%s the voices the configured speech engine offers. Use a voice name with --voice or speech.voice.", keyword("List"))),
	Example: paragraph("memegen voices\nmemegen voices --engine piper --yaml"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if engineName == engineNone {
			return fmt.Errorf("speech is disabled (engine %q)", engineNone)
		}
		engine, err := newEngine(engineName, audio.DefaultPlayerConfig().SampleRate)
		if err != nil {
			return err
		}
		defer engine.Close() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		voices, err := engine.Voices(ctx)
		if err != nil {
			return fmt.Errorf("unable to list voices: %w", err)
		}
		return writeVoices(os.Stdout, voices, voicesYAML)
	},
}

func writeVoices(w io.Writer, voices []speech.Voice, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(voices); err != nil {
			return fmt.Errorf("unable to encode voices: %w", err)
		}
		return enc.Close()
	}

	if len(voices) == 0 {
		_, err := fmt.Fprintln(w, subtle("no voices available"))
		return err
	}
	for _, v := range voices {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", v.Name, subtle(voice.Label(v))); err != nil {
			return fmt.Errorf("unable to write voices: %w", err)
		}
	}
	return nil
}

func init() {
	voicesCmd.Flags().BoolVar(&voicesYAML, "yaml", false, "print voices as YAML")
}
