// Package main provides the entry point for the memegen CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/compose"
	"github.com/dgnsrekt/memegen/internal/decode"
	"github.com/dgnsrekt/memegen/internal/meme"
	"github.com/dgnsrekt/memegen/internal/speech"
	"github.com/dgnsrekt/memegen/ui"
	"github.com/dgnsrekt/memegen/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	top          string
	bottom       string
	output       string
	speak        bool
	voiceName    string
	volume       int
	engineName   string
	showAllFiles bool
	mouse        bool
	debug        bool

	rootCmd = &cobra.Command{
		Use:   "memegen [IMAGE]",
		Short: "Make memes on the CLI, with pizzazz!",
		Long: paragraph(
			fmt.Sprintf("\nMake memes on the CLI, %s!\n\nWith an output file memegen renders and exits. Otherwise the TUI opens.", keyword("with pizzazz")),
		),
		Example:          paragraph("memegen doge.png --top \"such cli\" --bottom \"wow\" -o out.png\nmemegen doge.png --top hello --speak --voice en -o out.png\nmemegen"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp"}, cobra.ShellCompDirectiveFilterFileExt
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(*cobra.Command) error {
	// grab config values from Viper
	output = viper.GetString("output")
	mouse = viper.GetBool("mouse")
	showAllFiles = viper.GetBool("all")
	volume = viper.GetInt("speech.volume")
	voiceName = viper.GetString("speech.voice")
	engineName = viper.GetString("speech.engine")

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	if err := speech.Volume(volume).Validate(); err != nil {
		return fmt.Errorf("invalid volume %d: %w", volume, err)
	}
	if !validEngine(engineName) {
		return fmt.Errorf("unknown speech engine %q: use one of mock, piper, gtts or none", engineName)
	}
	if speak && engineName == engineNone {
		return errors.New("cannot use --speak with speech.engine set to none")
	}
	if w, h := viper.GetInt("canvas.width"), viper.GetInt("canvas.height"); w <= 0 || h <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", w, h)
	} else if w != h {
		return fmt.Errorf("canvas must be square, got %dx%d", w, h)
	}
	return nil
}

func execute(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = utils.ExpandPath(args[0])
	}

	if speak && path == "" {
		return errors.New("--speak needs an image")
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	switch {
	// CLI
	case path != "" && (cmd.Flags().Changed("output") || speak || !isTerminal):
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return executeCLI(ctx, path)
	case !isTerminal:
		return errors.New("an image is required when stdout is not a terminal")
	}

	// TUI, prefilled with whatever was passed
	return runTUI(path)
}

// newCanvas builds the drawing surface and compositor from the config.
func newCanvas() (*canvas.Image, *compose.Compositor, error) {
	surface, err := canvas.New(viper.GetInt("canvas.width"), viper.GetInt("canvas.height"))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create canvas: %w", err)
	}
	compositor := compose.New(compose.Style{
		FontRatio: viper.GetFloat64("style.font_ratio"),
		Outline:   viper.GetFloat64("style.outline"),
	})
	return surface, compositor, nil
}

func executeCLI(ctx context.Context, path string) error {
	surface, compositor, err := newCanvas()
	if err != nil {
		return err
	}
	defer surface.Close() //nolint:errcheck

	var (
		svc    speech.Service
		closer = func() error { return nil }
		wait   = func(context.Context) error { return nil }
	)
	if speak {
		s, c, err := newSpeechService(engineName)
		if err != nil {
			return err
		}
		svc, closer, wait = s, c, s.Wait
	}
	defer closer() //nolint:errcheck

	ctrl, err := meme.New(meme.Config{
		Surface:    surface,
		Compositor: compositor,
		Speech:     svc,
		Volume:     speech.Volume(volume),
		Voice:      voiceName,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("unable to list voices: %w", err)
	}

	res := <-decode.Load(ctx, path)
	if res.Err != nil {
		return fmt.Errorf("unable to load image: %w", res.Err)
	}
	log.Debug("decoded image", "path", res.Image.Path, "format", res.Image.Format, "size", res.Image.Size)

	for _, msg := range []meme.Message{
		meme.ImageDecoded{Image: res.Image},
		meme.CaptionsChanged{Captions: compose.Captions{Top: top, Bottom: bottom}},
		meme.Submit{},
	} {
		if err := ctrl.Dispatch(ctx, msg); err != nil {
			return err
		}
	}

	out := output
	if out == "" {
		out = "meme.png"
	}
	out, err = filepath.Abs(utils.ExpandPath(out))
	if err != nil {
		return fmt.Errorf("unable to get absolute path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := surface.Save(out); err != nil {
		return fmt.Errorf("unable to write meme: %w", err)
	}
	fmt.Println("Wrote meme to:", out)

	if !speak {
		return nil
	}
	if err := ctrl.Dispatch(ctx, meme.ReadAloud{}); err != nil {
		return err
	}
	if err := wait(ctx); err != nil {
		return fmt.Errorf("playback interrupted: %w", err)
	}
	if r, ok := svc.(interface{ Errors() <-chan error }); ok {
		select {
		case err := <-r.Errors():
			return fmt.Errorf("unable to read captions: %w", err)
		default:
		}
	}
	return nil
}

func runTUI(path string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.ImagePath = path
	cfg.Top = top
	cfg.Bottom = bottom
	cfg.Output = output
	cfg.Volume = volume
	cfg.Voice = voiceName
	cfg.ShowAllFiles = showAllFiles
	cfg.EnableMouse = cfg.EnableMouse || mouse

	surface, compositor, err := newCanvas()
	if err != nil {
		return err
	}
	defer surface.Close() //nolint:errcheck

	deps := ui.Deps{Surface: surface, Compositor: compositor}
	if engineName != engineNone {
		svc, closer, err := newSpeechService(engineName)
		if err != nil {
			// Read aloud reports the missing service; the rest still works.
			log.Warn("speech disabled", "engine", engineName, "error", err)
		} else {
			defer closer() //nolint:errcheck
			deps.Speech = svc
		}
	}

	p, err := ui.NewProgram(cfg, deps)
	if err != nil {
		return err
	}
	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "mock", "speech engine (mock/piper/gtts/none)")
	rootCmd.Flags().StringVar(&top, "top", "", "top caption")
	rootCmd.Flags().StringVar(&bottom, "bottom", "", "bottom caption")
	rootCmd.Flags().StringVarP(&output, "output", "o", "meme.png", "write the meme to this PNG file and exit")
	rootCmd.Flags().BoolVar(&speak, "speak", false, "read the captions aloud after rendering (CLI-mode only)")
	rootCmd.Flags().StringVar(&voiceName, "voice", speech.DefaultVoice, "voice used to read captions")
	rootCmd.Flags().IntVar(&volume, "volume", 100, "read-aloud volume, 0-100")
	rootCmd.Flags().BoolVarP(&showAllFiles, "all", "a", false, "show system files and directories (TUI-mode only)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("speech.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("speech.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("speech.volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("all", rootCmd.Flags().Lookup("all"))

	viper.SetDefault("canvas.width", 400)
	viper.SetDefault("canvas.height", 400)
	viper.SetDefault("output", "meme.png")
	viper.SetDefault("all", false)
	viper.SetDefault("style.font_ratio", compose.DefaultStyle().FontRatio)
	viper.SetDefault("style.outline", 0)

	// Speech defaults
	viper.SetDefault("speech.engine", "mock")
	viper.SetDefault("speech.volume", 100)
	viper.SetDefault("speech.voice", speech.DefaultVoice)
	viper.SetDefault("speech.queue_size", 8)
	viper.SetDefault("speech.timeout", "30s")
	viper.SetDefault("speech.piper.binary", "piper")
	viper.SetDefault("speech.piper.model_dir", "")
	viper.SetDefault("speech.piper.default_model", "")
	viper.SetDefault("speech.gtts.binary", "gtts-cli")
	viper.SetDefault("speech.gtts.languages", []string{"en"})
	viper.SetDefault("speech.gtts.default_language", "en")
	viper.SetDefault("speech.gtts.slow", false)
	viper.SetDefault("speech.gtts.requests_per_minute", 50)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 100)
	viper.SetDefault("cache.compression", 3)

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "memegen")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "memegen")}, dirs...)
	}

	if c := os.Getenv("MEMEGEN_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("memegen")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("memegen")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "memegen.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
