package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Initial values, usually from flags.
	ImagePath string
	Top       string
	Bottom    string
	Output    string
	Volume    int
	Voice     string

	ShowAllFiles bool
	HomeDir      string `env:"HOME"`
	GlamourStyle string `env:"GLAMOUR_STYLE" envDefault:"auto"`
	EnableMouse  bool   `env:"MEMEGEN_MOUSE"`

	// Preview width in cells; zero fits the terminal.
	PreviewWidth int `env:"MEMEGEN_PREVIEW_WIDTH" envDefault:"0"`
}
