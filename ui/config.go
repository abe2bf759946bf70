package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Initial form values.
	Language string
	Accent   string
	Slow     bool

	// Shown under the recent files list.
	RetentionDays int

	GlamourMaxWidth uint   `env:"VOXDROP_GLAMOUR_MAX_WIDTH" envDefault:"100"`
	GlamourStyle    string `env:"GLAMOUR_STYLE"             envDefault:"auto"`
	EnableMouse     bool
}
