// Package main provides the entry point for the voxdrop CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voxdrop/voxdrop/internal/cache"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/markdown"
	"github.com/voxdrop/voxdrop/internal/speech"
	"github.com/voxdrop/voxdrop/internal/speech/engines"
	"github.com/voxdrop/voxdrop/internal/studio"
	"github.com/voxdrop/voxdrop/ui"
	"github.com/voxdrop/voxdrop/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	engineName string
	mouse      bool

	opts options

	// lets VOXDROP_CACHE_MAX_SIZE override cache.max_size
	envKeyReplacer = strings.NewReplacer(".", "_")

	rootCmd = &cobra.Command{
		Use:   "voxdrop [FILE]",
		Short: "Turn text into MP3 audio",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into %s with Google Translate's voices.", keyword("downloadable MP3 audio")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOptions()
		},
		RunE: execute,
	}
)

// options are the validated settings shared by every command.
type options struct {
	Workdir       string
	RetentionDays int
	Language      string
	Accent        string
	Slow          bool
	Engine        speech.EngineType
}

func (o options) retention() time.Duration {
	return time.Duration(o.RetentionDays) * 24 * time.Hour
}

func validateOptions() error {
	catalog := speech.DefaultCatalog()

	if configFile != "" && configFile != viper.ConfigFileUsed() {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	opts.Workdir = utils.ExpandPath(viper.GetString("workdir"))
	if opts.Workdir == "" {
		return errors.New("workdir must not be empty")
	}

	opts.RetentionDays = viper.GetInt("retention_days")
	if opts.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be at least 1, got %d", opts.RetentionDays)
	}

	opts.Language = viper.GetString("language")
	if _, ok := catalog.Language(opts.Language); !ok {
		return fmt.Errorf("unsupported language %q (see voxdrop languages)", opts.Language)
	}

	opts.Accent = viper.GetString("accent")
	if !catalog.HasAccent(opts.Accent) {
		return fmt.Errorf("unsupported accent %q (see voxdrop languages)", opts.Accent)
	}

	opts.Slow = viper.GetBool("slow")

	engine, err := speech.ValidateEngineSelection(engineName, viper.GetString("engine"))
	if err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	opts.Engine = engine

	if n := viper.GetInt("cache.max_size"); n < 1 || n > 10000 {
		return fmt.Errorf("cache max_size must be between 1 and 10000 MB, got %d", n)
	}
	if n := viper.GetInt("cache.compression_level"); n < 0 || n > 22 {
		return fmt.Errorf("cache compression_level must be between 0 and 22, got %d", n)
	}
	return nil
}

// newStudio builds the synthesis pipeline from the validated options and
// runs the startup sweep. The returned closer flushes the audio cache.
func newStudio() (*studio.Studio, func() error, error) {
	logger := log.Default()

	engine, err := engines.New(engines.Config{
		Engine: opts.Engine,
		GTTS: engines.GTTSConfig{
			Timeout:           viper.GetDuration("gtts.timeout"),
			RequestsPerMinute: viper.GetInt("gtts.requests_per_minute"),
			Logger:            logger.WithPrefix("gtts"),
		},
		CLI: engines.CLIConfig{
			Binary:  utils.ExpandPath(viper.GetString("cli.binary")),
			Timeout: viper.GetDuration("cli.timeout"),
			Logger:  logger.WithPrefix("gtts-cli"),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to start synthesis engine: %w", err)
	}

	studioOpts := []studio.Option{
		studio.WithRetention(opts.retention()),
		studio.WithLogger(logger.WithPrefix("studio")),
	}

	closer := func() error { return nil }
	if viper.GetBool("cache.enabled") {
		c, err := openCache()
		if err != nil {
			log.Warn("Audio cache disabled", "err", err)
		} else {
			studioOpts = append(studioOpts, studio.WithCache(c))
			closer = c.Close
		}
	}

	j := janitor.New(opts.Workdir, janitor.WithLogger(logger.WithPrefix("janitor")))
	s := studio.New(engine, j, studioOpts...)
	if n := s.Startup(); n > 0 {
		log.Info("Removed old audio files", "count", n, "dir", j.Dir())
	}
	return s, closer, nil
}

func openCache() (*cache.DiskCache, error) {
	dir := viper.GetString("cache.dir")
	if dir == "" {
		d, err := gap.NewScope(gap.User, "voxdrop").CacheDir()
		if err != nil {
			return nil, fmt.Errorf("unable to find cache directory: %w", err)
		}
		dir = filepath.Join(d, "audio")
	}

	cfg := cache.DefaultConfig()
	cfg.Dir = utils.ExpandPath(dir)
	cfg.Capacity = int64(viper.GetInt("cache.max_size")) * 1024 * 1024
	cfg.CompressionLevel = viper.GetInt("cache.compression_level")
	cfg.TTL = opts.retention()
	return cache.NewDiskCache(cfg) //nolint:wrapcheck
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readInput reads text from a file, or from stdin when arg is "-". Markdown
// is reduced to its spoken text.
func readInput(arg string, asMarkdown bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if arg == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", fmt.Errorf("unable to read input: %w", err)
	}

	if asMarkdown || markdown.IsMarkdownFile(arg) {
		text, err := markdown.ToSpeech(b)
		if err != nil {
			return "", fmt.Errorf("unable to read markdown: %w", err)
		}
		return text, nil
	}
	return string(b), nil
}

func execute(cmd *cobra.Command, args []string) error {
	// if stdin is a pipe then convert it right away, like "voxdrop say".
	if len(args) == 0 {
		if yes, err := stdinIsPipe(); err != nil {
			return err
		} else if yes {
			return runSay(cmd, []string{"-"})
		}
	}

	var text string
	if len(args) == 1 {
		t, err := readInput(args[0], false)
		if err != nil {
			return err
		}
		text = t
	}
	return runTUI(text)
}

func runTUI(text string) error {
	// Read environment to get display settings
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	if cfg.GlamourStyle != styles.AutoStyle && styles.DefaultStyles[cfg.GlamourStyle] == nil {
		if _, err := os.Stat(utils.ExpandPath(cfg.GlamourStyle)); err != nil {
			log.Warn("Unknown glamour style, using auto", "style", cfg.GlamourStyle)
			cfg.GlamourStyle = styles.AutoStyle
		}
	}

	cfg.Language = opts.Language
	cfg.Accent = opts.Accent
	cfg.Slow = opts.Slow
	cfg.RetentionDays = opts.RetentionDays
	cfg.EnableMouse = mouse

	// The TUI owns the terminal, so logs go to a file.
	if logSettings.File == "" {
		closeLog, err := logToFile("")
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		defer func() {
			_ = closeLog()
			log.SetOutput(os.Stderr)
		}()
	}

	s, closeCache, err := newStudio()
	if err != nil {
		return err
	}
	defer closeCache() //nolint:errcheck

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, s, text).Run(); err != nil {
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

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("lang", "l", speech.DefaultLanguage, "spoken language (see voxdrop languages)")
	flags.StringP("tld", "t", speech.DefaultAccent, "accent, as a Google Translate domain (see voxdrop languages)")
	flags.Bool("slow", false, "speak slowly")
	flags.String("workdir", janitor.DefaultDir, "directory for generated MP3 files")
	flags.StringVar(&engineName, "engine", "", "synthesis engine (gtts/gtts-cli/mock)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("language", flags.Lookup("lang"))
	_ = viper.BindPFlag("accent", flags.Lookup("tld"))
	_ = viper.BindPFlag("slow", flags.Lookup("slow"))
	_ = viper.BindPFlag("workdir", flags.Lookup("workdir"))

	viper.SetDefault("workdir", janitor.DefaultDir)
	viper.SetDefault("retention_days", janitor.DefaultRetentionDays)
	viper.SetDefault("language", speech.DefaultLanguage)
	viper.SetDefault("accent", speech.DefaultAccent)
	viper.SetDefault("slow", false)
	viper.SetDefault("engine", string(speech.EngineGTTS))

	viper.SetDefault("gtts.timeout", 30*time.Second)
	viper.SetDefault("gtts.requests_per_minute", 120)
	viper.SetDefault("cli.binary", "gtts-cli")
	viper.SetDefault("cli.timeout", 60*time.Second)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 100)
	viper.SetDefault("cache.compression_level", 3)

	viper.SetDefault("serve.addr", ":8501")

	rootCmd.AddCommand(tuiCmd, sayCmd, serveCmd, sweepCmd, languagesCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voxdrop")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voxdrop")}, dirs...)
	}

	if c := os.Getenv("VOXDROP_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voxdrop")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voxdrop")
	viper.SetEnvKeyReplacer(envKeyReplacer)
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
		configFile = filepath.Join(dirs[0], "voxdrop.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
