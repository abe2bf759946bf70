package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/voxdrop/voxdrop/internal/speech"
)

// maxMP3Size is a sanity limit on gtts-cli output.
const maxMP3Size = 50 * 1024 * 1024

// CLIEngine synthesizes speech by running the gtts-cli program from the gTTS
// Python package.
type CLIEngine struct {
	binary  string
	timeout time.Duration
	logger  *log.Logger
}

// CLIConfig holds configuration for the gtts-cli engine.
type CLIConfig struct {
	// Binary is the program to run; searched in PATH and ~/.local/bin when
	// not absolute (defaults to "gtts-cli").
	Binary string

	// Timeout for one invocation (defaults to 60s).
	Timeout time.Duration

	Logger *log.Logger
}

// NewCLIEngine locates the gtts-cli binary and returns an engine for it.
func NewCLIEngine(config CLIConfig) (*CLIEngine, error) {
	if config.Binary == "" {
		config.Binary = "gtts-cli"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	binary, err := findBinary(config.Binary)
	if err != nil {
		return nil, err
	}
	config.Logger.Debug("gtts-cli: found binary", "path", binary)

	return &CLIEngine{
		binary:  binary,
		timeout: config.Timeout,
		logger:  config.Logger,
	}, nil
}

func findBinary(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		if p, err := homedir.Expand(filepath.Join("~", ".local", "bin", name)); err == nil {
			candidates = append(candidates, p)
		}
	}

	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s not found. Install with: pip install gtts", name)
}

// Name returns the engine name.
func (e *CLIEngine) Name() string {
	return string(speech.EngineGTTSCLI)
}

// Args returns the gtts-cli arguments for req. The text itself is passed on
// stdin.
func (e *CLIEngine) Args(req speech.Request) []string {
	args := []string{"-", "--lang", req.Language, "--tld", req.Accent}
	if req.Slow {
		args = append(args, "--slow")
	}
	return append(args, "--output", "-")
}

// Synthesize runs gtts-cli and returns its MP3 output.
func (e *CLIEngine) Synthesize(ctx context.Context, req speech.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, e.Args(req)...)
	cmd.Stdin = strings.NewReader(req.Text)
	// Try graceful shutdown first, then kill.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("gtts-cli timed out after %s (network issue?)", e.timeout)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gtts-cli cancelled: %w", ctx.Err())
		}
		e.logger.Error("gtts-cli failed", "err", err, "stderr", stderr.String())
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("gtts-cli failed: %s", lastLine(msg))
		}
		return nil, fmt.Errorf("gtts-cli failed: %w", err)
	}

	mp3 := stdout.Bytes()
	if len(mp3) == 0 {
		return nil, fmt.Errorf("gtts-cli produced no MP3 output, stderr: %s", stderr.String())
	}
	if len(mp3) > maxMP3Size {
		return nil, fmt.Errorf("gtts-cli MP3 output too large: %d bytes (max %d)", len(mp3), maxMP3Size)
	}
	return mp3, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

var _ speech.Synthesizer = (*CLIEngine)(nil)
