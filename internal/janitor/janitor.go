// Package janitor owns the working directory where synthesized audio is
// written. It names output files, lists and serves them back, and sweeps
// away files older than the retention window.
package janitor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// DefaultDir is the working directory used when none is configured.
	DefaultDir = "temp"

	// DefaultRetentionDays is how long output files are kept.
	DefaultRetentionDays = 7

	// Ext is the extension of every file the janitor manages.
	Ext = ".mp3"

	// TimestampLayout prefixes every output file name (YYYYMMDD_HHMMSS).
	TimestampLayout = "20060102_150405"
)

// ErrInvalidName is returned by Open for names that do not refer to a
// managed file.
var ErrInvalidName = errors.New("invalid audio file name")

// File describes one output file in the working directory.
type File struct {
	Path      string
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Janitor manages the ephemeral output files of a single directory.
type Janitor struct {
	dir    string
	now    func() time.Time
	suffix func() string
	logger *log.Logger
}

// Option configures a Janitor.
type Option func(*Janitor)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Janitor) { j.now = now }
}

// WithLogger sets the logger used for swallowed errors.
func WithLogger(l *log.Logger) Option {
	return func(j *Janitor) { j.logger = l }
}

// New returns a Janitor for dir. The directory is created lazily.
func New(dir string, opts ...Option) *Janitor {
	if dir == "" {
		dir = DefaultDir
	}
	j := &Janitor{
		dir:    dir,
		now:    time.Now,
		suffix: randomSuffix,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Dir returns the working directory.
func (j *Janitor) Dir() string {
	return j.dir
}

// ResolveOutputPath returns <dir>/<YYYYMMDD_HHMMSS>_<stub>.mp3, creating the
// directory if needed. Two calls within the same second with the same stub
// return the same path; Save handles that case.
func (j *Janitor) ResolveOutputPath(stub string) (string, error) {
	if err := os.MkdirAll(j.dir, 0o755); err != nil { //nolint:gosec
		return "", fmt.Errorf("unable to create working directory: %w", err)
	}
	name := j.now().Format(TimestampLayout) + "_" + stub + Ext
	return filepath.Join(j.dir, name), nil
}

// Save writes audio to a fresh output file for stub. Existing files are never
// overwritten: if the resolved name is taken a random suffix is appended.
func (j *Janitor) Save(stub string, audio []byte) (File, error) {
	path, err := j.ResolveOutputPath(stub)
	if err != nil {
		return File{}, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec
	if errors.Is(err, fs.ErrExist) {
		path = strings.TrimSuffix(path, Ext) + "_" + j.suffix() + Ext
		j.logger.Debug("Output name taken, using suffix", "path", path)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec
	}
	if err != nil {
		return File{}, fmt.Errorf("unable to create output file: %w", err)
	}

	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return File{}, fmt.Errorf("unable to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return File{}, fmt.Errorf("unable to close output file: %w", err)
	}

	return File{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      int64(len(audio)),
		CreatedAt: j.now(),
	}, nil
}

// Sweep removes every managed file last modified before now-retention and
// returns how many were removed. Failures on individual files are logged and
// skipped.
func (j *Janitor) Sweep(retention time.Duration) int {
	cutoff := j.now().Add(-retention)

	matches, err := filepath.Glob(filepath.Join(j.dir, "*"+Ext))
	if err != nil {
		j.logger.Debug("Sweep glob failed", "dir", j.dir, "err", err)
		return 0
	}

	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			j.logger.Debug("Sweep skipped file", "path", path, "err", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			j.logger.Debug("Sweep could not remove file", "path", path, "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.Info("Swept old audio files", "dir", j.dir, "removed", removed)
	}
	return removed
}

// SweepDays is Sweep with a retention window expressed in days.
func (j *Janitor) SweepDays(days int) int {
	return j.Sweep(time.Duration(days) * 24 * time.Hour)
}

// List returns the managed files, newest first. A missing directory is not
// an error.
func (j *Janitor) List() ([]File, error) {
	entries, err := os.ReadDir(j.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read working directory: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Path:      filepath.Join(j.dir, e.Name()),
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(a, b int) bool {
		if files[a].CreatedAt.Equal(files[b].CreatedAt) {
			return files[a].Name > files[b].Name
		}
		return files[a].CreatedAt.After(files[b].CreatedAt)
	})
	return files, nil
}

// Open maps a bare file name to its path in the working directory. Only plain
// *.mp3 names of existing regular files are accepted.
func (j *Janitor) Open(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") || filepath.Ext(name) != Ext {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(j.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("unable to open audio file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
