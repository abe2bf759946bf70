// Package studio ties the pieces together: it validates a request, names the
// output file, delegates synthesis and hands the stored audio back to a front
// end.
package studio

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voxdrop/voxdrop/internal/cache"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/speech"
	"github.com/voxdrop/voxdrop/internal/stub"
)

// Result is the outcome of a successful synthesis.
type Result struct {
	File   janitor.File
	Audio  []byte
	Engine string
	Cached bool
}

// Studio renders requests to MP3 files in the janitor's directory.
type Studio struct {
	engine    speech.Synthesizer
	janitor   *janitor.Janitor
	cache     *cache.DiskCache
	catalog   *speech.Catalog
	retention time.Duration
	logger    *log.Logger
}

// Option configures a Studio.
type Option func(*Studio)

// WithCache enables the audio cache.
func WithCache(c *cache.DiskCache) Option {
	return func(s *Studio) { s.cache = c }
}

// WithRetention sets how long output files are kept (default 7 days).
func WithRetention(d time.Duration) Option {
	return func(s *Studio) { s.retention = d }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Studio) { s.logger = l }
}

// New creates a Studio.
func New(engine speech.Synthesizer, j *janitor.Janitor, opts ...Option) *Studio {
	s := &Studio{
		engine:    engine,
		janitor:   j,
		catalog:   speech.DefaultCatalog(),
		retention: janitor.DefaultRetentionDays * 24 * time.Hour,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the option tables.
func (s *Studio) Catalog() *speech.Catalog {
	return s.catalog
}

// Janitor returns the working directory manager.
func (s *Studio) Janitor() *janitor.Janitor {
	return s.janitor
}

// Engine returns the synthesizer name.
func (s *Studio) Engine() string {
	return s.engine.Name()
}

// Startup sweeps stale output files and cache entries. It is run once per
// process.
func (s *Studio) Startup() int {
	removed := s.janitor.Sweep(s.retention)
	if s.cache != nil {
		if n := s.cache.RemoveExpired(); n > 0 {
			s.logger.Debug("Expired cached audio", "removed", n)
		}
	}
	return removed
}

// Render validates req, synthesizes it and stores the audio as a new output
// file. Validation failures and synthesis failures are returned as
// *speech.Error.
func (s *Studio) Render(ctx context.Context, req speech.Request) (*Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(s.catalog); err != nil {
		return nil, err
	}
	req.Text = strings.TrimSpace(req.Text)

	audio, cached, err := s.synthesize(ctx, req)
	if err != nil {
		s.logger.Error("Synthesis failed", "engine", s.engine.Name(), "err", err)
		return nil, speech.NewError(speech.ErrorCodeSynthesisFailure, "Error generating audio", err)
	}

	file, err := s.janitor.Save(stub.Sanitize(req.Text), audio)
	if err != nil {
		return nil, fmt.Errorf("unable to store audio: %w", err)
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read audio back: %w", err)
	}

	s.logger.Info("Rendered audio",
		"file", file.Name,
		"lang", req.Language,
		"tld", req.Accent,
		"slow", req.Slow,
		"bytes", len(data),
		"cached", cached)

	return &Result{File: file, Audio: data, Engine: s.engine.Name(), Cached: cached}, nil
}

func (s *Studio) synthesize(ctx context.Context, req speech.Request) ([]byte, bool, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(req, s.engine.Name())
		if audio, ok := s.cache.Get(key); ok {
			return audio, true, nil
		}
	}

	audio, err := s.engine.Synthesize(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if len(audio) == 0 {
		return nil, false, fmt.Errorf("%s returned no audio", s.engine.Name())
	}

	if s.cache != nil {
		// Cache errors are non-fatal.
		if err := s.cache.Put(key, audio); err != nil {
			s.logger.Debug("Could not cache audio", "err", err)
		}
	}
	return audio, false, nil
}
