// Package web serves the browser front end: a single form that renders text
// to MP3 and offers the result for playback and download.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/voxdrop/voxdrop/internal/studio"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// maxBodyBytes bounds form posts; text is limited to 5000 characters.
const maxBodyBytes = 128 * 1024

// Config holds server settings.
type Config struct {
	Addr          string
	RetentionDays int
	Defaults      Defaults
	Logger        *log.Logger
}

// Defaults preselect the form controls.
type Defaults struct {
	Language string
	Accent   string
	Slow     bool
}

// Server is the HTTP front end.
type Server struct {
	studio *studio.Studio
	config Config
	logger *log.Logger
	router *gin.Engine
}

// New creates a Server for s.
func New(s *studio.Studio, config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8501"
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(config.Logger), limitBody(maxBodyBytes))
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.tmpl")))

	srv := &Server{
		studio: s,
		config: config,
		logger: config.Logger,
		router: router,
	}

	router.GET("/", srv.handleIndex)
	router.POST("/", srv.handleConvert)
	router.GET("/audio/:name", srv.handleAudio)
	router.GET("/download/:name", srv.handleDownload)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	return srv
}

// Handler returns the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.config.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func requestLogger(l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
