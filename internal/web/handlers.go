package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/speech"
)

// convertForm is the posted form. Sample asks for the example text instead
// of a conversion.
type convertForm struct {
	Text   string `form:"text"`
	Lang   string `form:"lang"`
	TLD    string `form:"tld"`
	Slow   string `form:"slow"`
	Sample string `form:"sample"`
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type resultView struct {
	Name        string
	AudioURL    string
	DownloadURL string
	Size        string
	Cached      bool
}

type fileView struct {
	Name        string
	DownloadURL string
	Size        string
	Age         string
}

type pageData struct {
	Text          string
	Count         int
	Sample        string
	MaxLen        int
	Slow          bool
	Engine        string
	Languages     []option
	Accents       []option
	Error         string
	Result        *resultView
	Files         []fileView
	RetentionDays int
}

func (s *Server) page(lang, tld string, slow bool, text string) pageData {
	catalog := s.studio.Catalog()

	var langs []option
	for _, l := range catalog.Languages() {
		langs = append(langs, option{Value: l.Code, Label: l.Native + " (" + l.Label + ")", Selected: l.Code == lang})
	}

	var accents []option
	picked := false
	for _, a := range catalog.Accents() {
		sel := !picked && a.TLD == tld
		picked = picked || sel
		accents = append(accents, option{Value: a.TLD, Label: a.Label, Selected: sel})
	}

	return pageData{
		Text:          text,
		Count:         utf8.RuneCountInString(text),
		Sample:        speech.SampleText,
		MaxLen:        speech.MaxTextLength,
		Slow:          slow,
		Engine:        s.studio.Engine(),
		Languages:     langs,
		Accents:       accents,
		Files:         s.recentFiles(),
		RetentionDays: s.config.RetentionDays,
	}
}

func (s *Server) recentFiles() []fileView {
	files, err := s.studio.Janitor().List()
	if err != nil {
		s.logger.Warn("Could not list audio files", "err", err)
		return nil
	}
	if len(files) > 10 {
		files = files[:10]
	}

	views := make([]fileView, 0, len(files))
	for _, f := range files {
		views = append(views, fileView{
			Name:        f.Name,
			DownloadURL: "/download/" + url.PathEscape(f.Name),
			Size:        humanize.Bytes(uint64(f.Size)), //nolint:gosec
			Age:         humanize.Time(f.CreatedAt),
		})
	}
	return views
}

func (s *Server) handleIndex(c *gin.Context) {
	d := s.config.Defaults
	c.HTML(http.StatusOK, "index.tmpl", s.page(d.Language, d.Accent, d.Slow, ""))
}

func (s *Server) handleConvert(c *gin.Context) {
	var form convertForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	// Browsers post textarea line breaks as CRLF.
	form.Text = strings.ReplaceAll(form.Text, "\r\n", "\n")

	req := speech.Request{
		Text:     form.Text,
		Language: form.Lang,
		Accent:   form.TLD,
		Slow:     form.Slow != "",
	}.WithDefaults()

	if form.Sample != "" {
		c.HTML(http.StatusOK, "index.tmpl", s.page(req.Language, req.Accent, req.Slow, speech.SampleText))
		return
	}

	res, err := s.studio.Render(c.Request.Context(), req)
	if err != nil {
		data := s.page(req.Language, req.Accent, req.Slow, form.Text)
		data.Error = speech.UserMessage(err)
		c.HTML(statusFor(err), "index.tmpl", data)
		return
	}

	data := s.page(req.Language, req.Accent, req.Slow, form.Text)
	data.Result = &resultView{
		Name:        res.File.Name,
		AudioURL:    "/audio/" + url.PathEscape(res.File.Name),
		DownloadURL: "/download/" + url.PathEscape(res.File.Name),
		Size:        humanize.Bytes(uint64(len(res.Audio))),
		Cached:      res.Cached,
	}
	c.HTML(http.StatusOK, "index.tmpl", data)
}

func (s *Server) handleAudio(c *gin.Context) {
	path, ok := s.lookup(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}

func (s *Server) handleDownload(c *gin.Context) {
	path, ok := s.lookup(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.FileAttachment(path, c.Param("name"))
}

func (s *Server) lookup(c *gin.Context) (string, bool) {
	path, err := s.studio.Janitor().Open(c.Param("name"))
	switch {
	case errors.Is(err, janitor.ErrInvalidName):
		c.String(http.StatusBadRequest, "invalid file name")
		return "", false
	case err != nil:
		c.String(http.StatusNotFound, "audio not found")
		return "", false
	}
	return path, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, speech.ErrEmptyInput),
		errors.Is(err, speech.ErrTooLong),
		errors.Is(err, speech.ErrUnsupportedLanguage),
		errors.Is(err, speech.ErrUnsupportedAccent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, speech.ErrSynthesisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
