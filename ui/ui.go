// Package ui provides the terminal front end for voxdrop.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"github.com/voxdrop/voxdrop/internal/audio"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/speech"
	"github.com/voxdrop/voxdrop/internal/studio"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied path"
	ellipsis             = "…"
	maxRecentFiles       = 5
)

// NewProgram returns a new Tea program. text pre-fills the input.
func NewProgram(cfg Config, s *studio.Studio, text string) *tea.Program {
	log.Debug("Starting voxdrop TUI", "engine", s.Engine(), "dir", s.Janitor().Dir())

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, s, text), opts...)
}

// focus is the form element receiving key presses.
type focus int

const (
	focusText focus = iota
	focusLanguage
	focusAccent
	focusCount
)

func (f focus) String() string {
	return map[focus]string{
		focusText:     "text",
		focusLanguage: "language",
		focusAccent:   "accent",
	}[f]
}

type model struct {
	cfg    Config
	studio *studio.Studio

	width  int
	height int
	intro  string

	focus     focus
	textarea  textarea.Model
	languages picker
	accents   picker
	slow      bool

	spinner   spinner.Model
	rendering bool
	cancel    context.CancelFunc

	playing      bool
	stopPlayback context.CancelFunc

	result        *studio.Result
	err           error
	statusMessage string

	files   []janitor.File
	watcher *dirWatcher
}

func newModel(cfg Config, s *studio.Studio, text string) model {
	catalog := s.Catalog()

	var langs []pickerItem
	for _, l := range catalog.Languages() {
		langs = append(langs, pickerItem{Value: l.Code, Label: l.Native + " (" + l.Label + ")"})
	}
	var accents []pickerItem
	for _, a := range catalog.Accents() {
		accents = append(accents, pickerItem{Value: a.TLD, Label: a.Label})
	}

	defaults := speech.Request{Language: cfg.Language, Accent: cfg.Accent}.WithDefaults()

	ta := textarea.New()
	ta.Placeholder = speech.SampleText
	ta.CharLimit = 0 // over-long text is reported on convert, not cut
	ta.ShowLineNumbers = false
	ta.SetHeight(8)
	ta.SetValue(text)
	ta.Focus()

	m := model{
		cfg:       cfg,
		studio:    s,
		textarea:  ta,
		languages: newPicker("Audio language", langs, defaults.Language),
		accents:   newPicker("Accent", accents, defaults.Accent),
		slow:      cfg.Slow,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(fuchsia))),
	}

	w, err := newDirWatcher(s.Janitor().Dir())
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
	} else {
		m.watcher = w
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, listFilesCmd(m.studio.Janitor())}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.next)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textarea.SetWidth(max(20, m.width-sidebarWidth-6))

		width := m.width
		if m.cfg.GlamourMaxWidth > 0 {
			width = min(width, int(m.cfg.GlamourMaxWidth)) //nolint:gosec
		}
		intro, err := renderIntro(m.cfg.GlamourStyle, width)
		if err != nil {
			log.Error("unable to render intro", "error", err)
		}
		m.intro = intro
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.rendering {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case renderedMsg:
		m.finishRender()
		m.result = msg.res
		log.Info("audio ready", "file", msg.res.File.Path, "cached", msg.res.Cached)
		return m, listFilesCmd(m.studio.Janitor())

	case renderErrMsg:
		m.finishRender()
		if errors.Is(msg.err, context.Canceled) {
			cmd := m.showStatusMessage("Conversion cancelled")
			return m, cmd
		}
		m.err = msg.err
		log.Error("conversion failed", "error", msg.err)
		return m, nil

	case playbackDoneMsg:
		m.playing = false
		if m.stopPlayback != nil {
			m.stopPlayback()
			m.stopPlayback = nil
		}
		switch {
		case msg.err == nil, errors.Is(msg.err, context.Canceled):
			return m, nil
		case errors.Is(msg.err, audio.ErrUnavailable):
			cmd := m.showStatusMessage("Playback is not available in this build")
			return m, cmd
		default:
			log.Error("playback failed", "error", msg.err)
			cmd := m.showStatusMessage("Playback failed: " + msg.err.Error())
			return m, cmd
		}

	case filesMsg:
		m.files = msg
		return m, nil

	case filesChangedMsg:
		return m, tea.Batch(listFilesCmd(m.studio.Janitor()), m.watcher.next)

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		return m, nil
	}

	if m.focus == focusText {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		switch {
		case m.rendering:
			m.cancel()
			return m, nil
		case m.focus == focusLanguage && m.languages.filter != "":
			m.languages = m.languages.clearFilter()
			return m, nil
		case m.focus == focusAccent && m.accents.filter != "":
			m.accents = m.accents.clearFilter()
			return m, nil
		}
		return m.quit()

	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)

	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)

	case "ctrl+s":
		return m.convert()

	case "ctrl+t":
		m.slow = !m.slow
		return m, nil

	case "ctrl+e":
		m.textarea.SetValue(speech.SampleText)
		return m, nil

	case "ctrl+p":
		return m.togglePlayback()

	case "ctrl+y":
		if m.result == nil {
			cmd := m.showStatusMessage("Nothing to copy yet")
			return m, cmd
		}
		// Copy using OSC 52
		termenv.Copy(m.result.File.Path)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(m.result.File.Path)
		cmd := m.showStatusMessage("Copied path")
		return m, cmd
	}

	switch m.focus {
	case focusLanguage:
		m.languages = m.languages.Update(msg)
		return m, nil
	case focusAccent:
		m.accents = m.accents.Update(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m model) setFocus(f focus) (tea.Model, tea.Cmd) {
	log.Debug("focus changed", "element", f)
	m.focus = f
	m.languages.focused = f == focusLanguage
	m.accents.focused = f == focusAccent
	if f == focusText {
		cmd := m.textarea.Focus()
		return m, cmd
	}
	m.textarea.Blur()
	return m, nil
}

func (m model) request() speech.Request {
	return speech.Request{
		Text:     m.textarea.Value(),
		Language: m.languages.Value(),
		Accent:   m.accents.Value(),
		Slow:     m.slow,
	}
}

func (m model) convert() (tea.Model, tea.Cmd) {
	if m.rendering {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.rendering = true
	m.cancel = cancel
	m.err = nil
	m.result = nil

	req := m.request()
	log.Debug("converting", "language", req.Language, "accent", req.Accent, "slow", req.Slow)
	return m, tea.Batch(m.spinner.Tick, renderCmd(ctx, m.studio, req))
}

func (m *model) finishRender() {
	m.rendering = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m model) togglePlayback() (tea.Model, tea.Cmd) {
	if m.playing {
		m.stopPlayback()
		return m, nil
	}
	if m.result == nil {
		cmd := m.showStatusMessage("Nothing to play yet")
		return m, cmd
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.playing = true
	m.stopPlayback = cancel
	return m, playCmd(ctx, m.result.Audio)
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	if m.stopPlayback != nil {
		m.stopPlayback()
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return m, tea.Quit
}

func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	return statusTimeoutCmd()
}

func (m model) View() string {
	sidebar := lipgloss.JoinVertical(lipgloss.Left,
		m.languages.View(),
		"",
		m.accents.View(),
		"",
		m.slowView(),
		captionStyle("Engine: "+m.studio.Engine()),
	)

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.textHeader(),
		m.textarea.View(),
		m.counterView(),
		"",
		m.statusView(),
		m.filesView(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(sidebar), mainStyle.Render(main))

	var b strings.Builder
	if m.intro != "" {
		b.WriteString(m.intro)
		b.WriteString("\n\n")
	}
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m model) textHeader() string {
	if m.focus == focusText {
		return focusedTitleStyle("Enter your text")
	}
	return titleStyle("Enter your text")
}

func (m model) slowView() string {
	box := "[ ]"
	if m.slow {
		box = "[x]"
	}
	return box + " Slow voice"
}

func (m model) counterView() string {
	n := utf8.RuneCountInString(m.textarea.Value())
	s := fmt.Sprintf("Characters: %d/%d", n, speech.MaxTextLength)
	if n > speech.MaxTextLength {
		return errorStyle(s)
	}
	return captionStyle(s)
}

func (m model) statusView() string {
	width := max(20, m.width-sidebarWidth-6)

	var lines []string
	switch {
	case m.rendering:
		lines = append(lines, m.spinner.View()+" Generating audio...")
	case m.err != nil:
		lines = append(lines, errorStyle(speech.UserMessage(m.err)))
	case m.result != nil:
		done := "Done! Here is your audio"
		if m.result.Cached {
			done += " (from cache)"
		}
		lines = append(lines,
			successStyle(done),
			truncate.StringWithTail(m.result.File.Path, uint(width), ellipsis), //nolint:gosec
			captionStyle(humanize.Bytes(uint64(len(m.result.Audio)))+" · ctrl+p play · ctrl+y copy path"),
		)
	}
	if m.statusMessage != "" {
		lines = append(lines, statusMessageStyle(m.statusMessage))
	}
	return strings.Join(lines, "\n")
}

func (m model) filesView() string {
	if len(m.files) == 0 {
		return ""
	}
	width := max(20, m.width-sidebarWidth-6) - 16

	lines := []string{"", titleStyle("Recent files")}
	for i, f := range m.files {
		if i == maxRecentFiles {
			break
		}
		name := truncate.StringWithTail(f.Name, uint(max(10, width)), ellipsis) //nolint:gosec
		lines = append(lines, name+"  "+captionStyle(humanize.Time(f.CreatedAt)))
	}
	if m.cfg.RetentionDays > 0 {
		lines = append(lines, captionStyle(fmt.Sprintf("Files are removed after %d days.", m.cfg.RetentionDays)))
	}
	return strings.Join(lines, "\n")
}

func (m model) helpView() string {
	help := []string{
		"tab focus",
		"ctrl+s convert",
		"ctrl+t slow",
		"ctrl+e sample",
		"ctrl+p play",
		"ctrl+y copy path",
	}
	if m.rendering {
		help = append(help, "esc cancel")
	} else {
		help = append(help, "esc quit")
	}
	return helpStyle(strings.Join(help, " • "))
}
