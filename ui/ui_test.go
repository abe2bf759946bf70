package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/speech"
	"github.com/voxdrop/voxdrop/internal/speech/engines"
	"github.com/voxdrop/voxdrop/internal/studio"
)

func newTestModel(t *testing.T, cfg Config) model {
	t.Helper()
	return newTestModelWithText(t, cfg, "")
}

func newTestModelWithText(t *testing.T, cfg Config, text string) model {
	t.Helper()
	quiet := log.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "temp")
	s := studio.New(engines.NewMockEngine(), janitor.New(dir, janitor.WithLogger(quiet)), studio.WithLogger(quiet))

	m := newModel(cfg, s, text)
	t.Cleanup(func() {
		if m.watcher != nil {
			_ = m.watcher.Close()
		}
	})
	return m
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, Config{})
	if m.languages.Value() != speech.DefaultLanguage || m.accents.Value() != speech.DefaultAccent {
		t.Errorf("defaults = %s/%s", m.languages.Value(), m.accents.Value())
	}
	if m.focus != focusText {
		t.Errorf("initial focus = %s", m.focus)
	}

	m = newTestModel(t, Config{Language: "fr", Accent: "co.uk", Slow: true})
	if m.languages.Value() != "fr" || m.accents.Value() != "co.uk" || !m.slow {
		t.Errorf("configured = %s/%s slow=%v", m.languages.Value(), m.accents.Value(), m.slow)
	}
}

func TestFocusCycle(t *testing.T) {
	m := newTestModel(t, Config{})

	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != focusLanguage || !m.languages.focused {
		t.Fatalf("after tab focus = %s", m.focus)
	}
	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != focusAccent || m.languages.focused || !m.accents.focused {
		t.Fatalf("after second tab focus = %s", m.focus)
	}
	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != focusText || !m.textarea.Focused() {
		t.Fatalf("after third tab focus = %s", m.focus)
	}
	m, _ = update(t, m, key(tea.KeyShiftTab))
	if m.focus != focusAccent {
		t.Fatalf("after shift+tab focus = %s", m.focus)
	}
}

func TestTypingInPickerFiltersLanguages(t *testing.T) {
	m := newTestModel(t, Config{})
	m, _ = update(t, m, key(tea.KeyTab))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("german")})

	if m.languages.Value() != "de" {
		t.Errorf("language = %q, want de", m.languages.Value())
	}
	if m.textarea.Value() != "" {
		t.Errorf("picker input leaked into the text: %q", m.textarea.Value())
	}

	m, cmd := update(t, m, key(tea.KeyEscape))
	if cmd != nil {
		t.Error("esc with a filter should clear it, not quit")
	}
	if m.languages.filter != "" || m.languages.Value() != "de" {
		t.Errorf("after esc filter=%q value=%q", m.languages.filter, m.languages.Value())
	}
}

func TestShortcuts(t *testing.T) {
	m := newTestModel(t, Config{})

	m, _ = update(t, m, key(tea.KeyCtrlT))
	if !m.slow {
		t.Error("ctrl+t should enable slow voice")
	}
	if !strings.Contains(m.View(), "[x] Slow voice") {
		t.Error("view should show the slow toggle")
	}

	m, _ = update(t, m, key(tea.KeyCtrlE))
	if m.textarea.Value() != speech.SampleText {
		t.Errorf("ctrl+e text = %q", m.textarea.Value())
	}

	m, _ = update(t, m, key(tea.KeyCtrlY))
	if m.statusMessage != "Nothing to copy yet" {
		t.Errorf("status = %q", m.statusMessage)
	}

	m, _ = update(t, m, key(tea.KeyCtrlP))
	if m.statusMessage != "Nothing to play yet" || m.playing {
		t.Errorf("status = %q playing=%v", m.statusMessage, m.playing)
	}
}

func TestConvert(t *testing.T) {
	m := newTestModel(t, Config{})
	m.textarea.SetValue("Hello there")

	req := m.request()
	next, cmd := m.convert()
	m = next.(model)
	if !m.rendering || cmd == nil {
		t.Fatal("convert should start rendering")
	}
	if !strings.Contains(m.View(), "Generating audio") {
		t.Error("view should show progress")
	}

	// A second convert while busy is ignored.
	if _, cmd := m.convert(); cmd != nil {
		t.Error("convert while rendering should be a no-op")
	}

	msg := renderCmd(context.Background(), m.studio, req)()
	if _, ok := msg.(renderedMsg); !ok {
		t.Fatalf("render returned %T", msg)
	}

	m, _ = update(t, m, msg)
	if m.rendering || m.result == nil {
		t.Fatal("result not stored")
	}
	if !strings.HasSuffix(m.result.File.Name, "_Hello_there.mp3") {
		t.Errorf("file name = %q", m.result.File.Name)
	}
	if !strings.Contains(m.View(), "Done! Here is your audio") {
		t.Error("view should show the success message")
	}
}

func TestConvertErrors(t *testing.T) {
	m := newTestModel(t, Config{})
	m.textarea.SetValue("   ")

	msg := renderCmd(context.Background(), m.studio, m.request())()
	if _, ok := msg.(renderErrMsg); !ok {
		t.Fatalf("render returned %T", msg)
	}
	m, _ = update(t, m, msg)
	if !strings.Contains(m.View(), "Write some text before converting.") {
		t.Error("view should show the validation error")
	}

	cancelled := speech.NewError(speech.ErrorCodeSynthesisFailure, "Error generating audio", context.Canceled)
	m, _ = update(t, m, renderErrMsg{cancelled})
	if m.err != nil || m.statusMessage != "Conversion cancelled" {
		t.Errorf("err=%v status=%q", m.err, m.statusMessage)
	}

	m, _ = update(t, m, statusMessageTimeoutMsg{})
	if m.statusMessage != "" {
		t.Error("status message should clear on timeout")
	}
}

func TestPrefilledTextIsNotTruncated(t *testing.T) {
	m := newTestModelWithText(t, Config{}, strings.Repeat("a", 6000))
	if n := len(m.textarea.Value()); n != 6000 {
		t.Fatalf("textarea holds %d characters", n)
	}
	if !strings.Contains(m.counterView(), "Characters: 6000/5000") {
		t.Errorf("counter = %q", m.counterView())
	}

	msg := renderCmd(context.Background(), m.studio, m.request())()
	errMsg, ok := msg.(renderErrMsg)
	if !ok {
		t.Fatalf("render returned %T", msg)
	}
	if !errors.Is(errMsg.err, speech.ErrTooLong) {
		t.Errorf("err = %v", errMsg.err)
	}
	m, _ = update(t, m, msg)
	if !strings.Contains(m.View(), "The text is too long") {
		t.Error("view should show the length error")
	}
}

func TestFilesList(t *testing.T) {
	m := newTestModel(t, Config{RetentionDays: 7})
	now := time.Now()
	m, _ = update(t, m, filesMsg{
		{Name: "20250101_120000_hola.mp3", CreatedAt: now},
		{Name: "20250101_110000_adios.mp3", CreatedAt: now.Add(-time.Hour)},
	})

	view := m.View()
	for _, want := range []string{"Recent files", "20250101_120000_hola.mp3", "removed after 7 days"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDirWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := newDirWatcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close() //nolint:errcheck

	got := make(chan tea.Msg, 1)
	go func() { got <- w.next() }()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.mp3"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-got:
		if _, ok := msg.(filesChangedMsg); !ok {
			t.Errorf("next() = %T", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event for new audio file")
	}
}
