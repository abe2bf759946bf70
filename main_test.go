package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/voxdrop/voxdrop/internal/cache"
	"github.com/voxdrop/voxdrop/internal/speech"
)

func TestDefaultConfigParses(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		t.Fatal(err)
	}

	if got := v.GetString("workdir"); got != "temp" {
		t.Errorf("workdir = %q", got)
	}
	if got := v.GetInt("retention_days"); got != 7 {
		t.Errorf("retention_days = %d", got)
	}
	if got := v.GetString("engine"); got != "gtts" {
		t.Errorf("engine = %q", got)
	}
	if got := v.GetDuration("gtts.timeout"); got != 30*time.Second {
		t.Errorf("gtts.timeout = %v", got)
	}
	if got := v.GetInt("cache.max_size"); got != 100 {
		t.Errorf("cache.max_size = %d", got)
	}
	if got := v.GetString("serve.addr"); got != ":8501" {
		t.Errorf("serve.addr = %q", got)
	}
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	configFile = filepath.Join(t.TempDir(), "nested", "voxdrop.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != defaultConfig {
		t.Error("default config not written")
	}

	if err := os.WriteFile(configFile, []byte("language: en\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigFile(); err != nil {
		t.Fatal(err)
	}
	if b, _ := os.ReadFile(configFile); string(b) != "language: en\n" {
		t.Error("existing config was overwritten")
	}

	configFile = filepath.Join(t.TempDir(), "voxdrop.toml")
	if err := ensureConfigFile(); err == nil {
		t.Error("expected an error for a .toml config")
	}
}

func TestValidateOptions(t *testing.T) {
	reset := func() {
		viper.Set("workdir", "temp")
		viper.Set("retention_days", 7)
		viper.Set("language", "es")
		viper.Set("accent", "com")
		viper.Set("engine", "gtts")
		viper.Set("cache.max_size", 100)
		viper.Set("cache.compression_level", 3)
		engineName = ""
	}
	reset()
	t.Cleanup(reset)

	if err := validateOptions(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if opts.Engine != speech.EngineGTTS || opts.Language != "es" || opts.retention() != 7*24*time.Hour {
		t.Errorf("opts = %+v", opts)
	}

	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{"language", func() { viper.Set("language", "xx") }, "unsupported language"},
		{"accent", func() { viper.Set("accent", "co.jp") }, "unsupported accent"},
		{"retention", func() { viper.Set("retention_days", 0) }, "retention_days"},
		{"cache size", func() { viper.Set("cache.max_size", 0) }, "max_size"},
		{"engine", func() { engineName = "espeak" }, "engine validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset()
			tt.setup()
			err := validateOptions()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("validateOptions() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	reset()
	engineName = "cli"
	if err := validateOptions(); err != nil {
		t.Fatal(err)
	}
	if opts.Engine != speech.EngineGTTSCLI {
		t.Errorf("--engine cli = %q", opts.Engine)
	}

	reset()
	engineName = "nope"
	if err := validateOptions(); !errors.Is(err, speech.ErrInvalidEngine) {
		t.Errorf("expected ErrInvalidEngine, got %v", err)
	}
}

func TestNewStudio(t *testing.T) {
	oldOpts := opts
	t.Cleanup(func() {
		opts = oldOpts
		viper.Set("cache.enabled", true)
	})

	dir := filepath.Join(t.TempDir(), "temp")
	opts = options{Workdir: dir, RetentionDays: 7, Language: "es", Accent: "com", Engine: speech.EngineMock}
	viper.Set("cache.enabled", false)

	s, closer, err := newStudio()
	if err != nil {
		t.Fatal(err)
	}
	defer closer() //nolint:errcheck

	if s.Engine() != "mock" {
		t.Errorf("engine = %q", s.Engine())
	}
	res, err := s.Render(context.Background(), speech.Request{Text: "Hola"})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(res.File.Path) != dir {
		t.Errorf("file written to %s, want %s", res.File.Path, dir)
	}
}

func TestClearCache(t *testing.T) {
	t.Cleanup(func() {
		viper.Set("cache.dir", "")
		viper.Set("cache.max_size", 100)
		viper.Set("cache.compression_level", 3)
	})
	dir := t.TempDir()
	viper.Set("cache.dir", dir)
	viper.Set("cache.max_size", 1)
	viper.Set("cache.compression_level", 0)

	dc, err := openCache()
	if err != nil {
		t.Fatal(err)
	}
	req := speech.Request{Text: "hola", Language: "es", Accent: "com"}
	if err := dc.Put(cache.Key(req, "mock"), []byte("mp3")); err != nil {
		t.Fatal(err)
	}
	if err := dc.Close(); err != nil {
		t.Fatal(err)
	}

	if err := clearCache(); err != nil {
		t.Fatal(err)
	}

	reopened, err := cache.NewDiskCache(cache.Config{Dir: dir, Capacity: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close() //nolint:errcheck
	if n := reopened.Stats().ItemCount; n != 0 {
		t.Errorf("ItemCount = %d after clear", n)
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "note.txt")
	md := filepath.Join(dir, "note.md")
	if err := os.WriteFile(txt, []byte("# not a heading\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(md, []byte("# Title\n\nSome *text*.\n\n```\ncode()\n```\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readInput(txt, false)
	if err != nil || got != "# not a heading\n" {
		t.Errorf("plain text = %q, %v", got, err)
	}

	got, err = readInput(md, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Title") || !strings.Contains(got, "Some text.") || strings.Contains(got, "code()") {
		t.Errorf("markdown = %q", got)
	}

	got, err = readInput(txt, true)
	if err != nil || strings.Contains(got, "#") {
		t.Errorf("forced markdown = %q, %v", got, err)
	}

	if _, err := readInput(filepath.Join(dir, "missing.txt"), false); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSayText(t *testing.T) {
	t.Cleanup(func() { sayMarkdown = false })

	got, err := sayText([]string{"Hola", "mundo"})
	if err != nil || got != "Hola mundo" {
		t.Errorf("args = %q, %v", got, err)
	}

	f := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(f, []byte("from a file"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = sayText([]string{f})
	if err != nil || got != "from a file" {
		t.Errorf("file = %q, %v", got, err)
	}

	sayMarkdown = true
	got, err = sayText([]string{"**bold**", "words"})
	if err != nil || strings.TrimSpace(got) != "bold words" {
		t.Errorf("markdown args = %q, %v", got, err)
	}
}

func TestWriteOutput(t *testing.T) {
	if err := writeOutput("", []byte("x")); err != nil {
		t.Errorf("empty path should be a no-op: %v", err)
	}

	path := filepath.Join(t.TempDir(), "copy.mp3")
	if err := writeOutput(path, []byte("mp3")); err != nil {
		t.Fatal(err)
	}
	if b, _ := os.ReadFile(path); string(b) != "mp3" {
		t.Errorf("copy = %q", b)
	}
}

func TestDisplayAddr(t *testing.T) {
	for in, want := range map[string]string{
		":8501":          "localhost:8501",
		"127.0.0.1:8080": "127.0.0.1:8080",
	} {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := printCatalog(&buf, speech.DefaultCatalog()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"--lang", "--tld", "ja", "co.za", "South Africa"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog output missing %q", want)
		}
	}
}
