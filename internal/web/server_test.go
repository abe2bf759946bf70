package web

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/voxdrop/voxdrop/internal/janitor"
	"github.com/voxdrop/voxdrop/internal/speech/engines"
	"github.com/voxdrop/voxdrop/internal/studio"
)

func newTestServer(t *testing.T, engine *engines.MockEngine) (*httptest.Server, string) {
	t.Helper()
	quiet := log.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "temp")
	s := studio.New(engine, janitor.New(dir, janitor.WithLogger(quiet)), studio.WithLogger(quiet))
	srv := httptest.NewServer(New(s, Config{
		RetentionDays: 7,
		Defaults:      Defaults{Language: "es", Accent: "com"},
		Logger:        quiet,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, u string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(u) //nolint:noctx
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func post(t *testing.T, u string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := http.PostForm(u, form) //nolint:noctx
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t, engines.NewMockEngine())

	resp, body := get(t, srv.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{`<option value="es" selected>`, `value="co.za"`, "Convert to MP3", "Engine: mock"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Count(body, `value="com" selected`) != 1 {
		t.Error("exactly one accent option should be selected")
	}
	if strings.Contains(body, "maxlength") {
		t.Error("textarea must not limit length client-side")
	}
}

func TestConvertAndDownload(t *testing.T) {
	mock := engines.NewMockEngine()
	srv, dir := newTestServer(t, mock)

	resp, body := post(t, srv.URL+"/", url.Values{
		"text": {"Hello, World! 123"},
		"lang": {"en"},
		"tld":  {"co.uk"},
		"slow": {"on"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Done! Here is your audio") {
		t.Error("missing success message")
	}

	last, _ := mock.LastRequest()
	if last.Language != "en" || last.Accent != "co.uk" || !last.Slow {
		t.Errorf("engine request = %+v", last)
	}

	m := regexp.MustCompile(`href="/download/([^"]+)"`).FindStringSubmatch(body)
	if m == nil {
		t.Fatal("no download link in page")
	}
	name, _ := url.PathUnescape(m[1])
	if !strings.HasSuffix(name, "_Hello_World_123.mp3") {
		t.Errorf("file name = %q", name)
	}
	if _, err := janitor.New(dir).Open(name); err != nil {
		t.Errorf("file not in working dir: %v", err)
	}

	resp, data := get(t, srv.URL+"/download/"+m[1])
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if len(data) == 0 {
		t.Error("empty download")
	}

	resp, _ = get(t, srv.URL+"/audio/"+m[1])
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Disposition") != "" {
		t.Errorf("inline audio: status %d, disposition %q", resp.StatusCode, resp.Header.Get("Content-Disposition"))
	}
}

func TestConvertCountsCRLFAsOneCharacter(t *testing.T) {
	mock := engines.NewMockEngine()
	srv, _ := newTestServer(t, mock)

	// 5000 characters once line breaks are counted as one.
	text := strings.Repeat(strings.Repeat("a", 499)+"\r\n", 9) + strings.Repeat("a", 500)
	resp, body := post(t, srv.URL+"/", url.Values{"text": {text}, "lang": {"en"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Done! Here is your audio") {
		t.Error("missing success message")
	}
	last, _ := mock.LastRequest()
	if strings.Contains(last.Text, "\r") {
		t.Error("engine received CRLF line breaks")
	}
	if !strings.Contains(body, "<span id=\"count\">5000</span>") {
		t.Error("counter should show 5000 characters")
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name   string
		engine *engines.MockEngine
		form   url.Values
		status int
		want   string
	}{
		{
			name:   "empty",
			engine: engines.NewMockEngine(),
			form:   url.Values{"text": {"   "}},
			status: http.StatusUnprocessableEntity,
			want:   "Write some text before converting.",
		},
		{
			name:   "too long",
			engine: engines.NewMockEngine(),
			form:   url.Values{"text": {strings.Repeat("a", 5001)}},
			status: http.StatusUnprocessableEntity,
			want:   "The text is too long",
		},
		{
			name:   "bad language",
			engine: engines.NewMockEngine(),
			form:   url.Values{"text": {"hi"}, "lang": {"xx"}},
			status: http.StatusUnprocessableEntity,
			want:   "Unsupported language",
		},
		{
			name:   "synthesis failure passes message through",
			engine: &engines.MockEngine{Err: errors.New("429 (Too Many Requests) from TTS API")},
			form:   url.Values{"text": {"hola"}},
			status: http.StatusBadGateway,
			want:   "Error generating audio: 429 (Too Many Requests) from TTS API",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.engine)
			resp, body := post(t, srv.URL+"/", tt.form)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
			if strings.Contains(body, "Done! Here is your audio") {
				t.Error("unexpected success message")
			}
		})
	}
}

func TestSampleText(t *testing.T) {
	mock := engines.NewMockEngine()
	srv, _ := newTestServer(t, mock)

	resp, body := post(t, srv.URL+"/", url.Values{"sample": {"1"}, "lang": {"pt"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Hola, este es un ejemplo") {
		t.Error("sample text not filled in")
	}
	if !strings.Contains(body, `<option value="pt" selected>`) {
		t.Error("language selection not kept")
	}
	if mock.Calls() != 0 {
		t.Error("sample button must not synthesize")
	}
}

func TestDownloadRejectsBadNames(t *testing.T) {
	srv, _ := newTestServer(t, engines.NewMockEngine())

	for name, status := range map[string]int{
		".hidden.mp3": http.StatusBadRequest,
		"notes.txt":   http.StatusBadRequest,
		"missing.mp3": http.StatusNotFound,
	} {
		resp, _ := get(t, srv.URL+"/download/"+name)
		if resp.StatusCode != status {
			t.Errorf("%s: status = %d, want %d", name, resp.StatusCode, status)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, engines.NewMockEngine())
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}
