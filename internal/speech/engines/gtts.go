package engines

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voxdrop/voxdrop/internal/speech"
	"golang.org/x/time/rate"
)

const (
	gttsRPC       = "jQ1olc"
	gttsUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// audioPattern extracts the base64 payload from a batchexecute response line.
var audioPattern = regexp.MustCompile(`jQ1olc","\[\\"(.*?)\\"]`)

// TranslateEndpoint returns the batchexecute URL served under the given
// Google Translate top-level domain.
func TranslateEndpoint(tld string) string {
	return "https://translate.google." + tld + "/_/TranslateWebserverUi/data/batchexecute"
}

// GTTSEngine synthesizes speech with the Google Translate web endpoint, the
// same service the gTTS Python package uses. No API key is required.
type GTTSEngine struct {
	client   *http.Client
	endpoint func(tld string) string
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *log.Logger
}

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Timeout per chunk request (defaults to 30s).
	Timeout time.Duration

	// RequestsPerMinute throttles chunk requests so long texts do not get
	// the client blocked (defaults to 120, burst 10).
	RequestsPerMinute int

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	// Endpoint maps an accent TLD to a URL (defaults to TranslateEndpoint).
	Endpoint func(tld string) string

	Logger *log.Logger
}

// NewGTTSEngine creates a new gTTS engine.
func NewGTTSEngine(config GTTSConfig) *GTTSEngine {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 120
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Endpoint == nil {
		config.Endpoint = TranslateEndpoint
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	return &GTTSEngine{
		client:   config.HTTPClient,
		endpoint: config.Endpoint,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 10),
		timeout:  config.Timeout,
		logger:   config.Logger,
	}
}

// Name returns the engine name.
func (e *GTTSEngine) Name() string {
	return string(speech.EngineGTTS)
}

// Synthesize converts text to MP3. Long texts are split into chunks that are
// requested one after the other; the MP3 streams are concatenated.
func (e *GTTSEngine) Synthesize(ctx context.Context, req speech.Request) ([]byte, error) {
	chunks := splitText(req.Text, maxChunkChars)
	if len(chunks) == 0 {
		return nil, errors.New("no speakable text")
	}

	e.logger.Debug("gTTS: synthesizing", "chunks", len(chunks), "lang", req.Language, "tld", req.Accent, "slow", req.Slow)

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}
		data, err := e.fetch(ctx, chunk, req)
		if err != nil {
			if len(chunks) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(data)
	}

	return audio.Bytes(), nil
}

func (e *GTTSEngine) fetch(ctx context.Context, text string, req speech.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, err := packageRPC(text, req.Language, req.Slow)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint(req.Accent), strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	httpReq.Header.Set("Referer", "http://translate.google.com/")
	httpReq.Header.Set("User-Agent", gttsUserAgent)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%d (%s) from TTS API", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return decodeAudio(resp.Body)
}

// packageRPC builds the form body for one batchexecute call. A slow request
// sends true in the speed slot, a normal one sends null.
func packageRPC(text, lang string, slow bool) (string, error) {
	var speed any
	if slow {
		speed = true
	}

	param, err := json.Marshal([]any{text, lang, speed, "null"})
	if err != nil {
		return "", fmt.Errorf("unable to encode parameters: %w", err)
	}
	rpc, err := json.Marshal([][][]any{{{gttsRPC, string(param), nil, "generic"}}})
	if err != nil {
		return "", fmt.Errorf("unable to encode rpc: %w", err)
	}

	return url.Values{"f.req": {string(rpc)}}.Encode() + "&", nil
}

// decodeAudio collects the audio payload from the response lines.
func decodeAudio(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var audio []byte
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, gttsRPC) {
			continue
		}
		m := audioPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid audio payload: %w", err)
		}
		audio = append(audio, data...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("no audio stream in response, unable to find jQ1olc rpc")
	}
	return audio, nil
}

var _ speech.Synthesizer = (*GTTSEngine)(nil)
