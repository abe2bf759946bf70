package engines

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/voxdrop/voxdrop/internal/speech"
)

// silentFrameHeader is an MPEG-1 Layer III frame header (128 kbit/s,
// 44.1 kHz, no padding); frames are frameSize bytes long.
var silentFrameHeader = []byte{0xFF, 0xFB, 0x90, 0x64}

const frameSize = 417

// MockEngine produces deterministic silent MP3 data without network access.
type MockEngine struct {
	// Delay simulates network latency.
	Delay time.Duration

	// Err, when set, is returned by every call.
	Err error

	mu       sync.Mutex
	calls    int
	requests []speech.Request
}

// NewMockEngine creates a mock engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Name returns the engine name.
func (m *MockEngine) Name() string {
	return string(speech.EngineMock)
}

// Synthesize returns one silent frame per ten characters, doubled when slow.
func (m *MockEngine) Synthesize(ctx context.Context, req speech.Request) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	frames := utf8.RuneCountInString(req.Text)/10 + 1
	if req.Slow {
		frames *= 2
	}

	out := make([]byte, 0, frames*frameSize)
	for i := 0; i < frames; i++ {
		frame := make([]byte, frameSize)
		copy(frame, silentFrameHeader)
		out = append(out, frame...)
	}
	return out, nil
}

// Calls returns how many times Synthesize was called.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request.
func (m *MockEngine) LastRequest() (speech.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return speech.Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

var _ speech.Synthesizer = (*MockEngine)(nil)
