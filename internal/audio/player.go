//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

// oto allows a single context per process; it is created on first use with
// the sample rate of the first clip played.
var (
	contextOnce sync.Once
	otoContext  *oto.Context
	contextRate int
	contextErr  error
)

func audioContext(sampleRate int) (*oto.Context, error) {
	contextOnce.Do(func() {
		c, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2, // go-mp3 always decodes to stereo
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			contextErr = fmt.Errorf("%w: failed to create oto context: %w", ErrUnavailable, err)
			return
		}
		<-ready
		otoContext = c
		contextRate = sampleRate
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if sampleRate != contextRate {
		return nil, fmt.Errorf("clip sample rate %d Hz differs from device rate %d Hz", sampleRate, contextRate)
	}
	return otoContext, nil
}

// Play decodes mp3Data and blocks until playback finishes or ctx is done.
func Play(ctx context.Context, mp3Data []byte) error {
	dec, err := mp3.NewDecoder(bytes.NewReader(mp3Data))
	if err != nil {
		return fmt.Errorf("unable to decode mp3: %w", err)
	}

	c, err := audioContext(dec.SampleRate())
	if err != nil {
		return err
	}

	p := c.NewPlayer(dec)
	defer p.Close() //nolint:errcheck
	p.Play()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return p.Err()
}
