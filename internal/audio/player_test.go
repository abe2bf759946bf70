//go:build !nocgo
// +build !nocgo

package audio

import (
	"context"
	"testing"
)

func TestPlayRejectsGarbage(t *testing.T) {
	// Decoding fails before any audio device is touched.
	if err := Play(context.Background(), []byte("definitely not an mp3 stream")); err == nil {
		t.Error("expected decode error")
	}
}
