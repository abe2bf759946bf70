//go:build nocgo
// +build nocgo

package audio

import "context"

// Play is unavailable in nocgo builds.
func Play(context.Context, []byte) error {
	return ErrUnavailable
}
