package audio

import "errors"

// ErrUnavailable is returned when no audio device can be used.
var ErrUnavailable = errors.New("audio playback unavailable")
