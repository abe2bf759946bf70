package engines

import (
	"fmt"

	"github.com/voxdrop/voxdrop/internal/speech"
)

// Config selects and configures an engine.
type Config struct {
	Engine speech.EngineType
	GTTS   GTTSConfig
	CLI    CLIConfig
}

// New returns the Synthesizer for config.Engine.
func New(config Config) (speech.Synthesizer, error) {
	switch config.Engine {
	case speech.EngineGTTS:
		return NewGTTSEngine(config.GTTS), nil
	case speech.EngineGTTSCLI:
		e, err := NewCLIEngine(config.CLI)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", speech.ErrEngineNotAvailable, err)
		}
		return e, nil
	case speech.EngineMock:
		return NewMockEngine(), nil
	case speech.EngineNone:
		return nil, speech.ErrNoEngineConfigured
	default:
		return nil, fmt.Errorf("%w: %s", speech.ErrInvalidEngine, config.Engine)
	}
}
