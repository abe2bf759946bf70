package speech

import (
	"fmt"
	"strings"
)

// EngineType names a synthesis engine.
type EngineType string

const (
	EngineNone    EngineType = ""
	EngineGTTS    EngineType = "gtts"
	EngineGTTSCLI EngineType = "gtts-cli"
	EngineMock    EngineType = "mock"
)

// ValidateEngineSelection normalizes an engine name from a flag or config
// value. The flag takes precedence over the config value.
func ValidateEngineSelection(flag, configured string) (EngineType, error) {
	name := strings.ToLower(strings.TrimSpace(flag))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(configured))
	}

	switch name {
	case "":
		return EngineNone, fmt.Errorf("%w\n\nPlease specify an engine:\n  voxdrop --engine gtts      # Google Translate (online)\n  voxdrop --engine gtts-cli  # the gtts-cli program", ErrNoEngineConfigured)
	case "gtts", "google":
		return EngineGTTS, nil
	case "gtts-cli", "cli":
		return EngineGTTSCLI, nil
	case "mock":
		return EngineMock, nil
	default:
		return EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - gtts\n  - gtts-cli\n  - mock", ErrInvalidEngine, name)
	}
}
