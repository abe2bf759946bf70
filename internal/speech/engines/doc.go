// Package engines provides Synthesizer implementations: a native client for
// the Google Translate speech endpoint, a wrapper around the gtts-cli
// program, and a mock for tests and offline use.
package engines
