// Package audio plays synthesized MP3 data on the default output device.
// Builds tagged nocgo get a stub that always reports audio as unavailable.
package audio
