// Package cache provides a persistent disk cache for synthesized audio, so
// that repeating a request does not hit the network again. Entries are zstd
// compressed when that helps and expire after a TTL.
package cache
