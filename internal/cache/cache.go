// Package cache keeps recent extraction results keyed by screenshot content,
// so uploading the same screenshot twice skips segmentation and OCR.
package cache

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Cache is a typed key/value store with per-entry expiry.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

// Key derives a cache key from raw screenshot bytes.
func Key(data []byte) string {
	sum := blake2b.Sum256(data)
	return "wordle:v1:" + hex.EncodeToString(sum[:])
}
