// Package utils holds small helpers shared across services.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Ptr returns a pointer to the given value. Useful for building partial
// update structs.
func Ptr[T any](v T) *T {
	return &v
}

// NewID generates a timestamp-based token: base-36 unix milliseconds plus a
// random hex suffix. Sorts roughly by creation time.
func NewID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(buf)
}
