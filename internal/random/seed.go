// Package random provides seed generation for game sessions.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Seed is NewSeed falling back to the clock when the system source fails.
func Seed() uint64 {
	seed, err := NewSeed()
	if err != nil {
		return uint64(time.Now().UnixNano())
	}
	return seed
}
