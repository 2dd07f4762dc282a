// Package random provides cryptographic seed generation helpers.
//
// It uses crypto/rand to generate high-entropy seeds suitable for
// initializing pseudo-random number generators, plus a uniform draw
// helper for selection among a bounded set.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Intn returns a uniformly distributed value in [0, n) seeded from
// crypto/rand. n must be greater than zero.
func Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("intn bound must be greater than zero, got %d", n)
	}
	seed, err := NewSeed()
	if err != nil {
		return 0, err
	}
	rng := mrand.New(mrand.NewPCG(uint64(seed), uint64(seed)>>1))
	return rng.IntN(n), nil
}
