// Package entropy provides the random sources used by map generation and
// recruitment. Simulation code draws from seeded sources so that a tick
// replayed after store contention makes the same choices.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	mrand "math/rand/v2"
)

// Source yields uniform random numbers.
type Source interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n)
}

// Seeded returns a deterministic source derived from a world seed and any
// number of discriminators (tick, settlement id, ...).
func Seeded(seed int64, parts ...uint64) Source {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	return mrand.New(mrand.NewPCG(uint64(seed), h.Sum64()))
}

// Crypto returns a source backed by crypto/rand, for callers that need no
// reproducibility (fresh world seeds).
func Crypto() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	return cryptoRandFloat()
}

func (cryptoSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(cryptoRandFloat() * float64(n))
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// NewSeed returns a fresh random world seed.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// Pick returns a uniformly chosen element of items. items must be non-empty.
func Pick[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}
