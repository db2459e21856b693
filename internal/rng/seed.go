package rng

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"
)

// CryptoSeed returns a seed from crypto/rand, used when a run has no
// configured seed. Falls back to the wall clock if the OS source fails.
func CryptoSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Warn("crypto seed unavailable, using clock", "error", err)
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// splitMix expands a 64-bit seed into well-mixed words for the PCG state.
type splitMix struct {
	x uint64
}

func splitMix64(seed uint64) *splitMix {
	return &splitMix{x: seed}
}

func (s *splitMix) next() uint64 {
	s.x += 0x9e3779b97f4a7c15
	z := s.x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
