// Package entropy provides the injectable randomness the behavior engine
// draws from. Production code wires a seeded source; tests wire a fixed
// sequence so task and target selection are deterministic.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
)

// Source yields uniform random numbers. All stochastic choices in the
// engine (task-type weighting, wander targets, duration windows) go
// through a Source so simulations can be replayed.
type Source interface {
	Float64() float64 // uniform in [0, 1)
	IntN(n int) int   // uniform in [0, n)
}

// seeded is the production Source, backed by math/rand/v2 PCG.
type seeded struct {
	rng *mathrand.Rand
}

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return &seeded{rng: mathrand.New(mathrand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (s *seeded) Float64() float64 { return s.rng.Float64() }
func (s *seeded) IntN(n int) int   { return s.rng.IntN(n) }

// NewCrypto returns a Source backed by crypto/rand. Used when no seed is
// supplied and replayability does not matter.
func NewCrypto() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	return cryptoFloat()
}

func (c cryptoSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(cryptoFloat() * float64(n))
}

// cryptoFloat generates a uniform float64 in [0, 1) from crypto/rand.
func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; 0.5 is a safe neutral default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Sequence is a test Source that replays a fixed list of floats,
// wrapping around when exhausted.
type Sequence struct {
	Values []float64
	next   int
}

func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}
