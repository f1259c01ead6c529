package random

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source is the single injectable random source threaded through every
// probabilistic operation (combat rolls, enhancement rolls, loot rolls).
type Source interface {
	Float64() float64 // [0, 1)
}

// crypto random : default generation method
type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// Default returns the crypto-backed source used when callers pass nil.
func Default() Source { return cryptoSource{} }

// OrDefault returns src, or the default source when src is nil.
func OrDefault(src Source) Source {
	if src == nil {
		return Default()
	}
	return src
}

// Replicable source (battle replays, Monte Carlo trials, tests).
type seeded struct{ r *rand.Rand }

// NewSeeded returns a deterministic PCG-backed source.
func NewSeeded(seed uint64) Source {
	return &seeded{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seeded) Float64() float64 { return s.r.Float64() }

// IntN returns a uniform integer in [0, n). n <= 0 returns 0.
func IntN(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(OrDefault(src).Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
