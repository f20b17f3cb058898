package trips

import (
	"math/rand/v2"

	"github.com/MichaelTJones/pcg"
)

// Sampler yields draws from the standard normal distribution.
// *rand.Rand satisfies it.
type Sampler interface {
	NormFloat64() float64
}

// pcgSource adapts a PCG32 stream to math/rand/v2.
type pcgSource struct {
	p *pcg.PCG32
}

func (s pcgSource) Uint64() uint64 {
	return uint64(s.p.Random())<<32 | uint64(s.p.Random())
}

// NewRand returns a generator over a PCG32 stream seeded with seed.
// Equal seeds give equal draw sequences.
func NewRand(seed uint64) *rand.Rand {
	p := pcg.NewPCG32()
	p.Seed(seed, 0xda3e39cb94b95bdb)
	return rand.New(pcgSource{p: p})
}
