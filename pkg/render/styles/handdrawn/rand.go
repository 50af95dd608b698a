package handdrawn

import (
	"hash/fnv"
	"math/rand/v2"
)

// rngFor returns a PCG generator seeded from the FNV-1a hash of id and the
// style seed, so each element keeps its jitter across renders.
func rngFor(id string, seed uint64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(id))
	return rand.New(rand.NewPCG(h.Sum64(), seed^0xdeadbeef))
}

// jitter returns a value in [-1, 1).
func jitter(r *rand.Rand) float64 {
	return r.Float64()*2 - 1
}
