package engine

import "math/rand"

// Roller supplies the randomness a game consumes: dice rolls and uniform
// card draws. Injecting it keeps every engine operation deterministic under
// test.
type Roller interface {
	// Roll returns two independent dice values in [1,6].
	Roll() (int, int)
	// Pick returns a uniform index in [0,n).
	Pick(n int) int
}

type randRoller struct {
	rng *rand.Rand
}

// NewRoller returns a Roller backed by the given source.
func NewRoller(rng *rand.Rand) Roller {
	return &randRoller{rng: rng}
}

func (r *randRoller) Roll() (int, int) {
	return r.rng.Intn(6) + 1, r.rng.Intn(6) + 1
}

func (r *randRoller) Pick(n int) int {
	return r.rng.Intn(n)
}
