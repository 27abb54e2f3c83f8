// Package envs implements small reference environments. Walker is a
// single-agent grid walk and Arena a multi-agent grid skirmish whose
// population shrinks as agents are eliminated. Both keep their simulation in
// flat value types so a state can be copied and restored cheaply.
//
// Corridor is an emergent-style tensor world served through bridge/emer.
package envs

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

type rng uint64

func newRNG(seed int64) rng {
	if seed == 0 {
		return 1 // xorshift can't start at 0
	}
	return rng(seed)
}

func seedOr(seed *int64, fallback int64) int64 {
	if seed == nil {
		return fallback
	}
	return *seed
}

func (r *rng) next() uint64 {
	x := uint64(*r)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = rng(x)
	return x
}

// intN returns a random number in [0, n).
func (r *rng) intN(n int) int {
	return int(r.next() % uint64(n))
}
