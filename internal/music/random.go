package music

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32

	// Seed used when no identity data is available. Any constant works;
	// it only has to be stable across releases so default tracks don't drift.
	defaultSeed = 140140

	seedTxWrap = 10000
)

// Rand is a deterministic linear-congruential generator. The same seed
// always produces the same draw sequence, which is what makes generated
// tracks reproducible per identity and lets tests assert exact patterns.
// It is not suitable for anything security related.
type Rand struct {
	state uint64
}

// NewRand creates a generator from an explicit seed.
func NewRand(seed uint64) *Rand {
	return &Rand{state: seed % lcgModulus}
}

// Float64 returns the next draw in [0, 1).
func (r *Rand) Float64() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.state) / float64(lcgModulus)
}

// Intn returns the next draw in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// SeedFor derives the generation seed for an identity: a rolling hash of
// the wallet address plus the social and activity counters. Transaction
// counts are wrapped so whale wallets don't collapse to the same saturated
// seed region.
func SeedFor(address string, followerCount, txCount int) uint64 {
	if address == "" && followerCount == 0 && txCount == 0 {
		return defaultSeed
	}
	if followerCount < 0 {
		followerCount = 0
	}
	if txCount < 0 {
		txCount = 0
	}
	return uint64(HashAddress(address)) + uint64(followerCount) + uint64(txCount%seedTxWrap)
}

// HashAddress maps a wallet address to a stable 32-bit value. Used for
// key selection (mod 12) and as the seed base.
func HashAddress(address string) uint32 {
	var h uint32
	for _, c := range address {
		h = h*31 + uint32(c)
	}
	return h
}
