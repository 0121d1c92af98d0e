package systems

// Hash-keyed random draws for per-agent decisions.
//
// Stochastic decisions made while iterating agents must not depend on the
// iteration order, otherwise reordering the underlying storage would change
// simulation outcomes. Instead of consuming a shared sequential stream,
// every decision site draws a value keyed by (tick seed, agent handle,
// salt), which is stable no matter when or in what order it is evaluated.

// Salts identify independent decision sites within a tick. Two draws with
// different salts are uncorrelated even for the same agent and tick.
const (
	SaltTransition uint32 = iota + 1
	SaltDuration
	SaltHeading
	SaltZoomieContagion
	SaltYawnContagion
	SaltYawnSeed
	SaltPlay
	SaltChaseCat
	SaltNapJoin
	SaltFleeChase
	SaltCursorChase
	SaltStartleDirX
	SaltStartleDuration
	SaltPerch
	SaltLaser
	SaltPounce
	SaltGift
)

// splitmix64 is the standard 64-bit finalizer used for keyed draws.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// TickSeed derives the per-tick seed from the world seed and tick number.
func TickSeed(worldSeed uint64, tick int64) uint64 {
	return splitmix64(worldSeed ^ splitmix64(uint64(tick)))
}

// Draw returns a value in [0, 1) keyed by (seed, handle, salt).
func Draw(seed uint64, handle uint32, salt uint32) float32 {
	h := splitmix64(seed ^ (uint64(handle)<<32 | uint64(salt)))
	return float32(h>>40) * (1.0 / (1 << 24))
}

// Chance reports whether the draw keyed by (seed, handle, salt) lands
// under probability p.
func Chance(seed uint64, handle, salt uint32, p float32) bool {
	return Draw(seed, handle, salt) < p
}

// DrawRange returns a value in [lo, hi) keyed by (seed, handle, salt).
func DrawRange(seed uint64, handle, salt uint32, lo, hi float32) float32 {
	return lo + Draw(seed, handle, salt)*(hi-lo)
}

// PairDraw returns a value in [0, 1) keyed by an ordered pair of handles.
// Draws for distinct (a, b) pairs are uncorrelated, so an agent exposed to
// several sources in the same tick gets an independent draw per source.
func PairDraw(seed uint64, a, b uint32, salt uint32) float32 {
	h := splitmix64(seed ^ (uint64(a)<<32 | uint64(b)))
	h = splitmix64(h ^ uint64(salt))
	return float32(h>>40) * (1.0 / (1 << 24))
}

// PairChance reports whether the pair draw lands under probability p.
func PairChance(seed uint64, a, b uint32, salt uint32, p float32) bool {
	return PairDraw(seed, a, b, salt) < p
}
