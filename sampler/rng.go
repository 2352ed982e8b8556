// RNG utilities shared by the samplers.
//
// Goals:
//   - Determinism: same seed ⇒ identical draws across platforms.
//   - A single RNG factory; no time-based sources hidden anywhere.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across goroutines.
//   - Use NewStream to create independent streams for parallel draws.
package sampler

import "math/rand"

// DefaultSeed is the fixed seed used when callers pass seed==0.
const DefaultSeed int64 = 1

// NewRNG returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ DefaultSeed; otherwise the provided seed verbatim.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(resolveSeed(seed)))
}

// NewStream returns the deterministic RNG of stream id under seed. Streams
// with different ids are decorrelated by a SplitMix64 mix, so draw i of a
// batch can use stream i regardless of which worker runs it.
func NewStream(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(resolveSeed(seed), stream)))
}

func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return DefaultSeed
	}

	return seed
}

// deriveSeed mixes a parent seed and a stream identifier into a new seed
// with the SplitMix64 finalizer (Vigna 2014).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}
