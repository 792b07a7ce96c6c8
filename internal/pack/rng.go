package pack

import "math/rand"

// Deterministic random generation for every stochastic step (layout jitter,
// mutation, shake, annealing noise). A *rand.Rand is threaded explicitly
// through all callers; no package-global random state exists anywhere.
//
// math/rand.Rand is not goroutine-safe. Parallel restarts each derive an
// independent stream via DeriveRNG instead of sharing one generator.

// defaultSeed is the fixed seed substituted when callers pass seed==0,
// keeping the zero-value configuration reproducible.
const defaultSeed int64 = 1

// RNGFromSeed returns a deterministic *rand.Rand for the given seed.
// seed==0 maps to defaultSeed.
func RNGFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed using a SplitMix64-style finalizer, so per-restart streams stay
// decorrelated even for adjacent stream ids.
func DeriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// DeriveRNG creates an independent deterministic stream for a parallel
// restart or worker, keyed by the parent seed and a stream id.
func DeriveRNG(parent int64, stream uint64) *rand.Rand {
	if parent == 0 {
		parent = defaultSeed
	}
	return rand.New(rand.NewSource(DeriveSeed(parent, stream)))
}
