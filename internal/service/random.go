package service

import "math/rand/v2"

// RandSource hands out a fresh generator per request so concurrent assemblies never
// share state.
type RandSource func() *rand.Rand

func NewRandSource() RandSource {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// FixedRandSource returns generators that all start from the same seed.
func FixedRandSource(seed uint64) RandSource {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}
