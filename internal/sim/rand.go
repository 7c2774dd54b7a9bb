package sim

import (
	"math/rand"
	"time"
)

// ResolveSeed returns seed, or a time-derived seed when seed is 0.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// NewRand returns the random source shared by every brain in a simulation.
// A fixed seed makes a match reproducible.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(ResolveSeed(seed)))
}
