package sim

import "math/rand"

// NewTraceRand returns the random source of one trace production run.
// Two generators built on sources with the same seed and given identical
// parameters produce identical job sequences.
//
// Thread-safety: the returned source is NOT thread-safe.
func NewTraceRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
