// Package binomial implements the constant-time binomial inverse-CDF
// sampler family used by the PMNS tree router (see package pmns).
//
// Every sampler in this family answers the same question: given a fixed
// ball count n (="count"), a split probability p = num/denom, and a
// pseudorandom 64-bit word, how many balls go left? The four strategies
// below trade iteration count for applicability, but all four are
// constant-time with respect to the secret count and the secret
// prf_output — only the *public* max-iteration bound and the *public*
// (num, denom) pair may influence how long a call runs.
//
// One file per strategy (exact.go, leveled.go, gaussian.go,
// precomputed.go), one shared log-space recurrence (logcdf.go) factored
// out instead of copy-pasted into each.
package binomial

// Sampler is the common contract shared by ExactSampler, GaussianSampler,
// and PrecomputedSampler. LeveledSampler additionally requires a tree
// level and so does not satisfy this interface directly; see
// LeveledSampler.Sample.
type Sampler interface {
	// Sample draws k ~ Binomial(count, num/denom) in constant time,
	// using prfOutput as the raw 64-bit PRF word behind the inverse-CDF
	// uniform input. Always returns a value in [0, count].
	Sample(count, num, denom, prfOutput uint64) uint64
}

// uniform01 maps a raw 64-bit PRF output to u = (prf_output + 0.5) / 2^64,
// evaluated in float64. u is always > 0; outputs of at least 2^64 - 2^10
// round to exactly 1.0, so u lies in (0, 1].
func uniform01(prfOutput uint64) float64 {
	return (float64(prfOutput) + 0.5) / (float64(1<<64))
}
