package binomial

import (
	"math"

	"github.com/plinko-pir/ipir/internal/obliv"
)

// logSpaceInverseCDF computes an oblivious inverse CDF of Binomial(n, p)
// at point u, iterating exactly maxIter+1 times regardless of n.
//
// Callers (ExactSampler with its global MaxCount, LeveledSampler with
// its per-level bound, GaussianSampler/PrecomputedSampler with their
// fallback bound) pass the raw count; the clamp of n to maxIter happens
// here, so every call site gets the same fixed-iteration-count
// guarantee.
//
// This is the single shared implementation of the recurrence every
// sampler's fallback path needs, factored out of what would otherwise
// be four near-identical copies. p must already be in (0, 0.5]; the
// symmetry transform (p > 0.5 -> sample 1-p and subtract from count) is
// the caller's responsibility, since the caller also owns the
// use_complement bookkeeping around count==0.
func logSpaceInverseCDF(n, maxIter uint64, p, u float64) uint64 {
	n = obliv.CtMinU64(n, maxIter)

	q := 1.0 - p
	logQ := math.Log(q)
	logP := math.Log(p)
	logPOverQ := logP - logQ

	logPMF := float64(n) * logQ
	cdf := 0.0
	var result uint64
	var found uint64

	for k := uint64(0); k <= maxIter; k++ {
		kInRange := obliv.CtLeU64(k, n)

		var logFactor float64
		if k != 0 {
			nMinusKPlus1 := float64(obliv.CtSaturatingSubU64(n, k-1))
			logFactor = math.Log(nMinusKPlus1/float64(k)) + logPOverQ
		}

		newLogPMF := logPMF
		if k != 0 {
			newLogPMF = logPMF + logFactor
		}
		logPMF = obliv.CtSelectF64(kInRange, newLogPMF, logPMF)

		pmf := math.Exp(logPMF)
		validPMF := obliv.CtSelectF64(kInRange, pmf, 0.0)
		cdf += validPMF

		uLeCDF := obliv.CtF64Le(u, cdf)
		isNewResult := uLeCDF & (1 - found) & kInRange
		result = obliv.CtSelectU64(isNewResult, k, result)
		found |= isNewResult
	}

	return obliv.CtSelectU64(found, result, n)
}

// applySymmetry centers p at or below 0.5 and reports whether the
// complement transform was applied, so callers can invert the final
// count. Matches every sampler's "use symmetry to keep p <= 0.5" step.
func applySymmetry(p float64) (adjusted float64, complemented bool) {
	if p > 0.5 {
		return 1.0 - p, true
	}
	return p, false
}
