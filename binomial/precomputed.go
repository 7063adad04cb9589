package binomial

import (
	"sync"

	"github.com/plinko-pir/ipir/internal/obliv"
)

// PrecomputeMaxN is the largest n for which the process-wide CDF table
// is built. Binomial(n, 1/2) distributions above this size fall back to
// the log-space recurrence.
const PrecomputeMaxN = 256

// cdfTable holds T[n][k] = P(X <= k | X ~ Binomial(n, 1/2)) for
// n, k in [0, PrecomputeMaxN]. T[n][k] = 1.0 for k > n.
type cdfTable [PrecomputeMaxN + 1][PrecomputeMaxN + 1]float64

// cdfTableOnce lazily builds the ~0.5MB table on first use: thread-safe,
// happens at most once, lock-free on every read after the first.
var cdfTableOnce = sync.OnceValue(buildCDFTable)

// CDFTableRow returns a copy of row n of the precomputed CDF table
// (P(X <= k | X ~ Binomial(n, 1/2)) for k in [0, PrecomputeMaxN]),
// building the table on first call. Exposed for tests that verify the
// table's monotonicity and normalization without depending on a
// specific sampler's private fallback bound.
func CDFTableRow(n int) [PrecomputeMaxN + 1]float64 {
	return cdfTableOnce()[n]
}

func buildCDFTable() *cdfTable {
	var tables cdfTable

	for n := 0; n <= PrecomputeMaxN; n++ {
		if n == 0 {
			for k := 0; k <= PrecomputeMaxN; k++ {
				tables[0][k] = 1.0
			}
			continue
		}

		scale := pow2(-n)
		cdf := 0.0
		binomCoeff := 1.0

		for k := 0; k <= n; k++ {
			pmf := binomCoeff * scale
			cdf += pmf
			tables[n][k] = cdf

			if k < n {
				binomCoeff *= float64(n-k) / float64(k+1)
			}
		}

		for k := n + 1; k <= PrecomputeMaxN; k++ {
			tables[n][k] = 1.0
		}
	}

	return &tables
}

func pow2(exp int) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := 0; i < exp; i++ {
		result *= 2
	}
	if neg {
		return 1.0 / result
	}
	return result
}

// PrecomputedSampler draws from Binomial(n, 1/2) via a constant-time
// linear scan over the precomputed CDF table when n <= PrecomputeMaxN,
// and falls back to the exact log-space recurrence otherwise (or for
// any probability other than 1/2).
type PrecomputedSampler struct {
	fallbackMaxCount uint64
}

// NewPrecomputedSampler creates a sampler whose fallback path iterates
// fallbackMaxCount+1 times.
func NewPrecomputedSampler(fallbackMaxCount uint64) *PrecomputedSampler {
	return &PrecomputedSampler{fallbackMaxCount: fallbackMaxCount}
}

// SampleHalf draws k ~ Binomial(count, 1/2), using the precomputed table
// when count <= PrecomputeMaxN and the log-space fallback otherwise.
func (s *PrecomputedSampler) SampleHalf(count, prfOutput uint64) uint64 {
	u := uniform01(prfOutput)
	if count <= PrecomputeMaxN {
		return s.inverseCDFPrecomputed(count, u)
	}
	return logSpaceInverseCDF(count, s.fallbackMaxCount, 0.5, u)
}

// Sample draws k ~ Binomial(count, num/denom), routing through the
// precomputed table only when num/denom reduces to exactly 1/2 and
// count is within range; otherwise it uses the log-space fallback.
func (s *PrecomputedSampler) Sample(count, num, denom, prfOutput uint64) uint64 {
	if denom == 0 || num == 0 {
		return 0
	}
	if num >= denom {
		return count
	}

	if num*2 == denom && count <= PrecomputeMaxN {
		return s.SampleHalf(count, prfOutput)
	}

	p := float64(num) / float64(denom)
	u := uniform01(prfOutput)
	p, complemented := applySymmetry(p)
	k := logSpaceInverseCDF(count, s.fallbackMaxCount, p, u)
	if complemented {
		return count - k
	}
	return k
}

// inverseCDFPrecomputed obliviously scans the n-th row of the
// precomputed table, always visiting all PrecomputeMaxN+1 entries.
func (s *PrecomputedSampler) inverseCDFPrecomputed(n uint64, u float64) uint64 {
	nIdx := n
	if nIdx > PrecomputeMaxN {
		nIdx = PrecomputeMaxN
	}
	table := cdfTableOnce()

	var result uint64
	var found uint64

	for k := uint64(0); k <= PrecomputeMaxN; k++ {
		kInRange := obliv.CtLeU64(k, n)
		cdfK := table[nIdx][k]

		uLeCDF := obliv.CtF64Le(u, cdfK)
		isNewResult := uLeCDF & (1 - found) & kInRange
		result = obliv.CtSelectU64(isNewResult, k, result)
		found |= isNewResult
	}

	return obliv.CtSelectU64(found, result, n)
}

var _ Sampler = (*PrecomputedSampler)(nil)
