package binomial

import "github.com/plinko-pir/ipir/internal/obliv"

// ExactSampler is the baseline constant-time sampler: every call
// iterates exactly MaxCount+1 times, independent of count. Callers must
// guarantee count <= MaxCount (ExactSampler clamps internally, but a
// caller that needs a tighter bound should reach for LeveledSampler
// instead — see binomial/leveled.go).
type ExactSampler struct {
	maxCount uint64
}

// NewExactSampler creates a sampler whose Sample calls always iterate
// maxCount+1 times.
func NewExactSampler(maxCount uint64) *ExactSampler {
	return &ExactSampler{maxCount: maxCount}
}

// Sample draws k ~ Binomial(count, num/denom) in exactly maxCount+1
// iterations. Edge cases on public (num, denom) short-circuit without
// touching the secret count or prf_output's timing profile: these
// branches only depend on num/denom, which are public per spec.
func (s *ExactSampler) Sample(count, num, denom, prfOutput uint64) uint64 {
	if denom == 0 || num == 0 {
		return 0
	}
	if num >= denom {
		return count
	}

	p := float64(num) / float64(denom)
	u := uniform01(prfOutput)

	p, complemented := applySymmetry(p)

	countIsZero := obliv.CtEqU64(count, 0)
	k := logSpaceInverseCDF(count, s.maxCount, p, u)

	result := k
	if complemented {
		result = count - k
	}
	return obliv.CtSelectU64(countIsZero, 0, result)
}

var _ Sampler = (*ExactSampler)(nil)
