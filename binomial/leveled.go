package binomial

import "github.com/plinko-pir/ipir/internal/obliv"

// MaxTreeDepth bounds how many PMNS tree levels LeveledSampler will
// precompute bounds for. 32 levels covers any range size up to 2^32
// bins, far beyond any plausible PIR bucket count.
const MaxTreeDepth = 32

// LeveledSampler tightens ExactSampler's global iteration bound to a
// per-level bound: at tree depth L the ball count can never exceed
// ceil(n/2^L), so the loop trip count drops geometrically as the PMNS
// descent goes deeper.
type LeveledSampler struct {
	levelBounds [MaxTreeDepth]uint64
	numLevels   int
}

// NewLeveledSampler derives per-level bounds from domain size n and
// range size m (tree depth = ceil(log2(m)), at least 1 and at most
// MaxTreeDepth).
func NewLeveledSampler(n, m uint64) *LeveledSampler {
	treeDepth := 1
	if m > 1 {
		treeDepth = ceilLog2(m)
	}
	numLevels := treeDepth
	if numLevels > MaxTreeDepth {
		numLevels = MaxTreeDepth
	}

	var bounds [MaxTreeDepth]uint64
	maxBalls := n
	for level := 0; level < numLevels; level++ {
		bounds[level] = maxBalls
		maxBalls = (maxBalls + 1) / 2
	}

	return &LeveledSampler{levelBounds: bounds, numLevels: numLevels}
}

// Sample draws k ~ Binomial(count, num/denom) at the given tree level,
// iterating exactly LevelBound(level)+1 times regardless of count. A
// level at or beyond the configured depth uses the deepest level's
// bound.
func (s *LeveledSampler) Sample(level int, count, num, denom, prfOutput uint64) uint64 {
	if denom == 0 || num == 0 {
		return 0
	}
	if num >= denom {
		return count
	}

	maxCount := s.levelBounds[s.numLevels-1]
	if level < s.numLevels {
		maxCount = s.levelBounds[level]
	}

	p := float64(num) / float64(denom)
	u := uniform01(prfOutput)
	p, complemented := applySymmetry(p)

	countIsZero := obliv.CtEqU64(count, 0)
	k := logSpaceInverseCDF(count, maxCount, p, u)

	result := k
	if complemented {
		result = count - k
	}
	return obliv.CtSelectU64(countIsZero, 0, result)
}

// LevelBound returns the iteration bound for a given tree level, or 0
// if level is beyond the configured depth.
func (s *LeveledSampler) LevelBound(level int) uint64 {
	if level < s.numLevels {
		return s.levelBounds[level]
	}
	return 0
}

// TotalIterations sums the bounds across every configured level — the
// total work a full root-to-leaf PMNS descent performs, useful for
// capacity planning and for timing-sensitivity sanity tests.
func (s *LeveledSampler) TotalIterations() uint64 {
	var total uint64
	for level := 0; level < s.numLevels; level++ {
		total += s.levelBounds[level]
	}
	return total
}

func ceilLog2(m uint64) int {
	depth := 0
	for (uint64(1) << depth) < m {
		depth++
	}
	return depth
}
