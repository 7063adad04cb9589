package iprf

import (
	"github.com/plinko-pir/ipir/binomial"
	"github.com/plinko-pir/ipir/internal/obliv"
	"github.com/plinko-pir/ipir/pmns"
	"github.com/plinko-pir/ipir/prp"
)

// Tee is the constant-time composition for TEE execution: its PMNS
// router is backed by a binomial.LeveledSampler, so each tree node's
// iteration bound shrinks geometrically with depth instead of using a
// single global MAX_COUNT. InverseCT is the TEE-facing entry point;
// Forward/Inverse are still available but Inverse allocates, so callers
// inside a TEE should prefer InverseCT.
type Tee struct {
	p            *prp.PRP
	r            *pmns.Router
	n            uint64
	m            uint64
	maxPreimages uint64
}

// TeeWithSecurity constructs a Tee whose PRP runs
// max(1, ceil(securityBits/8)) + ceil(log2(n)) rounds instead of the
// full 6*ceil(log2 n)+6 (see SPEC_FULL.md §9's resolution of the
// security_bits Open Question). maxPreimages bounds InverseCT's output
// buffer and should be a public constant derived from protocol
// parameters (e.g. DeriveMaxCount(lambda, w)). Intended for
// benchmarking only — production call sites should use New instead.
func TeeWithSecurity(key PrfKey128, n, m uint64, securityBits uint32, maxPreimages uint64) *Tee {
	rounds := teeRounds(securityBits, n)
	return &Tee{
		p:            prp.NewWithRounds(prp.Key128(deriveSubkey(key)), n, rounds),
		r:            pmns.NewLeveled(key, n, m, binomial.NewLeveledSampler(n, m)),
		n:            n,
		m:            m,
		maxPreimages: maxPreimages,
	}
}

// TeeGaussian is the constant-time composition whose PMNS router uses
// binomial.GaussianSampler: nodes with large enough np and n(1-p) take
// the Gaussian approximation's result and all other nodes take the
// log-space recurrence's; both are computed at every node. Prefer this over Tee when n is large enough that the
// Gaussian approximation's error is acceptable (spec.md §9).
type TeeGaussian struct {
	p            *prp.PRP
	r            *pmns.Router
	n            uint64
	m            uint64
	maxPreimages uint64
}

// TeeGaussianWithSecurity constructs a TeeGaussian with the same
// security_bits-to-rounds mapping as TeeWithSecurity; fallbackMaxCount
// bounds the Gaussian sampler's exact fallback path (pass n itself, or
// DeriveMaxCount(lambda, w)).
func TeeGaussianWithSecurity(key PrfKey128, n, m uint64, securityBits uint32, fallbackMaxCount, maxPreimages uint64) *TeeGaussian {
	rounds := teeRounds(securityBits, n)
	return &TeeGaussian{
		p:            prp.NewWithRounds(prp.Key128(deriveSubkey(key)), n, rounds),
		r:            pmns.New(key, n, m, binomial.NewGaussianSampler(fallbackMaxCount)),
		n:            n,
		m:            m,
		maxPreimages: maxPreimages,
	}
}

func teeRounds(securityBits uint32, n uint64) int {
	byRounds := int((securityBits + 7) / 8)
	if byRounds < 1 {
		byRounds = 1
	}
	return byRounds + ceilLog2(n)
}

func ceilLog2(n uint64) int {
	if n <= 1 {
		return 0
	}
	depth := 0
	for (uint64(1) << depth) < n {
		depth++
	}
	return depth
}

// Forward has the same contract as Iprf.Forward.
func (t *Tee) Forward(x uint64) uint64 {
	if x >= t.n {
		return 0
	}
	return t.r.Forward(t.p.Forward(x))
}

// Inverse has the same contract as Iprf.Inverse. Prefer InverseCT
// inside a TEE: this method's allocation and loop bound both depend on
// the secret preimage count.
func (t *Tee) Inverse(y uint64) []uint64 {
	if y >= t.m {
		return nil
	}
	start, count := t.r.Inverse(y)
	result := make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		result[i] = t.p.Inverse(start + i)
	}
	return result
}

// InverseCT is the TEE-facing inverse: it always writes exactly
// maxPreimages entries into the returned array and always performs the
// same sequence of operations regardless of y or the true preimage
// count, per spec.md §4.5/§5's timing guarantee. The returned count
// (<= maxPreimages) says how many leading entries are valid; entries at
// index >= count are oblivious-but-arbitrary and must not be read by
// callers that care about timing independence.
func (t *Tee) InverseCT(y uint64) ([]uint64, uint64) {
	indices := make([]uint64, t.maxPreimages)

	yInRange := obliv.CtLtU64(y, t.m)
	ySafe := obliv.CtSelectU64(yInRange, y, 0)

	start, count := t.r.Inverse(ySafe)
	count = obliv.CtMinU64(obliv.CtSelectU64(yInRange, count, 0), t.maxPreimages)

	lastValid := t.n - 1
	for i := uint64(0); i < t.maxPreimages; i++ {
		candidate := obliv.CtMinU64(start+i, lastValid)
		indices[i] = t.p.Inverse(candidate)
	}

	return indices, count
}

// Forward has the same contract as Iprf.Forward.
func (t *TeeGaussian) Forward(x uint64) uint64 {
	if x >= t.n {
		return 0
	}
	return t.r.Forward(t.p.Forward(x))
}

// Inverse has the same contract as Iprf.Inverse.
func (t *TeeGaussian) Inverse(y uint64) []uint64 {
	if y >= t.m {
		return nil
	}
	start, count := t.r.Inverse(y)
	result := make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		result[i] = t.p.Inverse(start + i)
	}
	return result
}

// InverseCT has the same contract as Tee.InverseCT.
func (t *TeeGaussian) InverseCT(y uint64) ([]uint64, uint64) {
	indices := make([]uint64, t.maxPreimages)

	yInRange := obliv.CtLtU64(y, t.m)
	ySafe := obliv.CtSelectU64(yInRange, y, 0)

	start, count := t.r.Inverse(ySafe)
	count = obliv.CtMinU64(obliv.CtSelectU64(yInRange, count, 0), t.maxPreimages)

	lastValid := t.n - 1
	for i := uint64(0); i < t.maxPreimages; i++ {
		candidate := obliv.CtMinU64(start+i, lastValid)
		indices[i] = t.p.Inverse(candidate)
	}

	return indices, count
}
