// Package iprf composes package prp and package pmns into the
// invertible pseudorandom function: forward maps an entry index through
// the permutation then down the bin tree to a bucket label; inverse
// ascends the bin tree to recover the contiguous run of permuted
// indices mapping to a label, then un-permutes each one.
//
// Grounded on services/state-syncer/iprf_prp.go's EnhancedIPRF (which
// composes a *PRP and an *IPRF-as-PMNS as two independently constructed
// fields) and original_source/state-syncer/src/iprf.rs's Iprf.
package iprf

import (
	"crypto/sha256"

	"github.com/plinko-pir/ipir/binomial"
	"github.com/plinko-pir/ipir/pmns"
	"github.com/plinko-pir/ipir/prp"
)

// PrfKey128 is a 128-bit master key. The PRP subkey used internally is
// derived from it by domain separation (see deriveSubkey); the PMNS
// router uses the master key directly, matching the teacher's
// EnhancedIPRF field layout.
type PrfKey128 [16]byte

// Iprf is the non-TEE baseline composition: its
// PMNS router is backed by a binomial.ExactSampler, which iterates to a
// fixed MAX_COUNT bound but performs no Gaussian/table optimizations.
// Use this for correctness testing and for any caller not running
// inside a TEE; use Tee/TeeGaussian when the constant-time guarantee
// matters.
type Iprf struct {
	p *prp.PRP
	r *pmns.Router
	n uint64
	m uint64
}

// New constructs an Iprf over domain [0,n) and range [0,m), keyed by
// key, with the PRP running its full 6*ceil(log2 n)+6 rounds and the
// PMNS sampler bounded by n balls per node — the always-safe bound,
// since no node ever needs to route more balls than the whole domain
// holds. Matches the normative 3-argument signature from spec.md §6
// (`Iprf::new(key, n, m)`); callers who need a tighter bound (e.g.
// DeriveMaxCount(lambda, w)) should build their own pmns.Router with
// binomial.NewExactSampler directly instead of going through New.
func New(key PrfKey128, n, m uint64) *Iprf {
	return &Iprf{
		p: prp.New(prp.Key128(deriveSubkey(key)), n),
		r: pmns.New(key, n, m, binomial.NewExactSampler(n)),
		n: n,
		m: m,
	}
}

// Forward maps entry index x to its bucket label. Out-of-domain input
// (x >= n) returns 0 (spec's defined degenerate behavior, not a panic —
// see SPEC_FULL.md §7).
func (f *Iprf) Forward(x uint64) uint64 {
	if x >= f.n {
		return 0
	}
	xPrime := f.p.Forward(x)
	return f.r.Forward(xPrime)
}

// Inverse returns every entry index mapping to bucket label y, in
// ascending x'-space order un-permuted pointwise. Out-of-domain input
// (y >= m) returns nil (the empty preimage).
func (f *Iprf) Inverse(y uint64) []uint64 {
	if y >= f.m {
		return nil
	}
	start, count := f.r.Inverse(y)
	if count == 0 {
		return nil
	}

	result := make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		result[i] = f.p.Inverse(start + i)
	}
	return result
}

// deriveSubkey computes SHA-256(masterKey || "prp")[0:16], the PRP's
// domain-separated subkey. This is a fixed literal context string, not
// a caller-supplied one — the wire format is normative (spec.md §4.5),
// narrower than the teacher's more general DeriveIPRFKey-style KDF.
func deriveSubkey(masterKey PrfKey128) [16]byte {
	h := sha256.New()
	h.Write(masterKey[:])
	h.Write([]byte("prp"))
	sum := h.Sum(nil)

	var subkey [16]byte
	copy(subkey[:], sum[:16])
	return subkey
}
