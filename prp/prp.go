// Package prp implements the Swap-or-Not small-domain pseudorandom
// permutation (Morris-Rogaway, eprint 2013/560) used as the first stage
// of the iPRF composition (package iprf).
//
// Grounded on original_source/state-syncer/src/iprf.rs's SwapOrNot and
// on services/state-syncer/iprf_prp.go's AES plumbing.
package prp

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"math/bits"
)

// Key128 is a 128-bit key for the AES-128 instance backing a PRP.
type Key128 [16]byte

// PRP is a Swap-or-Not permutation over [0, N). Each round is an
// involution, so Inverse simply runs the same rounds in reverse order
// (I3: forward_prp restricted to [0,N) is a bijection; inverse_prp is
// its exact functional inverse).
type PRP struct {
	block  cipher.Block
	domain uint64
	rounds int
}

// New constructs a PRP over [0, domain) keyed by key, with
// R = 6*ceil(log2(domain)) + 6 rounds — full security across all
// domain queries per Morris-Rogaway.
func New(key Key128, domain uint64) *PRP {
	return newWithRounds(key, domain, fullSecurityRounds(domain))
}

// NewWithRounds constructs a PRP with an explicit round count,
// bypassing the full-security formula. Intended only for the TEE
// benchmarking constructors in package iprf (TeeWithSecurity); see
// SPEC_FULL.md §9 for why production code should use New instead.
func NewWithRounds(key Key128, domain uint64, rounds int) *PRP {
	return newWithRounds(key, domain, rounds)
}

func newWithRounds(key Key128, domain uint64, rounds int) *PRP {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		// A 16-byte key is always valid for AES-128; this can only
		// fail if the standard library's invariant about key length
		// changes out from under us.
		panic("prp: failed to construct AES-128 cipher: " + err.Error())
	}
	if rounds < 1 {
		rounds = 1
	}
	return &PRP{block: block, domain: domain, rounds: rounds}
}

// fullSecurityRounds returns 6*ceil(log2(N)) + 6, per spec.md §4.3.
func fullSecurityRounds(domain uint64) int {
	if domain <= 1 {
		return 6
	}
	return 6*ceilLog2(domain) + 6
}

func ceilLog2(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}

// Forward applies the PRP to x, composing rounds 0..R-1.
//
// x must be in [0, domain) — this is an internal-layer precondition
// the caller (package iprf) is responsible for upholding after its own
// public bounds check; PRP itself panics on violation rather than
// silently producing a meaningless result (see SPEC_FULL.md §7).
func (p *PRP) Forward(x uint64) uint64 {
	p.checkBounds(x)
	val := x
	for round := 0; round < p.rounds; round++ {
		val = p.round(round, val)
	}
	return val
}

// Inverse applies the PRP's inverse to y, composing rounds R-1..0.
// Because every round is an involution, Inverse(Forward(x)) == x
// exactly (I3).
func (p *PRP) Inverse(y uint64) uint64 {
	p.checkBounds(y)
	val := y
	for round := p.rounds - 1; round >= 0; round-- {
		val = p.round(round, val)
	}
	return val
}

func (p *PRP) checkBounds(x uint64) {
	if x >= p.domain {
		panic("prp: input out of domain [0, N)")
	}
}

// round applies a single Swap-or-Not round: an involution that swaps x
// with its partner iff the keyed PRF bit at the canonical representative
// says to.
func (p *PRP) round(round int, x uint64) uint64 {
	k := p.roundKey(round)
	partner := (k + p.domain - (x % p.domain)) % p.domain
	canonical := x
	if partner > canonical {
		canonical = partner
	}

	if p.swapBit(round, canonical) {
		return partner
	}
	return x
}

// roundKey derives K_i by encrypting big-endian(round) || big-endian(N)
// and reducing the first 8 output bytes modulo domain. This wire format
// is normative (spec.md §6).
func (p *PRP) roundKey(round int) uint64 {
	var input [16]byte
	binary.BigEndian.PutUint64(input[0:8], uint64(round))
	binary.BigEndian.PutUint64(input[8:16], p.domain)

	var output [16]byte
	p.block.Encrypt(output[:], input[:])

	return binary.BigEndian.Uint64(output[0:8]) % p.domain
}

// swapBit evaluates the keyed swap decision for a round. The top bit of
// the round-index field is set to distinguish this call from roundKey's
// key-derivation call against the same cipher (spec.md §6's normative
// "PRP bit input" format); the low bit of the first output byte is the
// swap decision.
func (p *PRP) swapBit(round int, canonical uint64) bool {
	var input [16]byte
	binary.BigEndian.PutUint64(input[0:8], uint64(round)|0x8000000000000000)
	binary.BigEndian.PutUint64(input[8:16], canonical)

	var output [16]byte
	p.block.Encrypt(output[:], input[:])

	return output[0]&1 == 1
}
