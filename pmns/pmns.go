// Package pmns implements the pseudorandom multinomial sampler's binary
// tree descent: routing a fixed total ball count across bin labels via
// derandomized binomial splits, forward (trace a ball to its bin) and
// inverse (enumerate a bin's preimage run).
//
// Grounded on services/state-syncer/iprf.go's traceBall/enumerateBallsInBin
// pair and original_source/state-syncer/src/iprf.rs's trace_ball/
// trace_ball_inverse, with the node encoding normative format from
// spec.md §6.
package pmns

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"

	"github.com/plinko-pir/ipir/binomial"
)

// LevelSampler is satisfied by binomial.LeveledSampler: a sampler whose
// Sample call is additionally parameterized by tree depth. Router uses
// it instead of binomial.Sampler when one is supplied to NewLeveled, so
// each node's split draws from the tighter per-level bound instead of a
// single global one.
type LevelSampler interface {
	Sample(level int, count, num, denom, prfOutput uint64) uint64
}

// Router implements the PMNS binary tree descent over a fixed domain
// size n and range size m, keyed by an AES-128 block cipher. It is
// read-only after construction and safe for concurrent use (§5).
type Router struct {
	block cipher.Block
	n     uint64
	m     uint64

	sampler      binomial.Sampler
	levelSampler LevelSampler
}

// New constructs a Router backed by a level-agnostic Sampler (the
// baseline ExactSampler, GaussianSampler, or PrecomputedSampler).
func New(key [16]byte, n, m uint64, sampler binomial.Sampler) *Router {
	return &Router{block: mustCipher(key), n: n, m: m, sampler: sampler}
}

// NewLeveled constructs a Router backed by a LevelSampler (typically
// *binomial.LeveledSampler), so each tree node samples with the
// iteration bound appropriate to its depth instead of a single global
// bound.
func NewLeveled(key [16]byte, n, m uint64, sampler LevelSampler) *Router {
	return &Router{block: mustCipher(key), n: n, m: m, levelSampler: sampler}
}

func mustCipher(key [16]byte) cipher.Block {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		panic("pmns: failed to construct AES-128 cipher: " + err.Error())
	}
	return block
}

// Forward traces ball x through the bin tree and returns its bin label.
// x must be in [0, n) (an internal-layer precondition upheld by
// package iprf's public bounds check).
func (r *Router) Forward(x uint64) uint64 {
	if r.m == 1 {
		return 0
	}

	low, high := uint64(0), r.m-1
	count := r.n
	index := x
	depth := 0

	for low < high {
		mid, leftCount := r.split(low, high, count, depth)

		if index < leftCount {
			high = mid
			count = leftCount
		} else {
			low = mid + 1
			index -= leftCount
			count -= leftCount
		}
		depth++
	}

	return low
}

// Inverse returns the contiguous run [start, start+count) of x'-space
// indices whose forward image is bin y. y must be in [0, m).
func (r *Router) Inverse(y uint64) (start, count uint64) {
	if r.m == 1 {
		return 0, r.n
	}

	low, high := uint64(0), r.m-1
	count = r.n
	depth := 0

	for low < high {
		mid, leftCount := r.split(low, high, count, depth)

		if y <= mid {
			high = mid
			count = leftCount
		} else {
			low = mid + 1
			start += leftCount
			count -= leftCount
		}
		depth++
	}

	return start, count
}

// split computes the midpoint of [low, high] and the number of balls
// that go left, drawing from the same per-node uniform on both the
// forward and inverse paths (the uniform depends only on (low, high, n),
// never on which ball or bin is being traced).
func (r *Router) split(low, high, count uint64, depth int) (mid, leftCount uint64) {
	mid = (low + high) / 2
	leftBins := mid - low + 1
	totalBins := high - low + 1

	word := r.nodeWord(low, high)

	if r.levelSampler != nil {
		leftCount = r.levelSampler.Sample(depth, count, leftBins, totalBins, word)
	} else {
		leftCount = r.sampler.Sample(count, leftBins, totalBins, word)
	}
	return mid, leftCount
}

// nodeWord derives the per-node pseudorandom word from the node's
// public coordinates (low, high, n): SHA-256(be(low)||be(high)||be(n))
// identifies the node, then a block-cipher call under the router's key
// turns that public identifier into the 64-bit word a binomial.Sampler
// turns into its uniform. This is what lets forward and inverse
// reproduce the identical draw for the same node, per spec.md §4.4.
func (r *Router) nodeWord(low, high uint64) uint64 {
	return r.prfEval(encodeNode(low, high, r.n))
}

func (r *Router) prfEval(nodeID uint64) uint64 {
	var input [16]byte
	binary.BigEndian.PutUint64(input[8:16], nodeID)

	var output [16]byte
	r.block.Encrypt(output[:], input[:])

	return binary.BigEndian.Uint64(output[0:8])
}

// encodeNode computes the normative node identifier:
// SHA-256(be(low) || be(high) || be(n)), first 8 bytes as big-endian u64.
func encodeNode(low, high, n uint64) uint64 {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], low)
	binary.BigEndian.PutUint64(buf[8:16], high)
	binary.BigEndian.PutUint64(buf[16:24], n)

	sum := sha256.Sum256(buf[:])
	return binary.BigEndian.Uint64(sum[0:8])
}
