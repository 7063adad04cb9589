package iprf

import "testing"

// TestScenarioPermutationOnUnitRange exercises scenario 1: with m=1 (a
// single bucket), forward composed with inverse on a domain of 1000
// must act as a plain permutation roundtrip through PRP alone, and the
// single bucket's Inverse(0) must hold all 1000 entries.
func TestScenarioPermutationOnUnitRange(t *testing.T) {
	const n, m = 1000, 1
	var key PrfKey128
	f := New(key, n, m)

	for x := uint64(0); x < 100; x++ {
		y := f.Forward(x)
		preimage := f.Inverse(y)
		if !contains(preimage, x) {
			t.Fatalf("x=%d not recovered from its own forward/inverse roundtrip", x)
		}
	}

	if total := len(f.Inverse(0)); uint64(total) != n {
		t.Errorf("single-bucket Inverse(0) has %d entries, want %d", total, n)
	}
}

// TestScenarioLargeDomainSmallRange exercises scenario 2: a large
// domain (49152) mapped onto a small range (256 buckets) under a
// uniform key, checking that the first 50 entries all round-trip.
func TestScenarioLargeDomainSmallRange(t *testing.T) {
	const n, m = 49152, 256
	var key PrfKey128
	for i := range key {
		key[i] = 2
	}
	f := New(key, n, m)

	for x := uint64(0); x < 50; x++ {
		y := f.Forward(x)
		preimage := f.Inverse(y)
		if !contains(preimage, x) {
			t.Fatalf("x=%d not found in iPRF.inverse(iPRF.forward(%d)) = %v", x, x, preimage)
		}
	}
}

// TestScenarioTeeMatchesBaselineOnPreimageCounts checks that the
// constant-time Tee composition conserves total preimage count exactly
// like the baseline Iprf, over the same (n, m, key).
func TestScenarioTeeMatchesBaselineOnPreimageCounts(t *testing.T) {
	const n, m = 4096, 32
	key := testKey(0x66)

	baseline := New(key, n, m)
	tee := TeeWithSecurity(key, n, m, 128, n)

	var baselineTotal, teeTotal uint64
	for y := uint64(0); y < m; y++ {
		baselineTotal += uint64(len(baseline.Inverse(y)))
		teeTotal += uint64(len(tee.Inverse(y)))
	}

	if baselineTotal != n {
		t.Errorf("baseline total preimages = %d, want %d", baselineTotal, n)
	}
	if teeTotal != n {
		t.Errorf("tee total preimages = %d, want %d", teeTotal, n)
	}
}

// TestScenarioTeeInverseCTWritesFixedCapacity checks the TEE-facing
// InverseCT entry point always returns exactly maxPreimages slots, with
// count never exceeding that capacity.
func TestScenarioTeeInverseCTWritesFixedCapacity(t *testing.T) {
	const n, m = 2000, 16
	const maxPreimages = 2000
	key := testKey(0x77)
	tee := TeeWithSecurity(key, n, m, 128, maxPreimages)

	for y := uint64(0); y < m; y++ {
		indices, count := tee.InverseCT(y)
		if len(indices) != maxPreimages {
			t.Fatalf("InverseCT(%d) returned %d slots, want %d", y, len(indices), maxPreimages)
		}
		if count > maxPreimages {
			t.Fatalf("InverseCT(%d) count %d exceeds maxPreimages %d", y, count, maxPreimages)
		}
		start, wantCount := tee.r.Inverse(y)
		if count != wantCount {
			t.Fatalf("InverseCT(%d) count = %d, want %d", y, count, wantCount)
		}
		for i := uint64(0); i < count; i++ {
			want := tee.p.Inverse(start + i)
			if indices[i] != want {
				t.Fatalf("InverseCT(%d)[%d] = %d, want %d", y, i, indices[i], want)
			}
		}
	}
}

// TestScenarioTeeInverseCTOutOfRangeYieldsZeroCount mirrors the
// out-of-domain handling scenario for the TEE-facing entry point.
func TestScenarioTeeInverseCTOutOfRangeYieldsZeroCount(t *testing.T) {
	const n, m = 500, 8
	const maxPreimages = 500
	key := testKey(0x88)
	tee := TeeWithSecurity(key, n, m, 128, maxPreimages)

	indices, count := tee.InverseCT(m)
	if count != 0 {
		t.Errorf("InverseCT(m) count = %d, want 0", count)
	}
	if len(indices) != maxPreimages {
		t.Errorf("InverseCT(m) returned %d slots, want %d", len(indices), maxPreimages)
	}
}

// TestScenarioTeeGaussianConservesPreimageCount exercises the Gaussian
// TEE variant over a domain large enough that most tree nodes take the
// Gaussian branch.
func TestScenarioTeeGaussianConservesPreimageCount(t *testing.T) {
	const n, m = 100000, 64
	key := testKey(0x99)
	tg := TeeGaussianWithSecurity(key, n, m, 128, n, n)

	var total uint64
	for y := uint64(0); y < m; y++ {
		_, count := tg.InverseCT(y)
		total += count
	}
	if total != n {
		t.Errorf("gaussian tee total preimages = %d, want %d", total, n)
	}
}
