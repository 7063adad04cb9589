package binomial

import "testing"

func TestLeveledSamplerBoundsShrinkWithDepth(t *testing.T) {
	s := NewLeveledSampler(1000, 16)

	prevBound := s.LevelBound(0)
	if prevBound != 1000 {
		t.Errorf("level 0 bound = %d, want 1000 (full n)", prevBound)
	}
	for level := 1; level < 4; level++ {
		bound := s.LevelBound(level)
		if bound > prevBound {
			t.Errorf("level %d bound %d should not exceed level %d bound %d", level, bound, level-1, prevBound)
		}
		prevBound = bound
	}
}

func TestLeveledSamplerInBounds(t *testing.T) {
	s := NewLeveledSampler(1000, 16)

	for level := 0; level < 4; level++ {
		for prfOutput := uint64(0); prfOutput < 5000; prfOutput += 731 {
			k := s.Sample(level, 500, 1, 2, prfOutput)
			if k > 500 {
				t.Fatalf("level %d: Sample returned %d > count 500", level, k)
			}
		}
	}
}

func TestLeveledAgreesWithExactAtLevelZero(t *testing.T) {
	// At level 0, LeveledSampler's bound equals n itself, so it should
	// iterate exactly as far as an ExactSampler configured with the same
	// bound and agree on every draw.
	const n = 200
	leveled := NewLeveledSampler(n, 16)
	exact := NewExactSampler(leveled.LevelBound(0))

	for prfOutput := uint64(0); prfOutput < 10000; prfOutput += 257 {
		got := leveled.Sample(0, n, 3, 8, prfOutput)
		want := exact.Sample(n, 3, 8, prfOutput)
		if got != want {
			t.Fatalf("leveled.Sample(level=0, prf=%d) = %d, exact.Sample(...) = %d", prfOutput, got, want)
		}
	}
}

func TestLeveledSamplerDegenerateRange(t *testing.T) {
	s := NewLeveledSampler(100, 1)
	if s.LevelBound(0) != 100 {
		t.Errorf("single-bin tree should still report level 0 bound = n, got %d", s.LevelBound(0))
	}
}

func TestLeveledSamplerTotalIterations(t *testing.T) {
	s := NewLeveledSampler(256, 8)
	total := s.TotalIterations()
	if total == 0 {
		t.Fatal("TotalIterations should be positive for a multi-level tree")
	}
	// Geometric halving keeps the sum across levels below 2n; the check
	// uses the looser bound 4n.
	if total >= uint64(s.LevelBound(0))*4 {
		t.Errorf("TotalIterations %d looks too large for a geometrically shrinking bound", total)
	}
}

// TestScenarioLeveledBounds exercises end-to-end scenario 3: a leveled
// sampler over n=49152, m=256 should report level_bound(0)=49152 (full
// n), level_bound(1)=24576 (half of n), and level_bound(7)>0.
func TestScenarioLeveledBounds(t *testing.T) {
	const n, m = 49152, 256
	s := NewLeveledSampler(n, m)

	if got := s.LevelBound(0); got != 49152 {
		t.Errorf("level_bound(0) = %d, want 49152", got)
	}
	if got := s.LevelBound(1); got != 24576 {
		t.Errorf("level_bound(1) = %d, want 24576", got)
	}
	if got := s.LevelBound(7); got == 0 {
		t.Errorf("level_bound(7) = %d, want > 0", got)
	}
}

// TestScenarioLeveledTotalIterationsLargeN exercises end-to-end
// scenario 4: for n=12,500,000, m=256, the leveled sampler's total
// iteration count across all tree levels must stay below 8n/3 — the
// geometric-halving saving the per-level bound buys over a flat
// MAX_COUNT+1-per-node baseline.
func TestScenarioLeveledTotalIterationsLargeN(t *testing.T) {
	const n, m = 12_500_000, 256
	s := NewLeveledSampler(n, m)

	total := s.TotalIterations()
	limit := uint64(8 * n / 3)
	if total >= limit {
		t.Errorf("TotalIterations() = %d, want < 8n/3 = %d", total, limit)
	}
}
