package iprf

import "testing"

func TestDeriveMaxCount(t *testing.T) {
	cases := []struct {
		lambda uint32
		w      uint64
		want   uint64
	}{
		{128, 1, 256},
		{40, 64, 5120},
		{0, 1000, 0},
	}
	for _, c := range cases {
		if got := DeriveMaxCount(c.lambda, c.w); got != c.want {
			t.Errorf("DeriveMaxCount(%d, %d) = %d, want %d", c.lambda, c.w, got, c.want)
		}
	}
}
