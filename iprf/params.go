package iprf

// DeriveMaxCount returns 2*lambda*w, the conventional bound on the
// number of balls any single PMNS tree node needs to route when the
// engine is driven by a security parameter lambda (bits) and a
// protocol block width w (entries per block). Exposed as a named
// helper so callers configuring a binomial.ExactSampler or
// binomial.LeveledSampler don't hand-roll the formula at every call
// site, matching services/plinko-pir-server/params.go's
// derivePlinkoParams convention of naming derived constants instead of
// repeating arithmetic.
func DeriveMaxCount(lambda uint32, w uint64) uint64 {
	return 2 * uint64(lambda) * w
}
