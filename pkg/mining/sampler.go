package mining

import "math/bits"

// splitMix64Mix applies the standard SplitMix64 output mixing function
// (spec.md §4.1): x ^= x>>30; x*=C1; x^=x>>27; x*=C2; x^=x>>31.
func splitMix64Mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return x
}

// ReverseBits64 reverses the bit order of x using a SWAR bit-reversal
// (spec.md §9: "The bit-reversal must be SWAR, not platform-specific
// intrinsics"), matching the exact transform van der Corput base-2 needs.
func ReverseBits64(x uint64) uint64 {
	x = bits.Reverse64(x)
	return x
}

// radicalInverseBase3U64 computes a 64-bit fixed-point radical inverse of n
// in base 3 by software long division, avoiding >64-bit intermediates per
// spec.md §9's numeric-portability note (the C++ original uses
// __uint128_t; this Go port uses math/bits.Div64 instead).
//
// The digits of n in base 3 (least significant first) are reinterpreted as
// the digits of a fraction in base 3 (most significant first), then that
// fraction is converted to a 64-bit fixed-point value by repeatedly
// dividing the 128-bit pair (digit, acc) by 3 with Div64.
func radicalInverseBase3U64(n uint64) uint64 {
	const base = 3
	var digits []uint8
	if n == 0 {
		digits = []uint8{0}
	}
	for n > 0 {
		digits = append(digits, uint8(n%base))
		n /= base
	}

	// value = sum(digit[i] * base^-(i+1)) represented as a 64-bit
	// fixed-point fraction, accumulated most-significant digit first via
	// the standard "multiply accumulator by base, add digit, then divide
	// by base^digitCount" identity done incrementally to avoid overflow:
	// acc = (acc + digit) / base, applied from the innermost digit out.
	var acc uint64
	for i := len(digits) - 1; i >= 0; i-- {
		// acc = (acc + digit*2^64/base-scale) ... implemented via 128-bit
		// long division: numerator = acc + digit<<64 (conceptually), so we
		// use Mul64/Div64 to divide the 128-bit pair (digit, acc) by base.
		hi := uint64(digits[i])
		lo := acc
		quo, _ := bits.Div64(hi, lo, base)
		acc = quo
	}
	return acc
}

// part1By1 spreads the low 32 bits of x so each input bit occupies an even
// output bit position (spec.md §4.1 Morton interleave), leaving odd bits 0.
func part1By1(x uint32) uint64 {
	v := uint64(x)
	v = (v | (v << 16)) & 0x0000FFFF0000FFFF
	v = (v | (v << 8)) & 0x00FF00FF00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F0F0F0F0F
	v = (v | (v << 2)) & 0x3333333333333333
	v = (v | (v << 1)) & 0x5555555555555555
	return v
}

// morton2D32 interleaves two 32-bit coordinates with x in even bits and y
// in odd bits (spec.md §4.1).
func morton2D32(x, y uint32) uint64 {
	return part1By1(x) | (part1By1(y) << 1)
}

// MineSeedForSample computes the canonical 64-bit seed for sample index i
// under cfg (spec.md §4.1). Pure and allocation-free.
func MineSeedForSample(cfg Config, i uint64) uint64 {
	base := cfg.SeedStart + i*cfg.SeedStep

	var seed uint64
	switch cfg.SeedSampler {
	case SamplerLinear:
		seed = base
	case SamplerSplitMix64:
		seed = splitMix64Mix(base)
	case SamplerVanDerCorput2:
		seed = ReverseBits64(base)
	case SamplerHalton23:
		u := ReverseBits64(base)
		v := radicalInverseBase3U64(base)
		hiU := uint32(u >> 32)
		hiV := uint32(v >> 32)
		seed = morton2D32(hiU, hiV)
	default:
		seed = base
	}

	return seed ^ cfg.SeedXor
}
