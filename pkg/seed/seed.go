// Package seed turns arbitrary strings into reproducible pseudo-random streams.
//
// The same seed string must always produce the same avatar, on every platform
// and across releases, so both stages use wrapping 32-bit integer arithmetic
// only:
//
//  1. [StringHash] folds the string into a signed 32-bit value with the
//     classic h = h*31 + c rolling hash over UTF-16 code units.
//  2. [Mulberry32] expands that value into a stream of floats in [0, 1).
//
// Usage:
//
//	r := seed.New("jane")
//	cx := int(r.Float64() * 101) // 0..100
package seed

import (
	"math"
	"unicode/utf16"
)

// mulberryIncrement is the Weyl-sequence step of the mulberry32 generator.
const mulberryIncrement = 0x6D2B79F5

// StringHash returns the 32-bit rolling hash of s.
//
// The hash iterates over UTF-16 code units so that characters outside the
// basic multilingual plane hash as their surrogate pairs.
func StringHash(s string) int32 {
	var h uint32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(c)
	}
	return int32(h)
}

// Rand is a mulberry32 generator. It is not safe for concurrent use; each
// render owns its own instance.
type Rand struct {
	state uint32

	spare    float64
	hasSpare bool
}

// Mulberry32 returns a generator seeded with seed.
func Mulberry32(seed uint32) *Rand {
	return &Rand{state: seed}
}

// New hashes s and returns a generator seeded with the result.
func New(s string) *Rand {
	return Mulberry32(uint32(StringHash(s)))
}

// Uint32 returns the next raw 32-bit output.
func (r *Rand) Uint32() uint32 {
	r.state += mulberryIncrement
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// Intn returns floor(Float64() * n), a value in [0, n).
func (r *Rand) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// NormFloat64 returns a standard normally distributed value using the
// Box-Muller transform. Values are produced in pairs; the second one is kept
// for the next call.
func (r *Rand) NormFloat64() float64 {
	if r.hasSpare {
		r.hasSpare = false
		return r.spare
	}
	u1 := r.Float64()
	for u1 == 0 {
		u1 = r.Float64()
	}
	u2 := r.Float64()
	mag := math.Sqrt(-2 * math.Log(u1))
	r.spare = mag * math.Sin(2*math.Pi*u2)
	r.hasSpare = true
	return mag * math.Cos(2*math.Pi*u2)
}
