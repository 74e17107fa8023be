// Package poly implements arithmetic over the ring Z_q[X]/(X^256+1) with
// q = 8380417, together with the rounding, hint, sampling and byte-encoding
// routines the signature scheme is built from.
//
// A Poly keeps every coefficient reduced to [0, q). The centered view
// (-q/2, q/2] required by norm bounds and by the signed encodings is taken
// at the point of use via InfinityNorm and the codecs. Multiplication is
// schoolbook convolution with the X^256 = -1 wraparound; products
// accumulate in int64, which holds the full 256-term convolution of
// 23-bit coefficients without overflow.
package poly

import "runtime"

const (
	// N is the ring dimension.
	N = 256
	// Q is the coefficient modulus.
	Q = 8380417
	// D is the number of low-order bits dropped by Power2Round.
	D = 13
	// QMinus1Div2 splits [0, Q) into nonnegative and negative residues.
	QMinus1Div2 = (Q - 1) / 2

	// Gamma2QMinus1Div88 is the low-order rounding bound (q-1)/88.
	Gamma2QMinus1Div88 = (Q - 1) / 88
	// Gamma2QMinus1Div32 is the low-order rounding bound (q-1)/32.
	Gamma2QMinus1Div32 = (Q - 1) / 32
)

// Poly is a ring element: N coefficients in [0, Q).
type Poly [N]int32

// Vec is a vector of ring elements.
type Vec []Poly

// Matrix is a row-major matrix of ring elements.
type Matrix []Vec

// NewVec allocates a zero vector of the given dimension.
func NewVec(dim int) Vec {
	return make(Vec, dim)
}

// Clone returns an independent copy of v.
func (v Vec) Clone() Vec {
	out := make(Vec, len(v))
	copy(out, v)
	return out
}

// modQ reduces an int64 accumulator into [0, Q).
func modQ(x int64) int32 {
	r := int32(x % Q)
	if r < 0 {
		r += Q
	}
	return r
}

// addMod returns a+b mod Q for a, b in [0, Q), without branching.
func addMod(a, b int32) int32 {
	r := a + b - Q
	r += (r >> 31) & Q
	return r
}

// subMod returns a-b mod Q for a, b in [0, Q), without branching.
func subMod(a, b int32) int32 {
	r := a - b
	r += (r >> 31) & Q
	return r
}

// Add returns a+b.
func Add(a, b Poly) Poly {
	var c Poly
	for i := range c {
		c[i] = addMod(a[i], b[i])
	}
	return c
}

// Sub returns a-b.
func Sub(a, b Poly) Poly {
	var c Poly
	for i := range c {
		c[i] = subMod(a[i], b[i])
	}
	return c
}

// mulAccumulate adds the convolution of a and b into acc, flipping the sign
// of terms that wrap past X^256. No secret-dependent branches.
func mulAccumulate(a, b *Poly, acc *[N]int64) {
	for i := 0; i < N; i++ {
		ai := int64(a[i])
		for j := 0; j < N-i; j++ {
			acc[i+j] += ai * int64(b[j])
		}
		for j := N - i; j < N; j++ {
			acc[i+j-N] -= ai * int64(b[j])
		}
	}
}

// Mul returns a*b in the ring.
func Mul(a, b Poly) Poly {
	var acc [N]int64
	mulAccumulate(&a, &b, &acc)
	var c Poly
	for i := range c {
		c[i] = modQ(acc[i])
	}
	return c
}

// MatVecMul returns m*v. Each output row accumulates all l products in
// int64 before a single reduction.
func MatVecMul(m Matrix, v Vec) Vec {
	out := NewVec(len(m))
	for i := range m {
		var acc [N]int64
		for j := range m[i] {
			mulAccumulate(&m[i][j], &v[j], &acc)
		}
		for t := 0; t < N; t++ {
			out[i][t] = modQ(acc[t])
		}
	}
	return out
}

// MulVec multiplies every entry of v by the ring element c.
func MulVec(c Poly, v Vec) Vec {
	out := NewVec(len(v))
	for i := range v {
		out[i] = Mul(c, v[i])
	}
	return out
}

// VecAdd adds vectors entry-wise.
func VecAdd(a, b Vec) Vec {
	out := NewVec(len(a))
	for i := range a {
		out[i] = Add(a[i], b[i])
	}
	return out
}

// VecSub subtracts vectors entry-wise.
func VecSub(a, b Vec) Vec {
	out := NewVec(len(a))
	for i := range a {
		out[i] = Sub(a[i], b[i])
	}
	return out
}

// VecShiftD multiplies every coefficient by 2^D. Inputs must be high-order
// parts below 2^(23-D), so the shift stays under Q.
func VecShiftD(v Vec) Vec {
	out := NewVec(len(v))
	for i := range v {
		for j, c := range v[i] {
			out[i][j] = c << D
		}
	}
	return out
}

// InfinityNorm returns the largest centered magnitude min(a, Q-a) over the
// coefficients of p. The scan has no early exit.
func InfinityNorm(p Poly) int32 {
	var max int32
	for _, a := range p {
		if a > QMinus1Div2 {
			a = Q - a
		}
		if a > max {
			max = a
		}
	}
	return max
}

// VecInfinityNorm returns the largest InfinityNorm across v.
func VecInfinityNorm(v Vec) int32 {
	var max int32
	for i := range v {
		if n := InfinityNorm(v[i]); n > max {
			max = n
		}
	}
	return max
}

// ExceedsBound reports whether any coefficient of v has centered magnitude
// at or above bound. An all-zero vector never exceeds a positive bound.
func ExceedsBound(v Vec, bound int32) bool {
	return VecInfinityNorm(v) >= bound
}

// Weight counts the nonzero coefficients across v.
func Weight(v Vec) int {
	count := 0
	for i := range v {
		for _, c := range v[i] {
			if c != 0 {
				count++
			}
		}
	}
	return count
}

// Zeroize overwrites every coefficient with zero.
// Uses runtime.KeepAlive to prevent the stores from being optimized away.
func (v Vec) Zeroize() {
	for i := range v {
		for j := range v[i] {
			v[i][j] = 0
		}
	}
	runtime.KeepAlive(v)
}
