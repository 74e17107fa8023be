package poly

// Power2Round splits r in [0, Q) into high and low parts with
// r1*2^D + r0 = r mod Q and the low part centered in (-2^(D-1), 2^(D-1)].
// Both results are returned in [0, Q) representation.
func Power2Round(r int32) (r1, r0 int32) {
	r1 = r >> D
	r0 = r - r1<<D

	const half = 1 << (D - 1)
	if r0 > half {
		r0 = subMod(r0, 1<<D)
		r1++
	}
	return r1, r0
}

// VecPower2Round applies Power2Round across a vector.
func VecPower2Round(v Vec) (r1, r0 Vec) {
	r1 = NewVec(len(v))
	r0 = NewVec(len(v))
	for i := range v {
		for j, c := range v[i] {
			r1[i][j], r0[i][j] = Power2Round(c)
		}
	}
	return r1, r0
}

// HighBits returns the high-order part of r decomposed by 2*gamma2,
// using branch-free fixed-point division for both supported gamma2 values.
func HighBits(r, gamma2 int32) int32 {
	r1 := (r + 127) >> 7

	if gamma2 == Gamma2QMinus1Div32 {
		r1 = (r1*1025 + (1 << 21)) >> 22
		return r1 & 15
	}
	// gamma2 = (Q-1)/88, high part in [0, 44)
	r1 = (r1*11275 + (1 << 23)) >> 24
	r1 ^= ((43 - r1) >> 31) & r1
	return r1
}

// Decompose splits r in [0, Q) into r1 = HighBits(r) and the signed
// centered remainder r0 with r1*2*gamma2 + r0 = r mod Q.
func Decompose(r, gamma2 int32) (r1, r0 int32) {
	r1 = HighBits(r, gamma2)
	r0 = r - r1*gamma2*2
	r0 -= ((QMinus1Div2 - r0) >> 31) & Q
	return r1, r0
}

// LowBits returns the signed centered low-order part of r.
func LowBits(r, gamma2 int32) int32 {
	_, r0 := Decompose(r, gamma2)
	return r0
}

// VecHighBits applies HighBits across a vector.
func VecHighBits(v Vec, gamma2 int32) Vec {
	out := NewVec(len(v))
	for i := range v {
		for j, c := range v[i] {
			out[i][j] = HighBits(c, gamma2)
		}
	}
	return out
}

// VecLowBitsNorm returns the largest |LowBits| across a vector.
// The scan has no early exit.
func VecLowBitsNorm(v Vec, gamma2 int32) int32 {
	var max int32
	for i := range v {
		for _, c := range v[i] {
			_, r0 := Decompose(c, gamma2)
			if r0 < 0 {
				r0 = -r0
			}
			if r0 > max {
				max = r0
			}
		}
	}
	return max
}

// MakeHint returns 1 when adding z to r changes the high-order part,
// 0 otherwise.
func MakeHint(z, r, gamma2 int32) int32 {
	if HighBits(addMod(r, z), gamma2) != HighBits(r, gamma2) {
		return 1
	}
	return 0
}

// VecMakeHint computes hints entry-wise: z carries the correction terms,
// r the commitments.
func VecMakeHint(z, r Vec, gamma2 int32) Vec {
	out := NewVec(len(z))
	for i := range z {
		for j := range z[i] {
			out[i][j] = MakeHint(z[i][j], r[i][j], gamma2)
		}
	}
	return out
}

// UseHint recovers the high-order part of r, nudged up or down when the
// hint bit is set. The high part wraps modulo 16 or 44 depending on gamma2.
func UseHint(h, r, gamma2 int32) int32 {
	r1, r0 := Decompose(r, gamma2)
	if h == 0 {
		return r1
	}

	if gamma2 == Gamma2QMinus1Div32 {
		if r0 > 0 {
			return (r1 + 1) & 15
		}
		return (r1 - 1) & 15
	}
	// modulus 44 wraparound
	if r0 > 0 {
		if r1 == 43 {
			return 0
		}
		return r1 + 1
	}
	if r1 == 0 {
		return 43
	}
	return r1 - 1
}

// VecUseHint applies UseHint entry-wise.
func VecUseHint(h, v Vec, gamma2 int32) Vec {
	out := NewVec(len(v))
	for i := range v {
		for j := range v[i] {
			out[i][j] = UseHint(h[i][j], v[i][j], gamma2)
		}
	}
	return out
}
