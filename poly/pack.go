package poly

// Packed byte lengths for one polynomial under each codec.
const (
	// PackedT1Size holds 10-bit high-order public coefficients.
	PackedT1Size = N * 10 / 8
	// PackedT0Size holds D-bit centered low-order coefficients.
	PackedT0Size = N * D / 8
	// PackedEta2Size holds 3-bit coefficients in [-2, 2].
	PackedEta2Size = N * 3 / 8
	// PackedEta4Size holds 4-bit coefficients in [-4, 4].
	PackedEta4Size = N / 2
	// PackedZ18Size holds 18-bit coefficients for gamma1 = 2^17.
	PackedZ18Size = N * 18 / 8
	// PackedZ20Size holds 20-bit coefficients for gamma1 = 2^19.
	PackedZ20Size = N * 20 / 8
	// PackedW1Size6 holds 6-bit high parts for gamma2 = (Q-1)/88.
	PackedW1Size6 = N * 6 / 8
	// PackedW1Size4 holds 4-bit high parts for gamma2 = (Q-1)/32.
	PackedW1Size4 = N / 2
)

// PackT1 packs 10-bit coefficients, four per five bytes.
// Every coefficient must lie in [0, 2^10).
func PackT1(f Poly) []byte {
	b := make([]byte, PackedT1Size)
	for i := 0; i < N; i += 4 {
		x := uint64(f[i]) | uint64(f[i+1])<<10 | uint64(f[i+2])<<20 | uint64(f[i+3])<<30
		b[i/4*5] = byte(x)
		b[i/4*5+1] = byte(x >> 8)
		b[i/4*5+2] = byte(x >> 16)
		b[i/4*5+3] = byte(x >> 24)
		b[i/4*5+4] = byte(x >> 32)
	}
	return b
}

// UnpackT1 reverses PackT1. b must be PackedT1Size bytes.
func UnpackT1(b []byte) Poly {
	var f Poly
	for i := 0; i < N; i += 4 {
		x := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 | uint64(b[4])<<32
		f[i] = int32(x & 0x3FF)
		f[i+1] = int32((x >> 10) & 0x3FF)
		f[i+2] = int32((x >> 20) & 0x3FF)
		f[i+3] = int32((x >> 30) & 0x3FF)
		b = b[5:]
	}
	return f
}

// PackT0 packs D-bit coefficients centered at 2^(D-1), eight per
// thirteen bytes. Coefficients must be field values of the centered range
// (-2^(D-1), 2^(D-1)].
func PackT0(f Poly) []byte {
	b := make([]byte, PackedT0Size)
	const center = 1 << (D - 1)
	idx := 0
	for i := 0; i < N; i += 8 {
		var x1, x2 uint64
		x1 = uint64(subMod(center, f[i]))
		x1 |= uint64(subMod(center, f[i+1])) << 13
		x1 |= uint64(subMod(center, f[i+2])) << 26
		x1 |= uint64(subMod(center, f[i+3])) << 39
		a := uint64(subMod(center, f[i+4]))
		x1 |= a << 52
		x2 = a >> 12
		x2 |= uint64(subMod(center, f[i+5])) << 1
		x2 |= uint64(subMod(center, f[i+6])) << 14
		x2 |= uint64(subMod(center, f[i+7])) << 27

		b[idx] = byte(x1)
		b[idx+1] = byte(x1 >> 8)
		b[idx+2] = byte(x1 >> 16)
		b[idx+3] = byte(x1 >> 24)
		b[idx+4] = byte(x1 >> 32)
		b[idx+5] = byte(x1 >> 40)
		b[idx+6] = byte(x1 >> 48)
		b[idx+7] = byte(x1 >> 56)
		b[idx+8] = byte(x2)
		b[idx+9] = byte(x2 >> 8)
		b[idx+10] = byte(x2 >> 16)
		b[idx+11] = byte(x2 >> 24)
		b[idx+12] = byte(x2 >> 32)
		idx += 13
	}
	return b
}

// UnpackT0 reverses PackT0. b must be PackedT0Size bytes.
func UnpackT0(b []byte) Poly {
	var f Poly
	const center = 1 << (D - 1)
	const mask = (1 << D) - 1
	for i := 0; i < N; i += 8 {
		x1 := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
		x2 := uint64(b[8]) | uint64(b[9])<<8 | uint64(b[10])<<16 | uint64(b[11])<<24 | uint64(b[12])<<32
		b = b[13:]

		f[i] = subMod(center, int32(x1&mask))
		f[i+1] = subMod(center, int32((x1>>13)&mask))
		f[i+2] = subMod(center, int32((x1>>26)&mask))
		f[i+3] = subMod(center, int32((x1>>39)&mask))
		f[i+4] = subMod(center, int32(((x1>>52)|(x2<<12))&mask))
		f[i+5] = subMod(center, int32((x2>>1)&mask))
		f[i+6] = subMod(center, int32((x2>>14)&mask))
		f[i+7] = subMod(center, int32((x2>>27)&mask))
	}
	return f
}

// PackEta packs coefficients in [-eta, eta]: three bits each for eta 2,
// four bits each for eta 4.
func PackEta(f Poly, eta int32) []byte {
	if eta == 4 {
		b := make([]byte, PackedEta4Size)
		for i := 0; i < N; i += 2 {
			b[i/2] = byte(subMod(4, f[i])) | byte(subMod(4, f[i+1]))<<4
		}
		return b
	}
	b := make([]byte, PackedEta2Size)
	for i := 0; i < N; i += 8 {
		var x uint32
		for j := 0; j < 8; j++ {
			x |= uint32(subMod(2, f[i+j])) << (3 * j)
		}
		b[i/8*3] = byte(x)
		b[i/8*3+1] = byte(x >> 8)
		b[i/8*3+2] = byte(x >> 16)
	}
	return b
}

// UnpackEta reverses PackEta, rejecting wrong-length buffers and
// encodings with any group outside the legal range. The range check is a
// branch-free mask over each block.
func UnpackEta(b []byte, eta int32) (Poly, bool) {
	var f Poly
	if eta == 4 {
		if len(b) != PackedEta4Size {
			return Poly{}, false
		}
		for i := 0; i < N; i += 8 {
			x := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
			// any nibble above 8 has a set high bit alongside a low bit
			msbs := x & 0x88888888
			mask := (msbs >> 1) | (msbs >> 2) | (msbs >> 3)
			if mask&x != 0 {
				return Poly{}, false
			}
			b = b[4:]
			for j := 0; j < 8; j++ {
				f[i+j] = subMod(4, int32((x>>(4*j))&0xF))
			}
		}
		return f, true
	}
	if len(b) != PackedEta2Size {
		return Poly{}, false
	}
	for i := 0; i < N; i += 8 {
		x := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		// any 3-bit group above 4 has the top bit set with another bit
		msbs := x & 0o44444444
		mask := (msbs >> 1) | (msbs >> 2)
		if mask&x != 0 {
			return Poly{}, false
		}
		b = b[3:]
		for j := 0; j < 8; j++ {
			f[i+j] = subMod(2, int32((x>>(3*j))&0x7))
		}
	}
	return f, true
}

// PackZ packs coefficients in [-gamma1+1, gamma1] as gamma1Bits+1 bit
// offsets from gamma1.
func PackZ(f Poly, gamma1Bits int) []byte {
	if gamma1Bits == 19 {
		return packZ20(f)
	}
	return packZ18(f)
}

// UnpackZ reverses PackZ. Out-of-range offsets wrap modulo Q; callers
// enforce the norm bound separately.
func UnpackZ(b []byte, gamma1Bits int) Poly {
	if gamma1Bits == 19 {
		return unpackZ20(b)
	}
	return unpackZ18(b)
}

func packZ18(f Poly) []byte {
	b := make([]byte, PackedZ18Size)
	const gamma1 = 1 << 17
	idx := 0
	for i := 0; i < N; i += 4 {
		var x1, x2 uint64
		x1 = uint64(subMod(gamma1, f[i]))
		x1 |= uint64(subMod(gamma1, f[i+1])) << 18
		x1 |= uint64(subMod(gamma1, f[i+2])) << 36
		x2 = uint64(subMod(gamma1, f[i+3]))
		x1 |= x2 << 54
		x2 >>= 10

		b[idx] = byte(x1)
		b[idx+1] = byte(x1 >> 8)
		b[idx+2] = byte(x1 >> 16)
		b[idx+3] = byte(x1 >> 24)
		b[idx+4] = byte(x1 >> 32)
		b[idx+5] = byte(x1 >> 40)
		b[idx+6] = byte(x1 >> 48)
		b[idx+7] = byte(x1 >> 56)
		b[idx+8] = byte(x2)
		idx += 9
	}
	return b
}

func unpackZ18(b []byte) Poly {
	var f Poly
	const gamma1 = 1 << 17
	const mask = (1 << 18) - 1
	for i := 0; i < N; i += 4 {
		x1 := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
		x2 := uint64(b[8])
		b = b[9:]
		f[i] = subMod(gamma1, int32(x1&mask))
		f[i+1] = subMod(gamma1, int32((x1>>18)&mask))
		f[i+2] = subMod(gamma1, int32((x1>>36)&mask))
		f[i+3] = subMod(gamma1, int32(((x1>>54)|(x2<<10))&mask))
	}
	return f
}

func packZ20(f Poly) []byte {
	b := make([]byte, PackedZ20Size)
	const gamma1 = 1 << 19
	idx := 0
	for i := 0; i < N; i += 4 {
		var x1, x2 uint64
		x1 = uint64(subMod(gamma1, f[i]))
		x1 |= uint64(subMod(gamma1, f[i+1])) << 20
		x1 |= uint64(subMod(gamma1, f[i+2])) << 40
		x2 = uint64(subMod(gamma1, f[i+3]))
		x1 |= x2 << 60
		x2 >>= 4

		b[idx] = byte(x1)
		b[idx+1] = byte(x1 >> 8)
		b[idx+2] = byte(x1 >> 16)
		b[idx+3] = byte(x1 >> 24)
		b[idx+4] = byte(x1 >> 32)
		b[idx+5] = byte(x1 >> 40)
		b[idx+6] = byte(x1 >> 48)
		b[idx+7] = byte(x1 >> 56)
		b[idx+8] = byte(x2)
		b[idx+9] = byte(x2 >> 8)
		idx += 10
	}
	return b
}

func unpackZ20(b []byte) Poly {
	var f Poly
	const gamma1 = 1 << 19
	const mask = (1 << 20) - 1
	for i := 0; i < N; i += 4 {
		x1 := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
		x2 := uint64(b[8]) | uint64(b[9])<<8
		b = b[10:]
		f[i] = subMod(gamma1, int32(x1&mask))
		f[i+1] = subMod(gamma1, int32((x1>>20)&mask))
		f[i+2] = subMod(gamma1, int32((x1>>40)&mask))
		f[i+3] = subMod(gamma1, int32(((x1>>60)|(x2<<4))&mask))
	}
	return f
}

// PackW1 packs high-order parts: six bits each when gamma2 is (Q-1)/88
// (values below 44), four bits each when gamma2 is (Q-1)/32 (values
// below 16). Only ever hashed, so no unpacker exists.
func PackW1(f Poly, gamma2 int32) []byte {
	if gamma2 == Gamma2QMinus1Div88 {
		b := make([]byte, PackedW1Size6)
		for i := 0; i < N; i += 4 {
			x := uint32(f[i]) | uint32(f[i+1])<<6 | uint32(f[i+2])<<12 | uint32(f[i+3])<<18
			b[i/4*3] = byte(x)
			b[i/4*3+1] = byte(x >> 8)
			b[i/4*3+2] = byte(x >> 16)
		}
		return b
	}
	b := make([]byte, PackedW1Size4)
	for i := 0; i < N; i += 2 {
		b[i/2] = byte(f[i]) | byte(f[i+1])<<4
	}
	return b
}

// PackHint encodes a 0/1 hint vector as omega position bytes followed by
// k cumulative counts. v must have weight at most omega.
func PackHint(v Vec, omega int) []byte {
	k := len(v)
	b := make([]byte, omega+k)
	idx := 0
	for i := 0; i < k; i++ {
		for j := 0; j < N; j++ {
			if v[i][j] != 0 {
				b[idx] = byte(j)
				idx++
			}
		}
		b[omega+i] = byte(idx)
	}
	return b
}

// UnpackHint reverses PackHint, enforcing monotone cumulative counts,
// strictly ascending positions within each polynomial and a zeroed tail.
// Any violation reports false.
func UnpackHint(b []byte, k, omega int) (Vec, bool) {
	if len(b) != omega+k {
		return nil, false
	}
	v := NewVec(k)
	idx := 0
	for i := 0; i < k; i++ {
		limit := int(b[omega+i])
		if limit < idx || limit > omega {
			return nil, false
		}
		prev := idx
		for ; idx < limit; idx++ {
			pos := b[idx]
			if idx > prev && b[idx-1] >= pos {
				return nil, false
			}
			v[i][pos] = 1
		}
	}
	for ; idx < omega; idx++ {
		if b[idx] != 0 {
			return nil, false
		}
	}
	return v, true
}
