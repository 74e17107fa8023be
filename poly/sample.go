package poly

import (
	"encoding/binary"
	"io"
)

// UniformPoly draws a ring element with uniform coefficients from stream.
// Each draw takes three bytes masked to 23 bits; values at or above Q are
// discarded so the distribution stays uniform.
func UniformPoly(stream io.Reader) (Poly, error) {
	var f Poly
	var buf [3]byte
	for j := 0; j < N; {
		if _, err := io.ReadFull(stream, buf[:]); err != nil {
			return Poly{}, err
		}
		d := int32(buf[0]) | int32(buf[1])<<8 | int32(buf[2]&0x7f)<<16
		if d < Q {
			f[j] = d
			j++
		}
	}
	return f, nil
}

// BoundedPoly draws a ring element with coefficients in [-eta, eta] from
// stream, two half-byte draws per byte with rejection. Supported eta
// values are 2 and 4.
func BoundedPoly(stream io.Reader, eta int32) (Poly, error) {
	var f Poly
	var buf [1]byte
	for j := 0; j < N; {
		if _, err := io.ReadFull(stream, buf[:]); err != nil {
			return Poly{}, err
		}
		z0 := buf[0] & 0x0f
		z1 := buf[0] >> 4

		if eta == 2 {
			// draws 0..14 accepted, folded mod 5 onto [-2, 2]
			if z0 < 15 {
				f[j] = subMod(2, int32(z0%5))
				j++
			}
			if j < N && z1 < 15 {
				f[j] = subMod(2, int32(z1%5))
				j++
			}
		} else {
			// draws 0..8 accepted, mapped onto [-4, 4]
			if z0 <= 8 {
				f[j] = subMod(4, int32(z0))
				j++
			}
			if j < N && z1 <= 8 {
				f[j] = subMod(4, int32(z1))
				j++
			}
		}
	}
	return f, nil
}

// MaskPoly draws a masking polynomial with coefficients in
// [-gamma1+1, gamma1] by reading one packed block from stream and decoding
// it with the signature z codec.
func MaskPoly(stream io.Reader, gamma1Bits int) (Poly, error) {
	size := PackedZ18Size
	if gamma1Bits == 19 {
		size = PackedZ20Size
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(stream, buf); err != nil {
		return Poly{}, err
	}
	return UnpackZ(buf, gamma1Bits), nil
}

// Challenge draws the sparse challenge polynomial: exactly tau
// coefficients of +-1, the rest zero. Positions come one byte at a time
// with duplicate positions rejected; signs come from a 64-bit prelude,
// one bit consumed per placed coefficient.
func Challenge(stream io.Reader, tau int) (Poly, error) {
	var prelude [8]byte
	if _, err := io.ReadFull(stream, prelude[:]); err != nil {
		return Poly{}, err
	}
	signs := binary.LittleEndian.Uint64(prelude[:])

	var c Poly
	var buf [1]byte
	for placed := 0; placed < tau; {
		if _, err := io.ReadFull(stream, buf[:]); err != nil {
			return Poly{}, err
		}
		j := int(buf[0])
		if c[j] != 0 {
			continue
		}
		if signs&1 == 0 {
			c[j] = 1
		} else {
			c[j] = Q - 1
		}
		signs >>= 1
		placed++
	}
	return c, nil
}
