// Package keccak implements the Keccak-f[1600] permutation.
//
// Only the permutation primitive lives here; the sponge construction on top
// of it (absorb/squeeze, padding, domain separation) is package sponge. The
// state is 25 64-bit lanes and every operation is fixed-width uint64 with
// wraparound semantics.
package keccak

import (
	"encoding/binary"
	"math/bits"
)

// Rounds is the round count of Keccak-f[1600].
const Rounds = 24

// StateSize is the permutation width in bytes (1600 bits).
const StateSize = 200

// roundConstants are the iota step constants, FIPS 202 order.
var roundConstants = [Rounds]uint64{
	0x0000000000000001,
	0x0000000000008082,
	0x800000000000808A,
	0x8000000080008000,
	0x000000000000808B,
	0x0000000080000001,
	0x8000000080008081,
	0x8000000000008009,
	0x000000000000008A,
	0x0000000000000088,
	0x0000000080008009,
	0x000000008000000A,
	0x000000008000808B,
	0x800000000000008B,
	0x8000000000008089,
	0x8000000000008003,
	0x8000000000008002,
	0x8000000000000080,
	0x000000000000800A,
	0x800000008000000A,
	0x8000000080008081,
	0x8000000000008080,
	0x0000000080000001,
	0x8000000080008008,
}

// rotationOffsets are the rho step rotations in the rho/pi walk order.
var rotationOffsets = [Rounds]int{
	1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14,
	27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44,
}

// piLane holds the pi step lane destinations in the same walk order.
var piLane = [Rounds]int{
	10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4,
	15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1,
}

// State is the 1600-bit permutation state as 25 lanes. Lane (x, y) sits at
// index x + 5*y; the byte view used by XORIn and CopyOut is the
// little-endian concatenation of lanes 0..24.
type State [25]uint64

// Permute applies the full 24-round Keccak-f[1600] transform in place.
func (st *State) Permute() {
	var t uint64
	var bc [5]uint64

	for r := 0; r < Rounds; r++ {
		// theta
		for i := 0; i < 5; i++ {
			bc[i] = st[i] ^ st[i+5] ^ st[i+10] ^ st[i+15] ^ st[i+20]
		}
		for i := 0; i < 5; i++ {
			t = bc[(i+4)%5] ^ bits.RotateLeft64(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				st[j+i] ^= t
			}
		}

		// rho and pi
		t = st[1]
		for i := 0; i < Rounds; i++ {
			j := piLane[i]
			bc[0] = st[j]
			st[j] = bits.RotateLeft64(t, rotationOffsets[i])
			t = bc[0]
		}

		// chi
		for j := 0; j < 25; j += 5 {
			for i := 0; i < 5; i++ {
				bc[i] = st[j+i]
			}
			for i := 0; i < 5; i++ {
				st[j+i] ^= ^bc[(i+1)%5] & bc[(i+2)%5]
			}
		}

		// iota
		st[0] ^= roundConstants[r]
	}
}

// XORIn xors p into the leading bytes of the state.
// len(p) must not exceed StateSize.
func (st *State) XORIn(p []byte) {
	i := 0
	for ; i+8 <= len(p); i += 8 {
		st[i/8] ^= binary.LittleEndian.Uint64(p[i:])
	}
	if i < len(p) {
		var lane uint64
		for j, b := range p[i:] {
			lane |= uint64(b) << (8 * j)
		}
		st[i/8] ^= lane
	}
}

// CopyOut fills p from the leading bytes of the state.
// len(p) must not exceed StateSize.
func (st *State) CopyOut(p []byte) {
	i := 0
	for ; i+8 <= len(p); i += 8 {
		binary.LittleEndian.PutUint64(p[i:], st[i/8])
	}
	if i < len(p) {
		lane := st[i/8]
		for j := range p[i:] {
			p[i+j] = byte(lane >> (8 * j))
		}
	}
}

// Reset zeroes every lane.
func (st *State) Reset() {
	for i := range st {
		st[i] = 0
	}
}
