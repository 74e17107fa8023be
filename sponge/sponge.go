// Package sponge implements the sponge construction over Keccak-f[1600],
// providing the SHAKE128 and SHAKE256 extendable-output functions.
//
// An XOF moves through two one-way phases: absorbing and squeezing. The
// first squeeze applies the SHAKE domain-separation suffix and the
// multi-rate padding, permutes once, and from then on the state only emits;
// absorbing into a squeezing XOF is an error. Output is a prefix-stable
// stream: reading n bytes then m bytes equals reading n+m bytes at once.
package sponge

import (
	"sync"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/keccak"
)

const (
	// Rate128 is the SHAKE128 block size in bytes (capacity 256 bits).
	Rate128 = keccak.StateSize - 32
	// Rate256 is the SHAKE256 block size in bytes (capacity 512 bits).
	Rate256 = keccak.StateSize - 64

	// domainShake is the SHAKE domain-separation suffix, OR'd into the
	// first byte after the absorbed input.
	domainShake = 0x1F
)

// XOF is an incremental sponge hash with variable-length output.
// The zero value is not usable; construct with NewShake256 or NewShake128.
type XOF struct {
	state     keccak.State
	buf       []byte // rate-sized block buffer
	rate      int
	cursor    int  // bytes buffered (absorbing) or consumed (squeezing)
	squeezing bool // set on first squeeze, cleared only by Reset
}

// NewShake256 returns a fresh SHAKE256 XOF (136-byte rate).
func NewShake256() *XOF {
	return &XOF{buf: make([]byte, Rate256), rate: Rate256}
}

// NewShake128 returns a fresh SHAKE128 XOF (168-byte rate).
func NewShake128() *XOF {
	return &XOF{buf: make([]byte, Rate128), rate: Rate128}
}

// Absorb feeds p into the sponge. Input may be chunked arbitrarily across
// calls; the result depends only on the concatenation of all absorbed
// bytes. Returns ErrInvalidState once squeezing has begun.
func (x *XOF) Absorb(p []byte) error {
	if x.squeezing {
		return quill.ErrInvalidState
	}
	for len(p) > 0 {
		n := copy(x.buf[x.cursor:x.rate], p)
		x.cursor += n
		p = p[n:]
		if x.cursor == x.rate {
			x.state.XORIn(x.buf[:x.rate])
			x.state.Permute()
			x.cursor = 0
		}
	}
	return nil
}

// pad closes the absorbing phase: domain suffix at the cursor, terminal
// padding bit at the end of the rate, one permutation, first output block.
func (x *XOF) pad() {
	for i := x.cursor; i < x.rate; i++ {
		x.buf[i] = 0
	}
	x.buf[x.cursor] |= domainShake
	x.buf[x.rate-1] |= 0x80
	x.state.XORIn(x.buf[:x.rate])
	x.state.Permute()
	x.state.CopyOut(x.buf[:x.rate])
	x.cursor = 0
	x.squeezing = true
}

// Read fills p with output bytes, transitioning to the squeezing phase on
// first use. It always returns len(p), nil and so satisfies io.Reader with
// an inexhaustible stream.
func (x *XOF) Read(p []byte) (int, error) {
	if !x.squeezing {
		x.pad()
	}
	read := 0
	for read < len(p) {
		if x.cursor == x.rate {
			x.state.Permute()
			x.state.CopyOut(x.buf[:x.rate])
			x.cursor = 0
		}
		n := copy(p[read:], x.buf[x.cursor:x.rate])
		x.cursor += n
		read += n
	}
	return read, nil
}

// Squeeze returns the next length output bytes.
func (x *XOF) Squeeze(length int) []byte {
	out := make([]byte, length)
	x.Read(out)
	return out
}

// Reset returns the XOF to a fresh absorbing state.
func (x *XOF) Reset() {
	x.state.Reset()
	x.cursor = 0
	x.squeezing = false
}

// Rate returns the block size in bytes.
func (x *XOF) Rate() int {
	return x.rate
}

// =============================================================================
// Package-level conveniences
// =============================================================================

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return NewShake256()
	},
}

// Hash computes SHAKE256 of input with the requested output length.
// Equivalent to Absorb followed by Squeeze on a fresh XOF.
func Hash(input []byte, outputLength int) []byte {
	out := make([]byte, outputLength)
	Shake256Into(out, input)
	return out
}

// Shake256Into fills out with SHAKE256 of the concatenation of inputs.
// Reuses pooled states to avoid per-call allocation of the sponge.
func Shake256Into(out []byte, inputs ...[]byte) {
	x := shake256Pool.Get().(*XOF)
	defer func() {
		x.Reset()
		shake256Pool.Put(x)
	}()
	for _, in := range inputs {
		x.Absorb(in)
	}
	x.Read(out)
}
