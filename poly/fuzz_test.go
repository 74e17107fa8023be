package poly

import (
	"bytes"
	"testing"
)

func FuzzUnpackHint(f *testing.F) {
	const k, omega = 4, 80

	f.Add([]byte{})
	f.Add(make([]byte, omega+k))
	valid := make([]byte, omega+k)
	valid[0] = 3
	valid[1] = 17
	valid[omega] = 1
	valid[omega+1] = 2
	valid[omega+2] = 2
	valid[omega+3] = 2
	f.Add(valid)
	f.Add(bytes.Repeat([]byte{0xFF}, omega+k))

	f.Fuzz(func(t *testing.T, data []byte) {
		v, ok := UnpackHint(data, k, omega)
		if !ok {
			return
		}
		// accepted encodings are canonical: repacking reproduces the input
		if got := PackHint(v, omega); !bytes.Equal(got, data) {
			t.Errorf("repacked hint differs from accepted input")
		}
	})
}

func FuzzUnpackEta(f *testing.F) {
	f.Add([]byte{}, int32(2))
	f.Add(make([]byte, PackedEta2Size), int32(2))
	f.Add(make([]byte, PackedEta4Size), int32(4))
	f.Add(bytes.Repeat([]byte{0x24}, PackedEta2Size), int32(2))
	f.Add(bytes.Repeat([]byte{0x18}, PackedEta4Size), int32(4))
	f.Add(bytes.Repeat([]byte{0xFF}, PackedEta4Size), int32(4))

	f.Fuzz(func(t *testing.T, data []byte, etaSel int32) {
		eta := etaSel
		if eta != 2 && eta != 4 {
			eta = 2
		}
		p, ok := UnpackEta(data, eta)
		if !ok {
			return
		}
		for i, c := range p {
			if InfinityNorm(Poly{c}) > eta {
				t.Fatalf("accepted coefficient %d has magnitude above eta", i)
			}
		}
		if got := PackEta(p, eta); !bytes.Equal(got, data) {
			t.Errorf("repacked short vector differs from accepted input")
		}
	})
}

func FuzzChallengeStream(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, 8))
	seed := make([]byte, 8+64)
	for i := range seed {
		seed[i] = byte(i * 7)
	}
	f.Add(seed)

	f.Fuzz(func(t *testing.T, data []byte) {
		c, err := Challenge(bytes.NewReader(data), 39)
		if err != nil {
			return
		}
		nonzero := 0
		for _, coeff := range c {
			switch coeff {
			case 0:
			case 1, Q - 1:
				nonzero++
			default:
				t.Fatal("challenge coefficient outside {0, +1, -1}")
			}
		}
		if nonzero != 39 {
			t.Errorf("challenge has %d nonzero coefficients, want 39", nonzero)
		}
	})
}
