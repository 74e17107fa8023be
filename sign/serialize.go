package sign

import (
	"fmt"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/core"
	"github.com/quillpq/quill-go/poly"
)

// ============================================================================
// Wire formats
// ============================================================================
//
// All three formats are fixed-size for a given security level, with no
// framing or version bytes. Deserializers therefore take the expected
// level and reject buffers of any other length.

// SerializePublicKey encodes a public key as rho followed by the packed
// t1 vector. The key must be well formed, as produced by key generation
// or DeserializePublicKey.
func SerializePublicKey(pk *quill.PublicKey) []byte {
	out := make([]byte, 0, pk.Params.PublicKeySize())
	out = append(out, pk.Rho...)
	out = append(out, packT1Vec(pk.T1)...)
	return out
}

// DeserializePublicKey parses a public key serialized for the given
// security level.
func DeserializePublicKey(data []byte, level quill.SecurityLevel) (*quill.PublicKey, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}
	if len(data) != params.PublicKeySize() {
		return nil, fmt.Errorf("%w: public key for %s must be %d bytes, got %d",
			quill.ErrInvalidInput, params.Level, params.PublicKeySize(), len(data))
	}

	rho := append([]byte{}, data[:quill.SeedSize]...)

	t1 := poly.NewVec(params.K)
	off := quill.SeedSize
	for i := range t1 {
		t1[i] = poly.UnpackT1(data[off : off+poly.PackedT1Size])
		off += poly.PackedT1Size
	}

	return &quill.PublicKey{
		Rho:    rho,
		T1:     t1,
		Params: params,
	}, nil
}

// SerializeSecretKey encodes a secret key as rho, key, tr, the packed
// short vectors s1 and s2, and the packed t0 vector. The output contains
// the full signing secret; callers should zeroize it after use.
func SerializeSecretKey(sk *quill.SecretKey) []byte {
	params := sk.Params
	out := make([]byte, 0, params.SecretKeySize())
	out = append(out, sk.Rho...)
	out = append(out, sk.Key...)
	out = append(out, sk.Tr...)
	for i := range sk.S1 {
		out = append(out, poly.PackEta(sk.S1[i], params.Eta)...)
	}
	for i := range sk.S2 {
		out = append(out, poly.PackEta(sk.S2[i], params.Eta)...)
	}
	for i := range sk.T0 {
		out = append(out, poly.PackT0(sk.T0[i])...)
	}
	return out
}

// DeserializeSecretKey parses a secret key serialized for the given
// security level. Short-vector coefficients outside [-eta, eta] are
// rejected.
func DeserializeSecretKey(data []byte, level quill.SecurityLevel) (*quill.SecretKey, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}
	if len(data) != params.SecretKeySize() {
		return nil, fmt.Errorf("%w: secret key for %s must be %d bytes, got %d",
			quill.ErrInvalidInput, params.Level, params.SecretKeySize(), len(data))
	}

	rho := append([]byte{}, data[:quill.SeedSize]...)
	key := append([]byte{}, data[quill.SeedSize:2*quill.SeedSize]...)
	tr := append([]byte{}, data[2*quill.SeedSize:3*quill.SeedSize]...)
	off := 3 * quill.SeedSize

	etaSize := params.PackedEtaSize()
	s1 := poly.NewVec(params.L)
	for i := range s1 {
		f, ok := poly.UnpackEta(data[off:off+etaSize], params.Eta)
		if !ok {
			return nil, fmt.Errorf("%w: s1 coefficient out of range", quill.ErrInvalidInput)
		}
		s1[i] = f
		off += etaSize
	}
	s2 := poly.NewVec(params.K)
	for i := range s2 {
		f, ok := poly.UnpackEta(data[off:off+etaSize], params.Eta)
		if !ok {
			return nil, fmt.Errorf("%w: s2 coefficient out of range", quill.ErrInvalidInput)
		}
		s2[i] = f
		off += etaSize
	}
	t0 := poly.NewVec(params.K)
	for i := range t0 {
		t0[i] = poly.UnpackT0(data[off : off+poly.PackedT0Size])
		off += poly.PackedT0Size
	}

	return &quill.SecretKey{
		Rho:    rho,
		Key:    key,
		Tr:     tr,
		S1:     s1,
		S2:     s2,
		T0:     t0,
		Params: params,
	}, nil
}

// SerializeSignature encodes a signature as the challenge hash, the
// packed response vector and the packed hint. The signature must be well
// formed, as produced by Sign or DeserializeSignature.
func SerializeSignature(sig *quill.Signature, params quill.ParameterSet) []byte {
	out := make([]byte, 0, params.SignatureSize())
	out = append(out, sig.CTilde...)
	for i := range sig.Z {
		out = append(out, poly.PackZ(sig.Z[i], params.Gamma1Bits)...)
	}
	out = append(out, poly.PackHint(sig.Hint, params.Omega)...)
	return out
}

// DeserializeSignature parses a signature serialized for the given
// security level. Malformed hint encodings are rejected; response norms
// are checked by Verify, not here.
func DeserializeSignature(data []byte, level quill.SecurityLevel) (*quill.Signature, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}
	if len(data) != params.SignatureSize() {
		return nil, fmt.Errorf("%w: signature for %s must be %d bytes, got %d",
			quill.ErrInvalidInput, params.Level, params.SignatureSize(), len(data))
	}

	cTilde := append([]byte{}, data[:params.CTildeSize]...)
	off := params.CTildeSize

	zSize := params.PackedZSize()
	z := poly.NewVec(params.L)
	for i := range z {
		z[i] = poly.UnpackZ(data[off:off+zSize], params.Gamma1Bits)
		off += zSize
	}

	hint, ok := poly.UnpackHint(data[off:], params.K, params.Omega)
	if !ok {
		return nil, fmt.Errorf("%w: malformed hint encoding", quill.ErrInvalidInput)
	}

	return &quill.Signature{
		CTilde: cTilde,
		Z:      z,
		Hint:   hint,
	}, nil
}

// packT1Vec concatenates the 10-bit packing of each polynomial in v.
func packT1Vec(v poly.Vec) []byte {
	out := make([]byte, 0, len(v)*poly.PackedT1Size)
	for i := range v {
		out = append(out, poly.PackT1(v[i])...)
	}
	return out
}

// packW1Vec concatenates the packed high-bits representation of each
// polynomial in v. The per-coefficient width depends on gamma2.
func packW1Vec(v poly.Vec, gamma2 int32) []byte {
	size := poly.PackedW1Size4
	if gamma2 == poly.Gamma2QMinus1Div88 {
		size = poly.PackedW1Size6
	}
	out := make([]byte, 0, len(v)*size)
	for i := range v {
		out = append(out, poly.PackW1(v[i], gamma2)...)
	}
	return out
}
