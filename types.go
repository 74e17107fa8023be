package quill

import (
	"github.com/quillpq/quill-go/poly"
	"github.com/quillpq/quill-go/utils"
)

// SecurityLevel represents the security level of QUILL parameters.
type SecurityLevel string

const (
	// Quill128 provides 128-bit post-quantum security.
	Quill128 SecurityLevel = "QUILL-128"
	// Quill192 provides 192-bit post-quantum security.
	Quill192 SecurityLevel = "QUILL-192"
	// Quill256 provides 256-bit post-quantum security.
	Quill256 SecurityLevel = "QUILL-256"
	// Aliases with underscore for convenience
	Quill_128 SecurityLevel = Quill128
	Quill_192 SecurityLevel = Quill192
	Quill_256 SecurityLevel = Quill256
)

const (
	// SeedSize is the byte length of rho, the signing seed and tr.
	SeedSize = 32
	// KeyPairSeedSize is the byte length of the key generation input seed.
	KeyPairSeedSize = 64
)

// =============================================================================
// Parameter Types
// =============================================================================

// ParameterSet contains the complete scheme parameters for a security level.
// Values are fixed per level and never mutated after construction.
type ParameterSet struct {
	Level      SecurityLevel `json:"level"`
	K          int           `json:"k"`          // public vector dimension (rows of A)
	L          int           `json:"l"`          // secret vector dimension (columns of A)
	Eta        int32         `json:"eta"`        // secret coefficient bound
	Tau        int           `json:"tau"`        // count of +-1 entries in a challenge
	Beta       int32         `json:"beta"`       // rejection slack, tau * eta
	Gamma1     int32         `json:"gamma1"`     // masking coefficient bound
	Gamma1Bits int           `json:"gamma1Bits"` // log2(gamma1)
	Gamma2     int32         `json:"gamma2"`     // low-order rounding bound
	Omega      int           `json:"omega"`      // hint weight bound
	CTildeSize int           `json:"cTildeSize"` // challenge hash length in bytes
}

// PackedEtaSize returns the byte length of one packed eta-bounded polynomial.
func (p ParameterSet) PackedEtaSize() int {
	if p.Eta == 4 {
		return poly.PackedEta4Size
	}
	return poly.PackedEta2Size
}

// PackedZSize returns the byte length of one packed masking polynomial.
func (p ParameterSet) PackedZSize() int {
	if p.Gamma1Bits == 19 {
		return poly.PackedZ20Size
	}
	return poly.PackedZ18Size
}

// PackedW1Size returns the byte length of one packed high-bits polynomial.
func (p ParameterSet) PackedW1Size() int {
	if p.Gamma2 == poly.Gamma2QMinus1Div88 {
		return poly.PackedW1Size6
	}
	return poly.PackedW1Size4
}

// PublicKeySize returns the serialized public key length in bytes.
func (p ParameterSet) PublicKeySize() int {
	return SeedSize + p.K*poly.PackedT1Size
}

// SecretKeySize returns the serialized secret key length in bytes.
func (p ParameterSet) SecretKeySize() int {
	return 3*SeedSize + (p.L+p.K)*p.PackedEtaSize() + p.K*poly.PackedT0Size
}

// SignatureSize returns the serialized signature length in bytes.
func (p ParameterSet) SignatureSize() int {
	return p.CTildeSize + p.L*p.PackedZSize() + p.Omega + p.K
}

// =============================================================================
// Key Types
// =============================================================================

// PublicKey is the public half of a signature key pair.
type PublicKey struct {
	Rho    []byte   // 32-byte matrix expansion seed, shared with the secret key
	T1     poly.Vec // high-order commitment, k polynomials
	Params ParameterSet
}

// SecretKey is the secret half of a signature key pair.
// Call Zeroize when the key is no longer needed.
type SecretKey struct {
	Rho    []byte   // 32-byte matrix expansion seed
	Key    []byte   // 32-byte signing seed
	Tr     []byte   // 32-byte hash of (rho, t1)
	S1     poly.Vec // l polynomials, coefficients in [-eta, eta]
	S2     poly.Vec // k polynomials, coefficients in [-eta, eta]
	T0     poly.Vec // low-order commitment, k polynomials
	Params ParameterSet
}

// Zeroize overwrites all key material with zeros.
// The key must not be used afterwards.
func (sk *SecretKey) Zeroize() {
	utils.Zeroize(sk.Rho)
	utils.Zeroize(sk.Key)
	utils.Zeroize(sk.Tr)
	sk.S1.Zeroize()
	sk.S2.Zeroize()
	sk.T0.Zeroize()
}

// KeyPair contains both halves of a signature key pair.
type KeyPair struct {
	PublicKey PublicKey
	SecretKey SecretKey
}

// =============================================================================
// Signature Type
// =============================================================================

// Signature is a complete signature: the challenge hash, the bounded
// response vector and the sparse rounding hint.
type Signature struct {
	CTilde []byte   // challenge hash, CTildeSize bytes
	Z      poly.Vec // l polynomials, coefficients within (-gamma1+beta, gamma1-beta)
	Hint   poly.Vec // k polynomials with 0/1 coefficients, weight at most omega
}
