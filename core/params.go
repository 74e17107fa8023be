// Package core provides parameter sets and validation for QUILL.
package core

import (
	"errors"
	"fmt"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/poly"
)

// Quill128Params is the parameter set for 128-bit post-quantum security.
var Quill128Params = quill.ParameterSet{
	Level:      quill.Quill128,
	K:          4,
	L:          4,
	Eta:        2,
	Tau:        39,
	Beta:       78,
	Gamma1:     1 << 17,
	Gamma1Bits: 17,
	Gamma2:     poly.Gamma2QMinus1Div88,
	Omega:      80,
	CTildeSize: 32,
}

// Quill192Params is the parameter set for 192-bit post-quantum security.
var Quill192Params = quill.ParameterSet{
	Level:      quill.Quill192,
	K:          6,
	L:          5,
	Eta:        4,
	Tau:        49,
	Beta:       196,
	Gamma1:     1 << 19,
	Gamma1Bits: 19,
	Gamma2:     poly.Gamma2QMinus1Div32,
	Omega:      55,
	CTildeSize: 48,
}

// Quill256Params is the parameter set for 256-bit post-quantum security.
var Quill256Params = quill.ParameterSet{
	Level:      quill.Quill256,
	K:          8,
	L:          7,
	Eta:        2,
	Tau:        60,
	Beta:       120,
	Gamma1:     1 << 19,
	Gamma1Bits: 19,
	Gamma2:     poly.Gamma2QMinus1Div32,
	Omega:      75,
	CTildeSize: 64,
}

// GetParams returns the parameter set for the given security level.
func GetParams(level quill.SecurityLevel) (quill.ParameterSet, error) {
	switch level {
	case quill.Quill128:
		return Quill128Params, nil
	case quill.Quill192:
		return Quill192Params, nil
	case quill.Quill256:
		return Quill256Params, nil
	default:
		return quill.ParameterSet{}, fmt.Errorf("%w: %q", quill.ErrInvalidParameterSet, level)
	}
}

// ValidateParams validates the parameter set for security and consistency.
func ValidateParams(params quill.ParameterSet) error {
	if params.K <= 0 || params.L <= 0 {
		return errors.New("vector dimensions must be positive")
	}
	if params.K < params.L {
		return errors.New("public dimension k must be at least the secret dimension l")
	}
	if !isPrime(poly.Q) {
		return errors.New("ring modulus must be prime")
	}
	if params.Eta != 2 && params.Eta != 4 {
		return errors.New("eta must be 2 or 4")
	}
	if params.Tau <= 0 || params.Tau > 64 {
		return errors.New("tau must be in [1, 64]")
	}
	if params.Beta != int32(params.Tau)*params.Eta {
		return errors.New("beta must equal tau * eta")
	}
	if params.Gamma1Bits != 17 && params.Gamma1Bits != 19 {
		return errors.New("gamma1 must be 2^17 or 2^19")
	}
	if params.Gamma1 != 1<<params.Gamma1Bits {
		return errors.New("gamma1 must match gamma1Bits")
	}
	if params.Gamma2 != poly.Gamma2QMinus1Div88 && params.Gamma2 != poly.Gamma2QMinus1Div32 {
		return errors.New("gamma2 must be (q-1)/88 or (q-1)/32")
	}
	if params.Gamma1-params.Beta <= 0 || params.Gamma2-params.Beta <= 0 {
		return errors.New("rejection bounds must stay positive")
	}
	if params.Omega <= 0 || params.Omega > 255 {
		return errors.New("omega must fit the one-byte hint counts")
	}
	if params.CTildeSize < 32 || params.CTildeSize > 64 {
		return errors.New("challenge hash size must be in [32, 64] bytes")
	}
	return nil
}

// isPrime checks if a number is prime using simple trial division.
// This validates the fixed modulus, not large prime generation.
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
