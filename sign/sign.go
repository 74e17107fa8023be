// Package sign implements the digital signature scheme for QUILL.
package sign

import (
	"fmt"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/core"
	"github.com/quillpq/quill-go/poly"
	"github.com/quillpq/quill-go/sponge"
	"github.com/quillpq/quill-go/utils"
)

const (
	// maxSignAttempts bounds the rejection loop. Expected attempts are in
	// the low single digits for every parameter set, so exhausting the
	// budget indicates a broken key or a hostile environment.
	maxSignAttempts = 256

	// muSize is the byte length of the message representative.
	muSize = 64
	// rndSize is the byte length of the per-signature hedge.
	rndSize = 32
	// rhoPrimeSize is the byte length of the mask derivation seed.
	rhoPrimeSize = 64
)

// GenerateKeyPair generates a signature key pair for the given security
// level using fresh system randomness.
func GenerateKeyPair(level quill.SecurityLevel) (*quill.KeyPair, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}

	seed, err := utils.SecureRandomBytes(quill.KeyPairSeedSize)
	if err != nil {
		return nil, err
	}

	kp, err := GenerateKeyPairFromSeed(params, seed)
	utils.Zeroize(seed)
	return kp, err
}

// GenerateKeyPairFromSeed generates a deterministic signature key pair
// from a 64-byte seed. The same seed and parameters always produce the
// same key pair.
func GenerateKeyPairFromSeed(params quill.ParameterSet, seed []byte) (*quill.KeyPair, error) {
	if len(seed) != quill.KeyPairSeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes", quill.ErrInvalidInput, quill.KeyPairSeedSize)
	}
	if err := utils.ValidateSeedEntropy(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", quill.ErrInvalidInput, err)
	}

	// Domain-separate the seed expansion by the matrix dimensions, then
	// split into the matrix seed, the secret sampling seed and the
	// signing seed.
	expanded := make([]byte, 2*quill.SeedSize+muSize)
	sponge.Shake256Into(expanded, seed, []byte{byte(params.K), byte(params.L)})
	defer utils.Zeroize(expanded)

	rho := append([]byte{}, expanded[:quill.SeedSize]...)
	sigma := expanded[quill.SeedSize : quill.SeedSize+muSize]
	key := append([]byte{}, expanded[quill.SeedSize+muSize:]...)

	a, err := ExpandMatrix(rho, params.K, params.L)
	if err != nil {
		return nil, err
	}

	s1, s2, err := expandSecrets(sigma, params)
	if err != nil {
		return nil, err
	}

	t := poly.VecAdd(poly.MatVecMul(a, s1), s2)
	t1, t0 := poly.VecPower2Round(t)
	t.Zeroize()

	tr := make([]byte, quill.SeedSize)
	sponge.Shake256Into(tr, rho, packT1Vec(t1))

	publicKey := quill.PublicKey{
		Rho:    append([]byte{}, rho...),
		T1:     t1,
		Params: params,
	}
	secretKey := quill.SecretKey{
		Rho:    rho,
		Key:    key,
		Tr:     tr,
		S1:     s1,
		S2:     s2,
		T0:     t0,
		Params: params,
	}

	return &quill.KeyPair{
		PublicKey: publicKey,
		SecretKey: secretKey,
	}, nil
}

// ExpandMatrix derives the public k x l matrix from rho, one uniform
// rejection-sampled polynomial per cell, each from its own SHAKE128
// stream seeded with rho and the cell coordinates.
func ExpandMatrix(rho []byte, k, l int) (poly.Matrix, error) {
	a := make(poly.Matrix, k)
	xof := sponge.NewShake128()
	for i := 0; i < k; i++ {
		a[i] = poly.NewVec(l)
		for j := 0; j < l; j++ {
			xof.Reset()
			xof.Absorb(rho)
			xof.Absorb([]byte{byte(j), byte(i)})
			cell, err := poly.UniformPoly(xof)
			if err != nil {
				return nil, err
			}
			a[i][j] = cell
		}
	}
	return a, nil
}

// expandSecrets samples s1 (l polynomials) and s2 (k polynomials) with
// coefficients in [-eta, eta], one SHAKE256 stream per polynomial keyed
// by a 16-bit nonce.
func expandSecrets(sigma []byte, params quill.ParameterSet) (s1, s2 poly.Vec, err error) {
	s1 = poly.NewVec(params.L)
	s2 = poly.NewVec(params.K)

	xof := sponge.NewShake256()
	for i := 0; i < params.L+params.K; i++ {
		xof.Reset()
		xof.Absorb(sigma)
		xof.Absorb([]byte{byte(i), byte(i >> 8)})
		f, ferr := poly.BoundedPoly(xof, params.Eta)
		if ferr != nil {
			s1.Zeroize()
			s2.Zeroize()
			return nil, nil, ferr
		}
		if i < params.L {
			s1[i] = f
		} else {
			s2[i-params.L] = f
		}
	}
	return s1, s2, nil
}

// Sign creates a signature for a message. Each call hedges the
// deterministic derivation with fresh randomness, so two signatures over
// the same message differ.
func Sign(sk *quill.SecretKey, message []byte) (*quill.Signature, error) {
	rnd, err := utils.SecureRandomBytes(rndSize)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(rnd)
	return signWithRnd(sk, message, rnd)
}

// SignDeterministic creates a signature with the hedge fixed to zero:
// the same key and message always produce the same signature.
func SignDeterministic(sk *quill.SecretKey, message []byte) (*quill.Signature, error) {
	return signWithRnd(sk, message, make([]byte, rndSize))
}

func signWithRnd(sk *quill.SecretKey, message []byte, rnd []byte) (*quill.Signature, error) {
	if err := validateSecretKey(sk); err != nil {
		return nil, err
	}
	params := sk.Params

	a, err := ExpandMatrix(sk.Rho, params.K, params.L)
	if err != nil {
		return nil, err
	}

	mu := make([]byte, muSize)
	sponge.Shake256Into(mu, sk.Tr, message)

	rhoPrime := make([]byte, rhoPrimeSize)
	sponge.Shake256Into(rhoPrime, sk.Key, rnd, mu)
	defer utils.Zeroize(rhoPrime)

	for attempt := 0; attempt < maxSignAttempts; attempt++ {
		sig, ok, err := signAttempt(sk, a, mu, rhoPrime, attempt)
		if err != nil {
			return nil, err
		}
		if ok {
			return sig, nil
		}
	}
	return nil, fmt.Errorf("%w: %d attempts", quill.ErrSigningFailed, maxSignAttempts)
}

// signAttempt runs one iteration of the rejection loop. The attempt index
// feeds the mask derivation, so every iteration draws an independent
// masking vector from the same rhoPrime. A false result means the
// candidate failed a bound and the caller should retry.
func signAttempt(sk *quill.SecretKey, a poly.Matrix, mu, rhoPrime []byte, attempt int) (*quill.Signature, bool, error) {
	params := sk.Params

	y := poly.NewVec(params.L)
	defer y.Zeroize()

	xof := sponge.NewShake256()
	for i := range y {
		kappa := uint16(attempt*params.L + i)
		xof.Reset()
		xof.Absorb(rhoPrime)
		xof.Absorb([]byte{byte(kappa), byte(kappa >> 8)})
		f, err := poly.MaskPoly(xof, params.Gamma1Bits)
		if err != nil {
			return nil, false, err
		}
		y[i] = f
	}

	w := poly.MatVecMul(a, y)
	defer w.Zeroize()
	w1 := poly.VecHighBits(w, params.Gamma2)

	cTilde := make([]byte, params.CTildeSize)
	sponge.Shake256Into(cTilde, mu, packW1Vec(w1, params.Gamma2))

	xof.Reset()
	xof.Absorb(cTilde)
	c, err := poly.Challenge(xof, params.Tau)
	if err != nil {
		return nil, false, err
	}

	cs1 := poly.MulVec(c, sk.S1)
	defer cs1.Zeroize()
	z := poly.VecAdd(y, cs1)
	if poly.ExceedsBound(z, params.Gamma1-params.Beta) {
		z.Zeroize()
		return nil, false, nil
	}

	cs2 := poly.MulVec(c, sk.S2)
	defer cs2.Zeroize()
	wMinusCS2 := poly.VecSub(w, cs2)
	defer wMinusCS2.Zeroize()
	if poly.VecLowBitsNorm(wMinusCS2, params.Gamma2) >= params.Gamma2-params.Beta {
		z.Zeroize()
		return nil, false, nil
	}

	ct0 := poly.MulVec(c, sk.T0)
	defer ct0.Zeroize()
	if poly.VecInfinityNorm(ct0) >= params.Gamma2 {
		z.Zeroize()
		return nil, false, nil
	}

	hint := poly.VecMakeHint(ct0, wMinusCS2, params.Gamma2)
	if poly.Weight(hint) > params.Omega {
		z.Zeroize()
		return nil, false, nil
	}

	return &quill.Signature{
		CTilde: cTilde,
		Z:      z,
		Hint:   hint,
	}, true, nil
}

// Verify checks if a signature is valid for a message. Structurally
// malformed arguments return an error; well-formed but wrong signatures
// return false with a nil error.
func Verify(pk *quill.PublicKey, message []byte, sig *quill.Signature) (bool, error) {
	if err := validatePublicKey(pk); err != nil {
		return false, err
	}
	if err := validateSignature(sig, pk.Params); err != nil {
		return false, err
	}
	params := pk.Params

	if poly.ExceedsBound(sig.Z, params.Gamma1-params.Beta) {
		return false, nil
	}
	if poly.Weight(sig.Hint) > params.Omega {
		return false, nil
	}

	a, err := ExpandMatrix(pk.Rho, params.K, params.L)
	if err != nil {
		return false, err
	}

	t1Packed := packT1Vec(pk.T1)
	tr := make([]byte, quill.SeedSize)
	sponge.Shake256Into(tr, pk.Rho, t1Packed)

	mu := make([]byte, muSize)
	sponge.Shake256Into(mu, tr, message)

	xof := sponge.NewShake256()
	xof.Absorb(sig.CTilde)
	c, err := poly.Challenge(xof, params.Tau)
	if err != nil {
		return false, err
	}

	// w' = A*z - c*t1*2^D, then recover the committed high bits via the hint
	az := poly.MatVecMul(a, sig.Z)
	ct1 := poly.MulVec(c, poly.VecShiftD(pk.T1))
	wApprox := poly.VecSub(az, ct1)
	w1 := poly.VecUseHint(sig.Hint, wApprox, params.Gamma2)

	cTildeCheck := make([]byte, params.CTildeSize)
	sponge.Shake256Into(cTildeCheck, mu, packW1Vec(w1, params.Gamma2))

	return utils.ConstantTimeEqual(sig.CTilde, cTildeCheck), nil
}

// validateSecretKey rejects keys with missing or mis-sized fields.
func validateSecretKey(sk *quill.SecretKey) error {
	if sk == nil {
		return fmt.Errorf("%w: nil secret key", quill.ErrInvalidKey)
	}
	if err := core.ValidateParams(sk.Params); err != nil {
		return fmt.Errorf("%w: %v", quill.ErrInvalidKey, err)
	}
	if len(sk.Rho) != quill.SeedSize || len(sk.Key) != quill.SeedSize || len(sk.Tr) != quill.SeedSize {
		return fmt.Errorf("%w: seed fields must be %d bytes", quill.ErrInvalidKey, quill.SeedSize)
	}
	if len(sk.S1) != sk.Params.L || len(sk.S2) != sk.Params.K || len(sk.T0) != sk.Params.K {
		return fmt.Errorf("%w: vector dimensions do not match the parameter set", quill.ErrInvalidKey)
	}
	return nil
}

// validatePublicKey rejects keys with missing or mis-sized fields, and
// high-bit vectors outside the 10-bit packing range.
func validatePublicKey(pk *quill.PublicKey) error {
	if pk == nil {
		return fmt.Errorf("%w: nil public key", quill.ErrInvalidInput)
	}
	if err := core.ValidateParams(pk.Params); err != nil {
		return fmt.Errorf("%w: %v", quill.ErrInvalidInput, err)
	}
	if len(pk.Rho) != quill.SeedSize {
		return fmt.Errorf("%w: rho must be %d bytes", quill.ErrInvalidInput, quill.SeedSize)
	}
	if len(pk.T1) != pk.Params.K {
		return fmt.Errorf("%w: t1 dimension does not match the parameter set", quill.ErrInvalidInput)
	}
	for i := range pk.T1 {
		for _, coeff := range pk.T1[i] {
			if coeff < 0 || coeff >= 1<<10 {
				return fmt.Errorf("%w: t1 coefficient out of range", quill.ErrInvalidInput)
			}
		}
	}
	return nil
}

// validateSignature rejects signatures whose shape does not match the
// parameter set or whose coefficients sit outside the ring.
func validateSignature(sig *quill.Signature, params quill.ParameterSet) error {
	if sig == nil {
		return fmt.Errorf("%w: nil signature", quill.ErrInvalidInput)
	}
	if len(sig.CTilde) != params.CTildeSize {
		return fmt.Errorf("%w: challenge hash must be %d bytes", quill.ErrInvalidInput, params.CTildeSize)
	}
	if len(sig.Z) != params.L || len(sig.Hint) != params.K {
		return fmt.Errorf("%w: vector dimensions do not match the parameter set", quill.ErrInvalidInput)
	}
	for i := range sig.Z {
		for _, coeff := range sig.Z[i] {
			if coeff < 0 || coeff >= poly.Q {
				return fmt.Errorf("%w: z coefficient out of range", quill.ErrInvalidInput)
			}
		}
	}
	for i := range sig.Hint {
		for _, coeff := range sig.Hint[i] {
			if coeff != 0 && coeff != 1 {
				return fmt.Errorf("%w: hint coefficients must be 0 or 1", quill.ErrInvalidInput)
			}
		}
	}
	return nil
}
