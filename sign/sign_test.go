package sign

import (
	"bytes"
	"errors"
	"testing"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/core"
	"github.com/quillpq/quill-go/poly"
)

var levels = []quill.SecurityLevel{quill.Quill128, quill.Quill192, quill.Quill256}

// testSeed returns a deterministic high-entropy key generation seed.
func testSeed(tweak byte) []byte {
	seed := make([]byte, quill.KeyPairSeedSize)
	for i := range seed {
		seed[i] = byte(i*37+11) ^ tweak
	}
	return seed
}

func TestGenerateKeyPair(t *testing.T) {
	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			kp, err := GenerateKeyPair(level)
			if err != nil {
				t.Fatalf("GenerateKeyPair failed: %v", err)
			}

			params := kp.PublicKey.Params
			if params.Level != level {
				t.Errorf("level = %s, want %s", params.Level, level)
			}
			if err := core.ValidateParams(params); err != nil {
				t.Errorf("returned params invalid: %v", err)
			}

			pk, sk := &kp.PublicKey, &kp.SecretKey
			if len(pk.Rho) != quill.SeedSize || len(sk.Rho) != quill.SeedSize {
				t.Error("rho must be 32 bytes")
			}
			if !bytes.Equal(pk.Rho, sk.Rho) {
				t.Error("public and secret rho must agree")
			}
			if len(sk.Key) != quill.SeedSize || len(sk.Tr) != quill.SeedSize {
				t.Error("key and tr must be 32 bytes")
			}
			if len(pk.T1) != params.K {
				t.Errorf("t1 has %d polynomials, want %d", len(pk.T1), params.K)
			}
			if len(sk.S1) != params.L || len(sk.S2) != params.K || len(sk.T0) != params.K {
				t.Error("secret vector dimensions do not match the parameter set")
			}

			// short vectors must respect the noise bound
			if poly.VecInfinityNorm(sk.S1) > params.Eta || poly.VecInfinityNorm(sk.S2) > params.Eta {
				t.Error("secret coefficients exceed eta")
			}
		})
	}

	if _, err := GenerateKeyPair("QUILL-512"); err == nil {
		t.Error("unknown level should fail")
	}
}

func TestGenerateKeyPairFromSeed_Deterministic(t *testing.T) {
	params, _ := core.GetParams(quill.Quill128)

	a, err := GenerateKeyPairFromSeed(params, testSeed(0))
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	b, err := GenerateKeyPairFromSeed(params, testSeed(0))
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	if !bytes.Equal(SerializePublicKey(&a.PublicKey), SerializePublicKey(&b.PublicKey)) {
		t.Error("same seed produced different public keys")
	}
	if !bytes.Equal(SerializeSecretKey(&a.SecretKey), SerializeSecretKey(&b.SecretKey)) {
		t.Error("same seed produced different secret keys")
	}

	c, err := GenerateKeyPairFromSeed(params, testSeed(1))
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if bytes.Equal(SerializePublicKey(&a.PublicKey), SerializePublicKey(&c.PublicKey)) {
		t.Error("different seeds produced the same public key")
	}

	// the same seed under a different level gives an unrelated key
	params192, _ := core.GetParams(quill.Quill192)
	d, err := GenerateKeyPairFromSeed(params192, testSeed(0))
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if bytes.Equal(a.PublicKey.Rho, d.PublicKey.Rho) {
		t.Error("matrix seed must depend on the parameter dimensions")
	}
}

func TestGenerateKeyPairFromSeed_InvalidSeed(t *testing.T) {
	params, _ := core.GetParams(quill.Quill128)

	for _, n := range []int{0, 32, 63, 65} {
		if _, err := GenerateKeyPairFromSeed(params, make([]byte, n)); !errors.Is(err, quill.ErrInvalidInput) {
			t.Errorf("seed length %d: err = %v, want ErrInvalidInput", n, err)
		}
	}

	weak := bytes.Repeat([]byte{0x41}, quill.KeyPairSeedSize)
	if _, err := GenerateKeyPairFromSeed(params, weak); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("low-entropy seed: err = %v, want ErrInvalidInput", err)
	}
}

func TestSignAndVerify(t *testing.T) {
	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			kp, err := GenerateKeyPair(level)
			if err != nil {
				t.Fatalf("keygen failed: %v", err)
			}

			message := []byte("the quick brown fox signs a lattice")
			sig, err := Sign(&kp.SecretKey, message)
			if err != nil {
				t.Fatalf("sign failed: %v", err)
			}

			ok, err := Verify(&kp.PublicKey, message, sig)
			if err != nil {
				t.Fatalf("verify errored: %v", err)
			}
			if !ok {
				t.Error("valid signature rejected")
			}

			// signature components respect the public bounds
			params := kp.PublicKey.Params
			if poly.ExceedsBound(sig.Z, params.Gamma1-params.Beta) {
				t.Error("response norm out of bounds")
			}
			if poly.Weight(sig.Hint) > params.Omega {
				t.Error("hint weight above omega")
			}
			if len(sig.CTilde) != params.CTildeSize {
				t.Error("challenge hash has the wrong size")
			}
		})
	}
}

func TestSign_EmptyAndLargeMessages(t *testing.T) {
	kp, err := GenerateKeyPair(quill.Quill128)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	for _, size := range []int{0, 1, 4096, 1 << 21} {
		message := bytes.Repeat([]byte{0xAB}, size)
		sig, err := Sign(&kp.SecretKey, message)
		if err != nil {
			t.Fatalf("sign failed for %d-byte message: %v", size, err)
		}
		if ok, _ := Verify(&kp.PublicKey, message, sig); !ok {
			t.Errorf("round trip failed for %d-byte message", size)
		}
	}
}

func TestSign_Hedged(t *testing.T) {
	kp, _ := GenerateKeyPair(quill.Quill128)
	message := []byte("hedged signatures differ")

	s1, err := Sign(&kp.SecretKey, message)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	s2, err := Sign(&kp.SecretKey, message)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	params := kp.PublicKey.Params
	if bytes.Equal(SerializeSignature(s1, params), SerializeSignature(s2, params)) {
		t.Error("two hedged signatures over the same message coincide")
	}

	for _, sig := range []*quill.Signature{s1, s2} {
		if ok, _ := Verify(&kp.PublicKey, message, sig); !ok {
			t.Error("hedged signature rejected")
		}
	}
}

func TestSignDeterministic(t *testing.T) {
	params, _ := core.GetParams(quill.Quill128)
	kp, err := GenerateKeyPairFromSeed(params, testSeed(7))
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	message := []byte("reproducible")

	s1, err := SignDeterministic(&kp.SecretKey, message)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	s2, err := SignDeterministic(&kp.SecretKey, message)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if !bytes.Equal(SerializeSignature(s1, params), SerializeSignature(s2, params)) {
		t.Error("deterministic signing is not reproducible")
	}
	if ok, _ := Verify(&kp.PublicKey, message, s1); !ok {
		t.Error("deterministic signature rejected")
	}

	// deterministic and hedged signatures of the same message differ
	hedged, err := Sign(&kp.SecretKey, message)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if bytes.Equal(SerializeSignature(s1, params), SerializeSignature(hedged, params)) {
		t.Error("hedged signature matched the deterministic one")
	}
}

func TestVerify_Tampering(t *testing.T) {
	kp, _ := GenerateKeyPair(quill.Quill128)
	message := []byte("tamper target")
	sig, err := Sign(&kp.SecretKey, message)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// wrong message
	if ok, err := Verify(&kp.PublicKey, []byte("tamper target!"), sig); err != nil || ok {
		t.Errorf("wrong message: (%v, %v), want (false, nil)", ok, err)
	}

	// flipped challenge byte
	tampered := *sig
	tampered.CTilde = append([]byte{}, sig.CTilde...)
	tampered.CTilde[0] ^= 0x01
	if ok, err := Verify(&kp.PublicKey, message, &tampered); err != nil || ok {
		t.Errorf("tampered challenge: (%v, %v), want (false, nil)", ok, err)
	}

	// perturbed response coefficient
	tampered = *sig
	tampered.Z = make(poly.Vec, len(sig.Z))
	copy(tampered.Z, sig.Z)
	tampered.Z[0][0] = (tampered.Z[0][0] + 1) % poly.Q
	if ok, err := Verify(&kp.PublicKey, message, &tampered); err != nil || ok {
		t.Errorf("tampered response: (%v, %v), want (false, nil)", ok, err)
	}

	// flipped hint bit
	tampered = *sig
	tampered.Hint = make(poly.Vec, len(sig.Hint))
	copy(tampered.Hint, sig.Hint)
	tampered.Hint[0][0] ^= 1
	if ok, err := Verify(&kp.PublicKey, message, &tampered); err != nil || ok {
		t.Errorf("tampered hint: (%v, %v), want (false, nil)", ok, err)
	}

	// signature under a different key
	other, _ := GenerateKeyPair(quill.Quill128)
	if ok, err := Verify(&other.PublicKey, message, sig); err != nil || ok {
		t.Errorf("foreign key: (%v, %v), want (false, nil)", ok, err)
	}
}

func TestVerify_MalformedArguments(t *testing.T) {
	kp, _ := GenerateKeyPair(quill.Quill128)
	message := []byte("structure checks")
	sig, _ := Sign(&kp.SecretKey, message)

	if _, err := Verify(nil, message, sig); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("nil public key: %v", err)
	}
	if _, err := Verify(&kp.PublicKey, message, nil); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("nil signature: %v", err)
	}

	// wrong challenge hash length
	bad := *sig
	bad.CTilde = sig.CTilde[:16]
	if _, err := Verify(&kp.PublicKey, message, &bad); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("short challenge hash: %v", err)
	}

	// wrong response dimension
	bad = *sig
	bad.Z = sig.Z[:1]
	if _, err := Verify(&kp.PublicKey, message, &bad); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("short response vector: %v", err)
	}

	// response coefficient outside the ring
	bad = *sig
	bad.Z = make(poly.Vec, len(sig.Z))
	copy(bad.Z, sig.Z)
	bad.Z[0][0] = poly.Q
	if _, err := Verify(&kp.PublicKey, message, &bad); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("out-of-ring response: %v", err)
	}

	// hint coefficient other than 0 or 1
	bad = *sig
	bad.Hint = make(poly.Vec, len(sig.Hint))
	copy(bad.Hint, sig.Hint)
	bad.Hint[0][0] = 2
	if _, err := Verify(&kp.PublicKey, message, &bad); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("non-binary hint: %v", err)
	}

	// public key t1 outside the packing range
	badPK := kp.PublicKey
	badPK.T1 = make(poly.Vec, len(kp.PublicKey.T1))
	copy(badPK.T1, kp.PublicKey.T1)
	badPK.T1[0][0] = 1 << 10
	if _, err := Verify(&badPK, message, sig); !errors.Is(err, quill.ErrInvalidInput) {
		t.Errorf("oversized t1: %v", err)
	}
}

func TestSign_InvalidSecretKey(t *testing.T) {
	if _, err := Sign(nil, []byte("x")); !errors.Is(err, quill.ErrInvalidKey) {
		t.Errorf("nil secret key: %v", err)
	}

	kp, _ := GenerateKeyPair(quill.Quill128)

	bad := kp.SecretKey
	bad.Rho = bad.Rho[:16]
	if _, err := Sign(&bad, []byte("x")); !errors.Is(err, quill.ErrInvalidKey) {
		t.Errorf("short rho: %v", err)
	}

	bad = kp.SecretKey
	bad.S1 = bad.S1[:1]
	if _, err := Sign(&bad, []byte("x")); !errors.Is(err, quill.ErrInvalidKey) {
		t.Errorf("short s1: %v", err)
	}

	bad = kp.SecretKey
	bad.Params.Eta = 3
	if _, err := Sign(&bad, []byte("x")); !errors.Is(err, quill.ErrInvalidKey) {
		t.Errorf("invalid params: %v", err)
	}
}

func TestExpandMatrix(t *testing.T) {
	rho := testSeed(0)[:quill.SeedSize]

	a, err := ExpandMatrix(rho, 4, 4)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(a) != 4 || len(a[0]) != 4 {
		t.Fatal("matrix has wrong dimensions")
	}

	b, _ := ExpandMatrix(rho, 4, 4)
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatal("matrix expansion is not deterministic")
			}
		}
	}

	// cells are domain-separated by their coordinates
	if a[0][1] == a[1][0] {
		t.Error("transposed cells should differ")
	}
	if a[0][0] == a[0][1] {
		t.Error("adjacent cells should differ")
	}

	// a different rho gives an unrelated matrix
	rho2 := append([]byte{}, rho...)
	rho2[0] ^= 0xFF
	c, _ := ExpandMatrix(rho2, 4, 4)
	if a[0][0] == c[0][0] {
		t.Error("different rho should give a different matrix")
	}
}

func TestSecretKey_Zeroize(t *testing.T) {
	kp, _ := GenerateKeyPair(quill.Quill128)
	sk := &kp.SecretKey

	sk.Zeroize()

	for _, b := range sk.Key {
		if b != 0 {
			t.Fatal("key bytes not cleared")
		}
	}
	for i := range sk.S1 {
		for _, c := range sk.S1[i] {
			if c != 0 {
				t.Fatal("s1 coefficients not cleared")
			}
		}
	}
	for i := range sk.T0 {
		for _, c := range sk.T0[i] {
			if c != 0 {
				t.Fatal("t0 coefficients not cleared")
			}
		}
	}
}
