package sign

import (
	"bytes"
	"testing"

	quill "github.com/quillpq/quill-go"
	"github.com/quillpq/quill-go/core"
)

// FuzzDeserializePublicKey tests public key deserialization with random inputs
func FuzzDeserializePublicKey(f *testing.F) {
	params, _ := core.GetParams(quill.Quill128)
	kp, _ := GenerateKeyPairFromSeed(params, testSeed(0x50))

	// Add seed corpus
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add(make([]byte, 16))
	f.Add(make([]byte, params.PublicKeySize()))
	f.Add(SerializePublicKey(&kp.PublicKey))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic, may return error
		pk, err := DeserializePublicKey(data, quill.Quill128)
		if err != nil {
			return
		}
		// accepted inputs re-serialize byte identically
		if !bytes.Equal(SerializePublicKey(pk), data) {
			t.Error("accepted public key is not canonical")
		}
	})
}

// FuzzDeserializeSecretKey tests secret key deserialization with random inputs
func FuzzDeserializeSecretKey(f *testing.F) {
	params, _ := core.GetParams(quill.Quill128)
	kp, _ := GenerateKeyPairFromSeed(params, testSeed(0x51))

	// Add seed corpus
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add(make([]byte, 16))
	f.Add(make([]byte, params.SecretKeySize()))
	f.Add(SerializeSecretKey(&kp.SecretKey))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic, may return error
		sk, err := DeserializeSecretKey(data, quill.Quill128)
		if err != nil {
			return
		}
		if !bytes.Equal(SerializeSecretKey(sk), data) {
			t.Error("accepted secret key is not canonical")
		}
	})
}

// FuzzDeserializeSignature tests signature deserialization with random inputs
func FuzzDeserializeSignature(f *testing.F) {
	params, _ := core.GetParams(quill.Quill128)
	kp, _ := GenerateKeyPairFromSeed(params, testSeed(0x52))
	sig, _ := SignDeterministic(&kp.SecretKey, []byte("fuzz corpus"))

	// Add seed corpus
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add(make([]byte, 16))
	f.Add(make([]byte, params.SignatureSize()))
	f.Add(SerializeSignature(sig, params))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic, may return error
		restored, err := DeserializeSignature(data, quill.Quill128)
		if err != nil {
			return
		}
		if !bytes.Equal(SerializeSignature(restored, params), data) {
			t.Error("accepted signature is not canonical")
		}
	})
}
