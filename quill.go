// Package quill implements the QUILL post-quantum digital signature scheme.
//
// QUILL is a module-lattice signature in the Fiat-Shamir-with-aborts family,
// instantiated over Z_q[X]/(X^256+1) with q = 8380417. All hashing inside the
// scheme runs on a self-contained SHAKE256/SHAKE128 sponge built from a
// from-scratch Keccak-f[1600] permutation; the implementation has no runtime
// dependency on platform SHA-3 primitives.
//
// WARNING: this implementation has not been independently audited. Review it
// before protecting production data with it.
package quill

// Version of the QUILL Go implementation.
const Version = "1.0.0"

// API summary:
//
// Digital Signatures:
//   - sign.GenerateKeyPair(level) - Generate a signature key pair
//   - sign.Sign(sk, message) - Sign a message (hedged)
//   - sign.SignDeterministic(sk, message) - Sign with deterministic nonce
//   - sign.Verify(pk, message, signature) - Verify a signature
//
// Hashing:
//   - sponge.Hash(input, outputLength) - One-shot SHAKE256
//   - sponge.NewShake256() - Incremental absorb/squeeze XOF
//
// Parameters:
//   - core.GetParams(level) - Get parameters for a security level
//   - Quill128, Quill192, Quill256 - The three official security levels
