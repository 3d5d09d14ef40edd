// Package crypto provides the cryptographic primitives for the chatseal
// pipeline: key derivation, authenticated encryption, and post-quantum key
// wrapping.
//
// # Algorithm Suite
//
// The package uses the following cryptographic algorithms:
//
//   - ML-KEM-768 (NIST FIPS 203): Post-quantum key encapsulation mechanism
//     for wrapping chat content keys to individual users. Provides 192-bit
//     classical and quantum security levels.
//
//   - AES-256-GCM: Authenticated encryption with associated data (AEAD)
//     for message content and sealed key material. Provides confidentiality
//     and integrity.
//
//   - HKDF-SHA-512 (RFC 5869): Key derivation for chat content keys and
//     the key-encryption key inside the wrap scheme, with context strings
//     for domain separation.
//
//   - Argon2id (RFC 9106): Memory-hard derivation of the per-user master
//     key from the password key and a stored salt.
//
// # Key Model
//
// Three kinds of keys flow through this package and none of them is ever
// persisted in raw form:
//
//   - The master key is derived on unlock and exists only in memory. It
//     seals the user's ML-KEM secret key, which is what the profile stores.
//
//   - Chat content keys are either unwrapped from a grant (the wrapped
//     form is what is stored) or re-derived deterministically from
//     identifiers.
//
//   - The password key is a transient hash of user identity and
//     credential, consumed immediately by master key derivation.
//
// # Nonce Uniqueness
//
// AES-GCM security collapses on nonce reuse under the same key. Every
// encryption draws a fresh random nonce via [GenerateNonce]; [SealAES]
// prepends it to the blob, while message encryption stores it in a
// separate field. Callers must never supply a fixed nonce.
package crypto
