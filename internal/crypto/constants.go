package crypto

const (
	// ChatKeyContext is the context string used in HKDF derivation of chat
	// content keys for domain separation.
	ChatKeyContext = "chatseal:chatkey:v1"

	// WrapContext is the context string used in HKDF derivation of the
	// key-encryption key inside the grant wrap scheme.
	WrapContext = "chatseal:wrap:v1"

	// LegacyChatKeyPrefix is the derivation input prefix used by pre-v1
	// clients. Kept so material encrypted by those clients stays readable.
	LegacyChatKeyPrefix = "chat-key:"

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the shared secret from ML-KEM-768 in bytes.
	MLKEMSharedKeySize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// SaltSize is the size of a master key salt in bytes.
	SaltSize = 16

	// PublicKeyOffset is the byte offset where the public key is embedded
	// within an ML-KEM-768 secret key.
	PublicKeyOffset = 1152

	// Argon2id parameters for master key derivation.
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

// AlgorithmAESGCM is the algorithm identifier stamped on encrypted payloads.
const AlgorithmAESGCM = "AES-256-GCM"
