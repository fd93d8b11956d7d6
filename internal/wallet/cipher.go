package wallet

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher seals private key material before it reaches the store. The store
// format carries whatever Seal produced, so backends can be swapped without
// touching Keystore callers.
type Cipher interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(data []byte) ([]byte, error)
}

// PassthroughCipher writes key material as-is. This preserves the plaintext
// key-at-rest behavior of the original storage format; operators that want
// sealed storage configure a wallet store secret instead.
type PassthroughCipher struct{}

func (PassthroughCipher) Seal(plaintext []byte) ([]byte, error) { return plaintext, nil }

func (PassthroughCipher) Open(data []byte) ([]byte, error) { return data, nil }

const (
	envelopeVersion = 1
	saltSize        = 16
	argonTime       = uint32(2)
	argonMemoryKB   = uint32(64 * 1024)
	argonThreads    = uint8(1)
)

var errEnvelopeInvalid = errors.New("wallet envelope is invalid")

type envelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// SecretBoxCipher seals key material with XChaCha20-Poly1305 under an
// argon2id-derived key.
type SecretBoxCipher struct {
	secret string
}

// NewSecretBoxCipher builds an encrypting cipher from the configured secret.
func NewSecretBoxCipher(secret string) *SecretBoxCipher {
	return &SecretBoxCipher{secret: secret}
}

func (c *SecretBoxCipher) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := c.deriveKey(salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	env := envelope{
		Version:     envelopeVersion,
		KDF:         "argon2id",
		KDFTime:     argonTime,
		KDFMemoryKB: argonMemoryKB,
		KDFThreads:  argonThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, plaintext, nil),
	}
	return json.Marshal(env)
}

func (c *SecretBoxCipher) Open(data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errEnvelopeInvalid
	}
	if env.Version != envelopeVersion || env.KDF != "argon2id" {
		return nil, errEnvelopeInvalid
	}
	// aead.Open panics on a wrong-length nonce, so a corrupt envelope has
	// to be rejected before it reaches the AEAD.
	if len(env.Salt) != saltSize || len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, errEnvelopeInvalid
	}
	key := argon2.IDKey([]byte(c.secret), env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open wallet envelope: %w", err)
	}
	return plaintext, nil
}

func (c *SecretBoxCipher) deriveKey(salt []byte) []byte {
	return argon2.IDKey([]byte(c.secret), salt, argonTime, argonMemoryKB, argonThreads, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
