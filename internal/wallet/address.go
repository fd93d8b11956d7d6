package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

const privateKeySize = 32

// GenerateKey produces a fresh secp256k1 key pair and the chain address
// derived from its public key. The private key bytes are the 32-byte
// big-endian scalar.
func GenerateKey() (address string, privateKey []byte, err error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", nil, fmt.Errorf("generate private key: %w", err)
	}
	return AddressFromKey(priv), priv.Serialize(), nil
}

// DeriveAddress recomputes the address for previously stored key material.
func DeriveAddress(privateKey []byte) (string, error) {
	if len(privateKey) != privateKeySize {
		return "", fmt.Errorf("private key must be %d bytes, got %d", privateKeySize, len(privateKey))
	}
	priv := secp256k1.PrivKeyFromBytes(privateKey)
	if priv.Key.IsZero() {
		return "", fmt.Errorf("private key is out of range")
	}
	return AddressFromKey(priv), nil
}

// AddressFromKey returns the EIP-55 checksummed address for the key's
// uncompressed public key: keccak256(pubkey)[12:].
func AddressFromKey(priv *secp256k1.PrivateKey) string {
	pub := priv.PubKey().SerializeUncompressed()
	h := sha3.NewLegacyKeccak256()
	h.Write(pub[1:]) // drop the 0x04 point prefix
	return checksumAddress(h.Sum(nil)[12:])
}

func checksumAddress(addr []byte) string {
	lower := hex.EncodeToString(addr)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := h.Sum(nil)

	out := make([]byte, len(lower))
	for i, c := range []byte(lower) {
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c -= 'a' - 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}
