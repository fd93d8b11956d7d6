package wallet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
)

// Record is the device wallet: an address and the key material it was
// derived from. The address is never stored without the key.
type Record struct {
	Address    string
	PrivateKey []byte
}

// slotPayload is the serialized form kept in the store. The
// encryptedPrivateKey field name is part of the on-disk format; with the
// passthrough cipher its value is the raw key in hex.
type slotPayload struct {
	Address             string `json:"address"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

// Keystore manages the single device wallet slot. All mutations of the slot
// go through one mutex so concurrent first-use cannot mint two addresses
// for the same device.
type Keystore struct {
	mu     sync.Mutex
	store  Store
	cipher Cipher
	logger *slog.Logger
}

// NewKeystore builds a keystore over the given backend. A nil store yields
// a disabled keystore: every operation reports absent without touching
// anything, for platforms with no persistent local storage.
func NewKeystore(store Store, cipher Cipher, logger *slog.Logger) *Keystore {
	if cipher == nil {
		cipher = PassthroughCipher{}
	}
	return &Keystore{store: store, cipher: cipher, logger: logger}
}

// Generate produces a fresh random key pair without persisting it.
func (k *Keystore) Generate() (Record, error) {
	address, priv, err := GenerateKey()
	if err != nil {
		return Record{}, err
	}
	return Record{Address: address, PrivateKey: priv}, nil
}

// Persist writes the record into the wallet slot, replacing any prior
// content.
func (k *Keystore) Persist(ctx context.Context, rec Record) error {
	if k.store == nil {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.persistLocked(ctx, rec)
}

func (k *Keystore) persistLocked(ctx context.Context, rec Record) error {
	sealed, err := k.cipher.Seal(rec.PrivateKey)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(slotPayload{
		Address:             rec.Address,
		EncryptedPrivateKey: hex.EncodeToString(sealed),
	})
	if err != nil {
		return err
	}
	return k.store.Write(ctx, payload)
}

// Load reads the wallet slot. Missing or undecodable content both read as
// "no wallet"; a malformed slot is logged but never surfaced, so a fresh
// wallet can be provisioned over it.
func (k *Keystore) Load(ctx context.Context) (Record, bool) {
	if k.store == nil {
		return Record{}, false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.loadLocked(ctx)
}

func (k *Keystore) loadLocked(ctx context.Context) (Record, bool) {
	raw, ok, err := k.store.Read(ctx)
	if err != nil || !ok {
		return Record{}, false
	}

	var payload slotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		k.warn("wallet slot is not valid json, treating as absent", err)
		return Record{}, false
	}
	sealed, err := hex.DecodeString(payload.EncryptedPrivateKey)
	if err != nil {
		k.warn("wallet key material is not valid hex, treating as absent", err)
		return Record{}, false
	}
	priv, err := k.cipher.Open(sealed)
	if err != nil {
		k.warn("wallet key material could not be opened, treating as absent", err)
		return Record{}, false
	}
	address, err := DeriveAddress(priv)
	if err != nil {
		k.warn("wallet key material is not a valid key, treating as absent", err)
		return Record{}, false
	}
	// The stored address is advisory; the key material is authoritative.
	if payload.Address != address {
		k.warn("wallet slot address does not match key material, treating as absent", nil)
		return Record{}, false
	}
	return Record{Address: address, PrivateKey: priv}, true
}

// GetOrCreate returns the existing wallet or provisions a new one. The
// whole read-modify-write holds the slot mutex, so repeated or concurrent
// calls observe exactly one address until Clear.
func (k *Keystore) GetOrCreate(ctx context.Context) (Record, bool, error) {
	if k.store == nil {
		return Record{}, false, nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	if rec, ok := k.loadLocked(ctx); ok {
		return rec, false, nil
	}

	rec, err := k.Generate()
	if err != nil {
		return Record{}, false, err
	}
	if err := k.persistLocked(ctx, rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Clear removes the wallet slot. Only explicit sign-out calls this; the
// next GetOrCreate mints a new address.
func (k *Keystore) Clear(ctx context.Context) error {
	if k.store == nil {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.store.Delete(ctx)
}

func (k *Keystore) warn(msg string, err error) {
	if k.logger == nil {
		return
	}
	if err != nil {
		k.logger.Warn(msg, "error", err)
		return
	}
	k.logger.Warn(msg)
}
