package wallet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/logging"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	ks := NewKeystore(NewMemoryStore(), nil, logging.Discard())
	ctx := context.Background()

	first, isNew, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("first getOrCreate: %v", err)
	}
	if !isNew {
		t.Fatalf("expected first call to provision a wallet")
	}
	if !strings.HasPrefix(first.Address, "0x") || len(first.Address) != 42 {
		t.Fatalf("unexpected address format: %q", first.Address)
	}

	second, isNew, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("second getOrCreate: %v", err)
	}
	if isNew {
		t.Fatalf("expected second call to reuse the wallet")
	}
	if second.Address != first.Address {
		t.Fatalf("expected same address, got %s then %s", first.Address, second.Address)
	}
}

func TestClearProducesFreshAddress(t *testing.T) {
	ks := NewKeystore(NewMemoryStore(), nil, logging.Discard())
	ctx := context.Background()

	before, _, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}
	if err := ks.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	after, isNew, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate after clear: %v", err)
	}
	if !isNew {
		t.Fatalf("expected a new wallet after clear")
	}
	if after.Address == before.Address {
		t.Fatalf("expected a different address after clear, got %s twice", after.Address)
	}
}

func TestAddressDerivesFromKeyMaterial(t *testing.T) {
	ks := NewKeystore(NewMemoryStore(), nil, logging.Discard())
	rec, err := ks.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	derived, err := DeriveAddress(rec.PrivateKey)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}
	if derived != rec.Address {
		t.Fatalf("address %s does not derive from key material (got %s)", rec.Address, derived)
	}
}

func TestMalformedSlotReadsAsAbsent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Write(ctx, []byte("not json at all")); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	ks := NewKeystore(store, nil, logging.Discard())
	if _, ok := ks.Load(ctx); ok {
		t.Fatalf("expected malformed slot to read as absent")
	}

	rec, isNew, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate over malformed slot: %v", err)
	}
	if !isNew || rec.Address == "" {
		t.Fatalf("expected a fresh wallet over the malformed slot")
	}
}

func TestSecretBoxRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	cipher := NewSecretBoxCipher("correct horse battery staple")
	ctx := context.Background()

	ks := NewKeystore(store, cipher, logging.Discard())
	rec, _, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}

	reopened := NewKeystore(store, NewSecretBoxCipher("correct horse battery staple"), logging.Discard())
	got, ok := reopened.Load(ctx)
	if !ok {
		t.Fatalf("expected sealed wallet to load with the right secret")
	}
	if got.Address != rec.Address {
		t.Fatalf("expected address %s, got %s", rec.Address, got.Address)
	}

	// A wrong secret must read as no wallet, not as an error.
	wrong := NewKeystore(store, NewSecretBoxCipher("wrong secret"), logging.Discard())
	if _, ok := wrong.Load(ctx); ok {
		t.Fatalf("expected wrong secret to read as absent")
	}
}

func TestSecretBoxCorruptEnvelopeReadsAsAbsent(t *testing.T) {
	store := NewMemoryStore()
	secret := "correct horse battery staple"
	ctx := context.Background()

	ks := NewKeystore(store, NewSecretBoxCipher(secret), logging.Discard())
	if _, _, err := ks.GetOrCreate(ctx); err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}

	// Truncate the envelope's nonce in place: the slot still parses as a
	// valid envelope but can never open.
	raw, ok, err := store.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("read slot: ok=%v err=%v", ok, err)
	}
	var payload slotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode slot: %v", err)
	}
	sealed, err := hex.DecodeString(payload.EncryptedPrivateKey)
	if err != nil {
		t.Fatalf("decode key material: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	env.Nonce = env.Nonce[:3]
	corrupted, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("encode corrupted envelope: %v", err)
	}
	payload.EncryptedPrivateKey = hex.EncodeToString(corrupted)
	reencoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encode slot: %v", err)
	}
	if err := store.Write(ctx, reencoded); err != nil {
		t.Fatalf("write corrupted slot: %v", err)
	}

	// The corrupt slot must read as absent, never raise.
	reopened := NewKeystore(store, NewSecretBoxCipher(secret), logging.Discard())
	if _, ok := reopened.Load(ctx); ok {
		t.Fatalf("expected corrupt envelope to read as absent")
	}
	rec, isNew, err := reopened.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate over corrupt envelope: %v", err)
	}
	if !isNew || rec.Address == "" {
		t.Fatalf("expected a fresh wallet over the corrupt envelope")
	}
}

func TestDisabledKeystoreIsNoOp(t *testing.T) {
	ks := NewKeystore(nil, nil, logging.Discard())
	ctx := context.Background()

	if _, ok := ks.Load(ctx); ok {
		t.Fatalf("expected disabled keystore to report absent")
	}
	rec, isNew, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}
	if isNew || rec.Address != "" {
		t.Fatalf("expected disabled keystore to provision nothing")
	}
	if err := ks.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/wallet.json"
	ks := NewKeystore(NewFileStore(path), nil, logging.Discard())
	ctx := context.Background()

	rec, _, err := ks.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}

	reopened := NewKeystore(NewFileStore(path), nil, logging.Discard())
	got, ok := reopened.Load(ctx)
	if !ok {
		t.Fatalf("expected wallet to survive reopen")
	}
	if got.Address != rec.Address {
		t.Fatalf("expected address %s, got %s", rec.Address, got.Address)
	}
}
