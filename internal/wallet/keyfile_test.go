package wallet_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"ledgerchat/internal/domain"
	"ledgerchat/internal/wallet"
)

const account = domain.Account("0xa11ce")

func TestKeyfileWallet_RoundTrip(t *testing.T) {
	w := wallet.NewKeyfile(t.TempDir(), "hunter2 hunter2")
	ctx := context.Background()

	secret := bytes.Repeat([]byte{0x42}, 32)
	ct, err := w.Encrypt(ctx, account, secret)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Contains(ct, secret) {
		t.Fatal("ciphertext contains the plaintext")
	}

	got, err := w.Decrypt(ctx, account, ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatal("round-trip mismatch")
	}
}

func TestKeyfileWallet_WrongPassphraseRejected(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	w := wallet.NewKeyfile(dir, "correct")
	ct, err := w.Encrypt(ctx, account, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	other := wallet.NewKeyfile(dir, "wrong")
	if _, err := other.Decrypt(ctx, account, ct); !errors.Is(err, domain.ErrUnwrapRejected) {
		t.Fatalf("want ErrUnwrapRejected, got %v", err)
	}
}

func TestKeyfileWallet_UnknownAccountRejected(t *testing.T) {
	w := wallet.NewKeyfile(t.TempDir(), "pass")
	if _, err := w.Decrypt(context.Background(), "0xb0b", []byte("anything")); !errors.Is(err, domain.ErrUnwrapRejected) {
		t.Fatalf("want ErrUnwrapRejected, got %v", err)
	}
}

func TestKeyfileWallet_CorruptCiphertext(t *testing.T) {
	w := wallet.NewKeyfile(t.TempDir(), "pass")
	ctx := context.Background()

	ct, err := w.Encrypt(ctx, account, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	ct[len(ct)-1] ^= 0x01
	if _, err := w.Decrypt(ctx, account, ct); !errors.Is(err, domain.ErrUnwrapCorrupted) {
		t.Fatalf("want ErrUnwrapCorrupted, got %v", err)
	}
}

func TestKeyfileWallet_CancelledContext(t *testing.T) {
	w := wallet.NewKeyfile(t.TempDir(), "pass")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.Encrypt(ctx, account, []byte("secret")); !errors.Is(err, domain.ErrWrapRejected) {
		t.Fatalf("want ErrWrapRejected, got %v", err)
	}
	if _, err := w.Decrypt(ctx, account, []byte("secret")); !errors.Is(err, domain.ErrUnwrapRejected) {
		t.Fatalf("want ErrUnwrapRejected, got %v", err)
	}
}

func TestKeyfileWallet_StableKeyAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := wallet.NewKeyfile(dir, "pass")
	ct, err := first.Encrypt(ctx, account, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	second := wallet.NewKeyfile(dir, "pass")
	got, err := second.Decrypt(ctx, account, ct)
	if err != nil {
		t.Fatalf("Decrypt with fresh instance: %v", err)
	}
	if string(got) != "secret" {
		t.Fatalf("got %q", got)
	}
}
