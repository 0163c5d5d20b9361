package service

import (
	"testing"
	"time"
)

func TestMemoryRefreshTokenStore(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "user@example.com", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("jti-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("stored jti must exist")
	}

	ok, err = store.Exists("jti-unknown")
	if err != nil {
		t.Fatalf("exists unknown: %v", err)
	}
	if ok {
		t.Fatal("unknown jti must not exist")
	}

	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, _ = store.Exists("jti-1")
	if ok {
		t.Fatal("revoked jti must not exist")
	}
}

func TestMemoryRefreshTokenStoreExpiry(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-expired", "user@example.com", -time.Second); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("jti-expired")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("expired jti must not exist")
	}
}

func TestMemoryRefreshTokenStoreIgnoresEmptyJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("  ", "user@example.com", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, _ := store.Exists("  ")
	if ok {
		t.Fatal("blank jti must not be stored")
	}
}
