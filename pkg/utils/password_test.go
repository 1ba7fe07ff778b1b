package utils

import (
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	h, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "s3cret!" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPassword("s3cret!", h) {
		t.Fatal("expected password to match")
	}
	if CheckPassword("wrong", h) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestNewIDIsUUID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewID returned %q: %v", id, err)
	}
	if NewID() == id {
		t.Fatal("expected unique ids")
	}
}
