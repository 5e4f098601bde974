package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPassword("s3cret", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken()
	if err != nil {
		t.Fatalf("RandomToken() error: %v", err)
	}
	b, err := RandomToken()
	if err != nil {
		t.Fatalf("RandomToken() error: %v", err)
	}
	if len(a) != 43 {
		t.Fatalf("token length = %d, want 43", len(a))
	}
	if a == b {
		t.Fatal("two tokens collided")
	}
}
