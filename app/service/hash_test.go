package service_test

import (
	"testing"

	"github.com/vibast-solutions/ms-go-academics/app/service"
)

func TestHashPasswordDeterministic(t *testing.T) {
	first := service.HashPassword("Abc12345!")
	second := service.HashPassword("Abc12345!")
	if first != second {
		t.Fatalf("hash is not deterministic: %q != %q", first, second)
	}
	if first == "Abc12345!" {
		t.Fatalf("digest must not equal the plaintext")
	}
}

func TestHashPasswordDistinctInputs(t *testing.T) {
	if service.HashPassword("Abc12345!") == service.HashPassword("Abc12345?") {
		t.Fatalf("distinct passwords produced the same digest")
	}
}

func TestVerifyPassword(t *testing.T) {
	digest := service.HashPassword("Abc12345!")

	if !service.VerifyPassword("Abc12345!", digest) {
		t.Fatalf("expected verification to succeed for the original password")
	}
	if service.VerifyPassword("wrong", digest) {
		t.Fatalf("expected verification to fail for a wrong password")
	}
	if service.VerifyPassword("Abc12345!", "not-a-digest") {
		t.Fatalf("expected verification to fail for a corrupt digest")
	}
}
