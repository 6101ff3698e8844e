package security

import (
	"errors"
	"testing"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	for _, plain := range []string{"password123", "hunter22", "ünïcödé-pass"} {
		hash, err := HashPassword(plain)
		if err != nil {
			t.Fatalf("HashPassword(%q): %v", plain, err)
		}
		if hash == plain {
			t.Fatalf("hash equals plaintext for %q", plain)
		}
		if err := CheckPassword(hash, plain); err != nil {
			t.Fatalf("CheckPassword(%q): %v", plain, err)
		}
	}
}

func TestCheckPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if err := CheckPassword(hash, "password124"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("got %v, want ErrPasswordMismatch", err)
	}
}
