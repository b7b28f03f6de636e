package password

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/identium/auth-system/internal/core/domain"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(8)

	hash, err := h.Hash("Str0ngPass!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash.String(), "$argon2id$") {
		t.Fatalf("expected argon2id PHC encoding, got %q", hash.String())
	}

	if !h.Verify("Str0ngPass!", hash) {
		t.Fatalf("correct password must verify")
	}
	if h.Verify("wrongpass", hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHasher_SaltedPerCall(t *testing.T) {
	h := NewHasher(8)

	a, err := h.Hash("Str0ngPass!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("Str0ngPass!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a.String() == b.String() {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
	if !h.Verify("Str0ngPass!", a) || !h.Verify("Str0ngPass!", b) {
		t.Fatalf("both salted hashes must verify")
	}
}

func TestHasher_MinLength(t *testing.T) {
	h := NewHasher(8)

	for _, plain := range []string{"", "short", "1234567"} {
		_, err := h.Hash(plain)
		if err == nil {
			t.Fatalf("expected error for %q", plain)
		}
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}

	if _, err := h.Hash("12345678"); err != nil {
		t.Fatalf("8-char password must pass: %v", err)
	}
}

func TestHasher_LegacyDigest(t *testing.T) {
	h := NewHasher(8)

	digest := sha256.Sum256([]byte("Str0ngPass!"))
	stored, err := domain.ParseHashedPassword(hex.EncodeToString(digest[:]))
	if err != nil {
		t.Fatalf("parse legacy digest: %v", err)
	}

	if !h.Verify("Str0ngPass!", stored) {
		t.Fatalf("legacy digest must verify against the original password")
	}
	if h.Verify("wrongpass", stored) {
		t.Fatalf("legacy digest must reject a wrong password")
	}
}

func TestHasher_LegacyDigestUppercase(t *testing.T) {
	h := NewHasher(8)

	digest := sha256.Sum256([]byte("Str0ngPass!"))
	stored, err := domain.ParseHashedPassword(strings.ToUpper(hex.EncodeToString(digest[:])))
	if err != nil {
		t.Fatalf("parse legacy digest: %v", err)
	}
	if !h.Verify("Str0ngPass!", stored) {
		t.Fatalf("uppercase legacy digest must still verify")
	}
}

func TestDecodePHC_Malformed(t *testing.T) {
	cases := []string{
		"$argon2id$v=19$m=65536,t=2$c2FsdA$aGFzaA",       // missing p
		"$argon2id$v=18$m=65536,t=2,p=2$c2FsdA$aGFzaA",   // wrong version
		"$argon2i$v=19$m=65536,t=2,p=2$c2FsdA$aGFzaA",    // wrong algorithm
		"$argon2id$v=19$m=65536,t=2,p=2$!!$aGFzaA",       // bad salt encoding
		"$argon2id$v=19$m=65536,t=2,p=2$c2FsdA$",         // empty key
		"$argon2id$v=19$m=0,t=2,p=2$c2FsdA$aGFzaA",       // zero memory
	}
	for _, encoded := range cases {
		if _, _, _, err := decodePHC(encoded); err == nil {
			t.Fatalf("expected decode error for %q", encoded)
		}
	}
}

func TestNewHasher_DefaultPolicy(t *testing.T) {
	h := NewHasher(0)
	if _, err := h.Hash("1234567"); err == nil {
		t.Fatalf("default policy must require at least 8 characters")
	}
}
