// Package password implements the credential hasher with Argon2id in PHC
// string format. Digests produced by the previous generation of the system
// (unsalted hex SHA-256) still verify, so existing accounts keep working;
// new and changed passwords always get the KDF treatment.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/identium/auth-system/internal/core/domain"
)

const (
	defaultMinLength = 8

	argonMemoryKB    uint32 = 64 * 1024
	argonTime        uint32 = 2
	argonParallelism uint8  = 2
	argonSaltLen            = 16
	argonKeyLen      uint32 = 32
)

// Hasher hashes and verifies passwords. Safe for concurrent use.
type Hasher struct {
	minLength int
}

// NewHasher creates a Hasher enforcing the given minimum password length.
// Values below 1 fall back to the default policy of 8.
func NewHasher(minLength int) *Hasher {
	if minLength < 1 {
		minLength = defaultMinLength
	}
	return &Hasher{minLength: minLength}
}

// Hash derives an Argon2id digest over the plaintext with a fresh random
// salt and returns it PHC-encoded.
func (h *Hasher) Hash(plain string) (domain.HashedPassword, error) {
	if plain == "" {
		return domain.HashedPassword{}, &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if len(plain) < h.minLength {
		return domain.HashedPassword{}, &domain.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", h.minLength),
		}
	}

	salt := make([]byte, argonSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return domain.HashedPassword{}, fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, argonTime, argonMemoryKB, argonParallelism, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemoryKB,
		argonTime,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return domain.ParseHashedPassword(encoded)
}

// Verify recomputes the hash over plain and compares it to the stored
// value in constant time. Legacy hex digests are compared against a fresh
// SHA-256 of the plaintext. Any parse failure verifies as false.
func (h *Hasher) Verify(plain string, hashed domain.HashedPassword) bool {
	stored := hashed.String()

	if hashed.IsLegacy() {
		digest := sha256.Sum256([]byte(plain))
		computed := hex.EncodeToString(digest[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(stored))) == 1
	}

	params, salt, key, err := decodePHC(stored)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, params.time, params.memory, params.parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

type phcParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

// decodePHC splits $argon2id$v=19$m=..,t=..,p=..$salt$hash into its parts.
func decodePHC(encoded string) (phcParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return phcParams{}, nil, nil, errors.New("malformed PHC string")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return phcParams{}, nil, nil, errors.New("unsupported argon2 version")
	}

	var params phcParams
	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return phcParams{}, nil, nil, errors.New("malformed parameter entry")
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return phcParams{}, nil, nil, errors.New("invalid memory parameter")
			}
			params.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return phcParams{}, nil, nil, errors.New("invalid time parameter")
			}
			params.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil {
				return phcParams{}, nil, nil, errors.New("invalid parallelism parameter")
			}
			params.parallelism = uint8(v)
		default:
			return phcParams{}, nil, nil, errors.New("unknown parameter")
		}
	}
	if params.memory == 0 || params.time == 0 || params.parallelism == 0 {
		return phcParams{}, nil, nil, errors.New("missing parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return phcParams{}, nil, nil, errors.New("invalid salt encoding")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return phcParams{}, nil, nil, errors.New("invalid key encoding")
	}

	return params, salt, key, nil
}
