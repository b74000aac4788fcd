package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned when a stored hash is not an argon2id PHC string
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes and verifies passwords with Argon2id
type PasswordHasher struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordHasher returns the production parameters
func DefaultPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash returns a PHC-formatted argon2id hash:
// $argon2id$v=19$m=65536,t=3,p=2$salt$hash
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.Iterations, h.Memory, h.Parallelism, h.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Iterations, h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether password matches encoded. The parameters stored in
// the hash are used, not the hasher's own, so older hashes keep verifying.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// HashPassword hashes a password with the default parameters
func HashPassword(password string) (string, error) {
	return DefaultPasswordHasher().Hash(password)
}

// VerifyPassword verifies a password against a stored hash
func VerifyPassword(password, encoded string) (bool, error) {
	return DefaultPasswordHasher().Verify(password, encoded)
}

func decodeHash(encoded string) (*PasswordHasher, []byte, []byte, error) {
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, hash]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("%w: unsupported version", ErrMalformedHash)
	}

	params := &PasswordHasher{}
	n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism)
	if err != nil || n != 3 || params.Iterations == 0 || params.Parallelism == 0 {
		return nil, nil, nil, fmt.Errorf("%w: bad parameters", ErrMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
