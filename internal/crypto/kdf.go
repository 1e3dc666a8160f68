// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package crypto implements the vault's security primitives: master password
// key derivation, the master password verifier, and authenticated field
// encryption. Everything in here is stateless; derived keys and plaintext
// belong to the caller and must not outlive the operation that produced them.
package crypto // import "github.com/toeirei/vaultmaster/internal/crypto"

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// SaltSize is the length in bytes of the vault encryption salt. The salt is
// generated once at vault initialization and never changes afterwards;
// rewriting it would silently orphan every existing ciphertext.
const SaltSize = 16

// derivedKeyLen is the length of the symmetric key produced by DeriveKey.
const derivedKeyLen = 32

// deriveIterations is the PBKDF2 iteration count for the encryption key.
// Deliberately slow; this dominates the latency of every vault operation.
const deriveIterations = 100_000

// ErrMalformedVerifier is returned when a stored master password verifier
// cannot be parsed. This means the vault metadata is corrupt, not that the
// password was wrong.
var ErrMalformedVerifier = errors.New("malformed master password verifier")

// argonParams bundles the argon2id cost parameters baked into a verifier.
type argonParams struct {
	memory      uint32 // in KiB
	time        uint32 // iterations
	parallelism uint8
	saltLen     int
	keyLen      uint32
}

// defaultArgon is used for every newly hashed master password. Verification
// always honors the parameters embedded in the stored verifier, so these can
// be raised later without breaking existing vaults.
var defaultArgon = argonParams{
	memory:      64 * 1024,
	time:        3,
	parallelism: 1,
	saltLen:     16,
	keyLen:      32,
}

// GenerateSalt returns a fresh random salt for vault initialization.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives the vault's symmetric encryption key from the master
// password and the vault salt. The derivation is deterministic: the same
// password and salt always yield the same key, which is what lets every
// operation re-derive instead of caching key material between calls.
//
// The verifier produced by HashMasterPassword uses its own independent salt,
// so cracking work against the stored verifier gains nothing against this
// key.
func DeriveKey(masterPassword string, salt []byte) []byte {
	return pbkdf2.Key([]byte(masterPassword), salt, deriveIterations, derivedKeyLen, sha256.New)
}

// HashMasterPassword hashes the master password for storage as the vault's
// authentication verifier. The output is self-contained: it embeds the
// argon2id parameters and the verifier's own random salt.
//
// Encoded format: argon2id$m=<M>,t=<T>,p=<P>$<b64(salt)>$<b64(key)>
func HashMasterPassword(password string) (string, error) {
	p := defaultArgon
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating verifier salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLen)
	return fmt.Sprintf("argon2id$m=%d,t=%d,p=%d$%s$%s",
		p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyMasterPassword checks a candidate password against a stored
// verifier. A wrong password is (false, nil); ErrMalformedVerifier is only
// returned when the verifier itself cannot be parsed, which callers must
// treat as vault corruption rather than a failed login.
func VerifyMasterPassword(password, verifier string) (bool, error) {
	const prefix = "argon2id$"
	if !strings.HasPrefix(verifier, prefix) {
		return false, ErrMalformedVerifier
	}
	parts := strings.Split(verifier[len(prefix):], "$")
	if len(parts) != 3 {
		return false, ErrMalformedVerifier
	}

	var m, t uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &m, &t, &par); err != nil {
		return false, ErrMalformedVerifier
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, ErrMalformedVerifier
	}
	keyRef, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, ErrMalformedVerifier
	}
	if len(keyRef) == 0 {
		return false, ErrMalformedVerifier
	}

	key := argon2.IDKey([]byte(password), salt, t, m, par, uint32(len(keyRef)))
	if subtle.ConstantTimeCompare(key, keyRef) == 1 {
		return true, nil
	}
	return false, nil
}

// Zero overwrites a byte slice in memory with zeros. Callers use it to scrub
// derived keys once an operation completes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
