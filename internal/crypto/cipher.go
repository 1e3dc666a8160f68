// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrAuthentication is returned when a ciphertext fails authenticated
// decryption: it was tampered with, truncated, or encrypted under a
// different key. This is a data integrity failure, distinct from a wrong
// master password, and must never be reported as one.
var ErrAuthentication = errors.New("ciphertext authentication failed")

// Fields holds the three encryptable columns of a credential. The same type
// carries plaintext on the way in and ciphertext on the way out.
type Fields struct {
	Username string
	Password string
	Notes    string
}

// Encrypt encrypts a plaintext string under the given key with AES-256-GCM.
// A fresh random nonce is generated per call and prefixed to the ciphertext,
// so the output is self-describing and differs between calls even for
// identical plaintext. The result is URL-safe base64.
func Encrypt(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure to authenticate the ciphertext,
// including undecodable or truncated input, is reported as
// ErrAuthentication; no partial plaintext is ever returned.
func Decrypt(ciphertext string, key []byte) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrAuthentication)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrAuthentication)
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrAuthentication
	}
	return string(plaintext), nil
}

// EncryptFields encrypts the credential fields independently, each with its
// own nonce. The password is always encrypted, even when empty. The optional
// fields (username, notes) are stored as empty strings when unset rather
// than as an encryption of "", so an unset field never produces a ciphertext
// pattern to confuse with real data.
func EncryptFields(f Fields, key []byte) (Fields, error) {
	var out Fields
	var err error

	out.Password, err = Encrypt(f.Password, key)
	if err != nil {
		return Fields{}, err
	}
	if f.Username != "" {
		out.Username, err = Encrypt(f.Username, key)
		if err != nil {
			return Fields{}, err
		}
	}
	if f.Notes != "" {
		out.Notes, err = Encrypt(f.Notes, key)
		if err != nil {
			return Fields{}, err
		}
	}
	return out, nil
}

// DecryptFields is the inverse of EncryptFields: it reproduces the original
// field values exactly, passing empty optional fields through untouched.
func DecryptFields(f Fields, key []byte) (Fields, error) {
	var out Fields
	var err error

	out.Password, err = Decrypt(f.Password, key)
	if err != nil {
		return Fields{}, err
	}
	if f.Username != "" {
		out.Username, err = Decrypt(f.Username, key)
		if err != nil {
			return Fields{}, err
		}
	}
	if f.Notes != "" {
		out.Notes, err = Decrypt(f.Notes, key)
		if err != nil {
			return Fields{}, err
		}
	}
	return out, nil
}
