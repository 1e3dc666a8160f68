// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordCharset is the alphabet for generated passwords. Ambiguous pairs
// like 0/O and 1/l stay in; vault passwords are pasted, not transcribed.
const passwordCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*()-_=+[]{}:,.?"

// DefaultGeneratedPasswordLength is used when the caller does not specify one.
const DefaultGeneratedPasswordLength = 20

// GeneratePassword returns a random password of the given length drawn
// uniformly from the generator charset using crypto/rand.
func GeneratePassword(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("password length must be at least 1, got %d", length)
	}
	max := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
