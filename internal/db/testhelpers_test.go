// Copyright (c) 2025 ToeiRei
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"
)

// WithTestStore opens an in-memory sqlite Store for the duration of the
// provided function and closes it afterwards. Each test gets its own
// shared-cache database keyed by the test name.
func WithTestStore(t *testing.T, fn func(s Store)) {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := New("sqlite", dsn)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	fn(s)
}
