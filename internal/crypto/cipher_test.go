// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x7f}, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey()
	cases := []struct {
		name      string
		plaintext string
	}{
		{"simple", "hunter2"},
		{"empty", ""},
		{"unicode", "pässwörd ünïcode ✓"},
		{"long", string(bytes.Repeat([]byte("blob "), 2048))},
		{"binary-ish", "\x00\x01\xff\xfe"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ct, err := Encrypt(c.plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			if ct == c.plaintext && c.plaintext != "" {
				t.Fatalf("ciphertext equals plaintext")
			}
			pt, err := Decrypt(ct, key)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if pt != c.plaintext {
				t.Fatalf("round trip mismatch: got %q want %q", pt, c.plaintext)
			}
		})
	}
}

func TestEncryptNondeterministic(t *testing.T) {
	key := testKey()
	c1, err := Encrypt("same plaintext", key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	c2, err := Encrypt("same plaintext", key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if c1 == c2 {
		t.Fatalf("two encryptions of the same plaintext are identical; nonce reuse")
	}
	for _, ct := range []string{c1, c2} {
		pt, err := Decrypt(ct, key)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if pt != "same plaintext" {
			t.Fatalf("round trip mismatch: %q", pt)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	ct, err := Encrypt("secret", testKey())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	wrong := bytes.Repeat([]byte{0x80}, 32)
	if _, err := Decrypt(ct, wrong); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication for wrong key, got: %v", err)
	}
}

func TestDecryptTampered(t *testing.T) {
	key := testKey()
	ct, err := Encrypt("secret", key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(ct)
	if err != nil {
		t.Fatalf("decoding ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	if _, err := Decrypt(tampered, key); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication for tampered ciphertext, got: %v", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	key := testKey()
	cases := []struct {
		name string
		ct   string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"too short", base64.RawURLEncoding.EncodeToString([]byte("tiny"))},
		{"empty", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Decrypt(c.ct, key); !errors.Is(err, ErrAuthentication) {
				t.Fatalf("expected ErrAuthentication, got: %v", err)
			}
		})
	}
}

func TestEncryptFieldsOptionalEmpty(t *testing.T) {
	key := testKey()
	enc, err := EncryptFields(Fields{Password: "pw"}, key)
	if err != nil {
		t.Fatalf("EncryptFields failed: %v", err)
	}
	if enc.Username != "" || enc.Notes != "" {
		t.Fatalf("empty optional fields were encrypted: %+v", enc)
	}
	if enc.Password == "" || enc.Password == "pw" {
		t.Fatalf("password not encrypted: %q", enc.Password)
	}

	dec, err := DecryptFields(enc, key)
	if err != nil {
		t.Fatalf("DecryptFields failed: %v", err)
	}
	if dec != (Fields{Password: "pw"}) {
		t.Fatalf("round trip mismatch: %+v", dec)
	}
}

func TestEncryptFieldsRoundTrip(t *testing.T) {
	key := testKey()
	in := Fields{Username: "toeirei", Password: "hunter2", Notes: "rotate quarterly"}

	enc, err := EncryptFields(in, key)
	if err != nil {
		t.Fatalf("EncryptFields failed: %v", err)
	}
	for name, v := range map[string]string{"username": enc.Username, "password": enc.Password, "notes": enc.Notes} {
		if v == "" {
			t.Fatalf("field %s is empty after encryption", name)
		}
	}
	if enc.Username == in.Username || enc.Password == in.Password || enc.Notes == in.Notes {
		t.Fatalf("a field survived encryption in plaintext: %+v", enc)
	}

	dec, err := DecryptFields(enc, key)
	if err != nil {
		t.Fatalf("DecryptFields failed: %v", err)
	}
	if dec != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", dec, in)
	}
}

func TestFieldsUseIndependentNonces(t *testing.T) {
	key := testKey()
	in := Fields{Username: "same", Password: "same", Notes: "same"}
	enc, err := EncryptFields(in, key)
	if err != nil {
		t.Fatalf("EncryptFields failed: %v", err)
	}
	if enc.Username == enc.Password || enc.Username == enc.Notes || enc.Password == enc.Notes {
		t.Fatalf("identical plaintexts produced identical ciphertexts: %+v", enc)
	}
}
