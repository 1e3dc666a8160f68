// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package vault implements the credential operations on top of the storage
// layer. It is the only place where plaintext and ciphertext meet: callers
// hand in the master password and plaintext fields, the store below only
// ever sees ciphertext.
//
// There is no session state. Every operation verifies the master password
// against the stored verifier, derives the encryption key from the stored
// salt, uses it, and wipes it before returning. Nothing derived from the
// master password outlives a single call.
package vault

import (
	"encoding/hex"
	"errors"

	"github.com/toeirei/vaultmaster/internal/crypto"
	"github.com/toeirei/vaultmaster/internal/db"
	"github.com/toeirei/vaultmaster/internal/model"
)

var (
	// ErrNotInitialized is returned when an operation requires a vault that
	// has not been set up yet.
	ErrNotInitialized = errors.New("vault is not initialized")
	// ErrInvalidMasterPassword is returned when the supplied master password
	// does not match the stored verifier.
	ErrInvalidMasterPassword = errors.New("invalid master password")
	// ErrCorruptVault is returned when the vault metadata exists but cannot
	// be used: a half-written verifier/salt pair, a malformed verifier, or a
	// salt that does not decode. This is deliberately distinct from
	// ErrNotInitialized; a damaged vault must never look like an empty one.
	ErrCorruptVault = errors.New("vault metadata is corrupt")
	// ErrEmptyService is returned when a credential operation is attempted
	// with an empty service name.
	ErrEmptyService = errors.New("service name must not be empty")
)

// Vault wires the crypto primitives to a db.Store. The zero value is not
// usable; construct with New.
type Vault struct {
	store db.Store
}

// New returns a Vault operating on the given store. The caller keeps
// ownership of the store and its lifecycle.
func New(store db.Store) *Vault {
	return &Vault{store: store}
}

// IsInitialized reports whether the vault has been set up with a master
// password. It requires no authentication.
func (v *Vault) IsInitialized() (bool, error) {
	return v.store.IsVaultInitialized()
}

// Initialize sets up a new vault: it derives a self-contained verifier from
// the master password, generates the vault salt, and persists both. The
// returned bool is false when the vault already exists; the stored verifier
// and salt are never overwritten.
func (v *Vault) Initialize(masterPassword string) (bool, error) {
	verifier, err := crypto.HashMasterPassword(masterPassword)
	if err != nil {
		return false, err
	}
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return false, err
	}
	return v.store.InitializeVault(verifier, hex.EncodeToString(salt))
}

// VerifyMasterPassword checks the master password against the stored
// verifier without touching any credential data. It returns nil on success,
// ErrInvalidMasterPassword on mismatch, and ErrNotInitialized or
// ErrCorruptVault when the vault metadata is absent or unusable.
func (v *Vault) VerifyMasterPassword(masterPassword string) error {
	key, err := v.unlock(masterPassword)
	if err != nil {
		return err
	}
	crypto.Zero(key)
	return nil
}

// unlock is the per-operation gate: it verifies the master password and
// derives the field encryption key from the stored salt. Callers must wipe
// the returned key with crypto.Zero when the operation completes.
func (v *Vault) unlock(masterPassword string) ([]byte, error) {
	initialized, err := v.store.IsVaultInitialized()
	if err != nil {
		return nil, err
	}
	verifier, err := v.store.GetMasterHash()
	if err != nil {
		return nil, err
	}
	saltHex, err := v.store.GetSalt()
	if err != nil {
		return nil, err
	}

	if !initialized {
		if verifier == "" && saltHex == "" {
			return nil, ErrNotInitialized
		}
		// One half of the verifier/salt pair survived; refuse to guess.
		return nil, ErrCorruptVault
	}
	if verifier == "" || saltHex == "" {
		return nil, ErrCorruptVault
	}

	ok, err := crypto.VerifyMasterPassword(masterPassword, verifier)
	if err != nil {
		// The stored verifier did not parse. That is vault damage, not a
		// wrong password.
		return nil, ErrCorruptVault
	}
	if !ok {
		return nil, ErrInvalidMasterPassword
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) != crypto.SaltSize {
		return nil, ErrCorruptVault
	}
	return crypto.DeriveKey(masterPassword, salt), nil
}

// AddCredential encrypts the credential's fields and stores them under the
// plaintext service name. It returns false when the service name is already
// taken; a duplicate is an expected outcome, not an error.
func (v *Vault) AddCredential(masterPassword string, cred model.Credential) (bool, error) {
	if cred.Service == "" {
		return false, ErrEmptyService
	}
	key, err := v.unlock(masterPassword)
	if err != nil {
		return false, err
	}
	defer crypto.Zero(key)

	enc, err := crypto.EncryptFields(crypto.Fields{
		Username: cred.Username,
		Password: cred.Password,
		Notes:    cred.Notes,
	}, key)
	if err != nil {
		return false, err
	}
	return v.store.AddCredential(cred.Service, enc.Username, enc.Password, enc.Notes)
}

// GetCredential retrieves and decrypts a credential by exact service name.
// It returns (nil, nil) when no credential exists under that name. A
// decryption failure surfaces as crypto.ErrAuthentication, which means the
// stored ciphertext was tampered with or the vault salt no longer matches.
func (v *Vault) GetCredential(masterPassword, service string) (*model.Credential, error) {
	if service == "" {
		return nil, ErrEmptyService
	}
	key, err := v.unlock(masterPassword)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(key)

	row, err := v.store.GetCredential(service)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return decryptRow(row, key)
}

// UpdateCredential replaces the username, password and notes of an existing
// credential wholesale. It returns false when no credential exists under the
// service name.
func (v *Vault) UpdateCredential(masterPassword string, cred model.Credential) (bool, error) {
	if cred.Service == "" {
		return false, ErrEmptyService
	}
	key, err := v.unlock(masterPassword)
	if err != nil {
		return false, err
	}
	defer crypto.Zero(key)

	enc, err := crypto.EncryptFields(crypto.Fields{
		Username: cred.Username,
		Password: cred.Password,
		Notes:    cred.Notes,
	}, key)
	if err != nil {
		return false, err
	}
	return v.store.UpdateCredential(cred.Service, enc.Username, enc.Password, enc.Notes)
}

// DeleteCredential removes a credential by exact service name after
// verifying the master password. It returns false when nothing was stored
// under that name.
func (v *Vault) DeleteCredential(masterPassword, service string) (bool, error) {
	if service == "" {
		return false, ErrEmptyService
	}
	key, err := v.unlock(masterPassword)
	if err != nil {
		return false, err
	}
	crypto.Zero(key)

	return v.store.DeleteCredential(service)
}

// SearchCredentials returns all credentials whose service name contains the
// keyword, decrypted and ordered by service name. Matching is
// case-insensitive; an empty keyword returns every credential. The key is
// derived once and reused across the result set.
func (v *Vault) SearchCredentials(masterPassword, keyword string) ([]model.Credential, error) {
	key, err := v.unlock(masterPassword)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(key)

	rows, err := v.store.SearchCredentials(keyword)
	if err != nil {
		return nil, err
	}
	out := make([]model.Credential, 0, len(rows))
	for i := range rows {
		cred, err := decryptRow(&rows[i], key)
		if err != nil {
			return nil, err
		}
		out = append(out, *cred)
	}
	return out, nil
}

// ListServices returns all stored service names ordered by name. Service
// names are stored in plaintext, so this deliberately requires no master
// password; it must work for an "is anything in here?" glance.
func (v *Vault) ListServices() ([]string, error) {
	return v.store.ListServices()
}

// CountCredentials returns the number of stored credentials without
// requiring the master password.
func (v *Vault) CountCredentials() (int, error) {
	return v.store.CountCredentials()
}

// AuditLog returns the recorded vault actions, newest first. Entries carry
// service names and OS usernames only, never field values, so like
// ListServices this requires no master password.
func (v *Vault) AuditLog() ([]model.AuditLogEntry, error) {
	return v.store.GetAllAuditLogEntries()
}

// Backup exports the vault's full contents for backup after verifying the
// master password. Credential fields stay encrypted in the export; the
// backup is exactly as protected as the vault itself.
func (v *Vault) Backup(masterPassword string) (*model.BackupData, error) {
	key, err := v.unlock(masterPassword)
	if err != nil {
		return nil, err
	}
	crypto.Zero(key)

	return v.store.ExportDataForBackup()
}

// Restore loads backup data into the vault. With merge set, existing rows
// win and only missing credentials arrive; the live verifier and salt are
// never replaced. Without merge the vault is wiped and replaced wholesale,
// including verifier and salt, so the backup's master password applies
// afterwards.
//
// Restoring into an initialized vault requires its current master password.
// A full restore into an uninitialized vault is allowed without one; there
// is nothing to protect yet.
func (v *Vault) Restore(masterPassword string, backup *model.BackupData, merge bool) error {
	initialized, err := v.store.IsVaultInitialized()
	if err != nil {
		return err
	}
	if initialized {
		key, err := v.unlock(masterPassword)
		if err != nil {
			return err
		}
		crypto.Zero(key)
	} else if merge {
		return ErrNotInitialized
	}

	if merge {
		return v.store.IntegrateDataFromBackup(backup)
	}
	return v.store.ImportDataFromBackup(backup)
}

func decryptRow(row *model.CredentialRow, key []byte) (*model.Credential, error) {
	dec, err := crypto.DecryptFields(crypto.Fields{
		Username: row.Username,
		Password: row.Password,
		Notes:    row.Notes,
	}, key)
	if err != nil {
		return nil, err
	}
	return &model.Credential{
		Service:   row.Service,
		Username:  dec.Username,
		Password:  dec.Password,
		Notes:     dec.Notes,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
