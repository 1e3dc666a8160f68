// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"fmt"

	"github.com/toeirei/vaultmaster/internal/model"
	"github.com/uptrace/bun"
)

// BunStore is the Bun-backed implementation of Store. It works unchanged
// across SQLite, Postgres and MySQL; dialect differences live in the Bun
// query builder and the migration files, not here.
//
// The store only ever sees ciphertext for username, password and notes.
// Key derivation and field encryption happen a layer above.
type BunStore struct {
	bun *bun.DB
}

// BunDB exposes the underlying *bun.DB for maintenance tasks and tests.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Close releases the underlying database connection pool.
func (s *BunStore) Close() error {
	if s.bun == nil {
		return nil
	}
	return s.bun.Close()
}

// --- Vault metadata ---

func (s *BunStore) InitializeVault(masterHash, saltHex string) (bool, error) {
	ok, err := InitializeVaultBun(s.bun, masterHash, saltHex)
	if err == nil && ok {
		_ = s.LogAction("INIT_VAULT", "vault initialized")
	}
	return ok, err
}

func (s *BunStore) IsVaultInitialized() (bool, error) {
	return IsVaultInitializedBun(s.bun)
}

func (s *BunStore) GetMasterHash() (string, error) {
	return GetMetadataValueBun(s.bun, metaKeyMasterHash)
}

func (s *BunStore) GetSalt() (string, error) {
	return GetMetadataValueBun(s.bun, metaKeySalt)
}

// --- Credentials ---

func (s *BunStore) AddCredential(service, username, password, notes string) (bool, error) {
	ok, err := AddCredentialBun(s.bun, service, username, password, notes)
	if err == nil && ok {
		_ = s.LogAction("ADD_CREDENTIAL", fmt.Sprintf("service: %s", service))
	}
	return ok, err
}

func (s *BunStore) GetCredential(service string) (*model.CredentialRow, error) {
	return GetCredentialBun(s.bun, service)
}

func (s *BunStore) UpdateCredential(service, username, password, notes string) (bool, error) {
	ok, err := UpdateCredentialBun(s.bun, service, username, password, notes)
	if err == nil && ok {
		_ = s.LogAction("UPDATE_CREDENTIAL", fmt.Sprintf("service: %s", service))
	}
	return ok, err
}

func (s *BunStore) DeleteCredential(service string) (bool, error) {
	ok, err := DeleteCredentialBun(s.bun, service)
	if err == nil && ok {
		_ = s.LogAction("DELETE_CREDENTIAL", fmt.Sprintf("service: %s", service))
	}
	return ok, err
}

func (s *BunStore) SearchCredentials(keyword string) ([]model.CredentialRow, error) {
	return SearchCredentialsBun(s.bun, keyword)
}

func (s *BunStore) ListServices() ([]string, error) {
	return ListServicesBun(s.bun)
}

func (s *BunStore) CountCredentials() (int, error) {
	return CountCredentialsBun(s.bun)
}

// --- Audit log ---

func (s *BunStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

func (s *BunStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

// --- Backup / restore ---

func (s *BunStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

func (s *BunStore) ImportDataFromBackup(backup *model.BackupData) error {
	err := ImportDataFromBackupBun(s.bun, backup)
	if err == nil {
		_ = s.LogAction("RESTORE_BACKUP", fmt.Sprintf("full restore, %d credentials", len(backup.Credentials)))
	}
	return err
}

func (s *BunStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	err := IntegrateDataFromBackupBun(s.bun, backup)
	if err == nil {
		_ = s.LogAction("MERGE_BACKUP", fmt.Sprintf("merge restore, %d credentials in backup", len(backup.Credentials)))
	}
	return err
}
