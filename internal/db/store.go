// Copyright (c) 2025 ToeiRei
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"github.com/toeirei/vaultmaster/internal/model"
)

// Store defines the interface for all database operations in Vaultmaster.
// This allows for multiple database backends to be implemented. The store
// deals strictly in persisted rows: credential fields arrive and leave as
// ciphertext, and no key material ever passes through this layer.
type Store interface {
	// Vault metadata methods
	InitializeVault(masterHash, saltHex string) (bool, error)
	IsVaultInitialized() (bool, error)
	GetMasterHash() (string, error)
	GetSalt() (string, error)

	// Credential methods
	AddCredential(service, username, password, notes string) (bool, error)
	GetCredential(service string) (*model.CredentialRow, error)
	UpdateCredential(service, username, password, notes string) (bool, error)
	DeleteCredential(service string) (bool, error)
	SearchCredentials(keyword string) ([]model.CredentialRow, error)
	ListServices() ([]string, error)
	CountCredentials() (int, error)

	// Audit Log methods
	GetAllAuditLogEntries() ([]model.AuditLogEntry, error)
	LogAction(action string, details string) error

	// Backup methods
	ExportDataForBackup() (*model.BackupData, error)
	ImportDataFromBackup(backup *model.BackupData) error
	IntegrateDataFromBackup(backup *model.BackupData) error

	// Close releases the underlying database handle.
	Close() error
}
