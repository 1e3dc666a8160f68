// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the core data structures shared between the vault
// core and the persistence layer.
package model // import "github.com/toeirei/vaultmaster/internal/model"

import (
	"fmt"
	"time"
)

// Credential is a fully decrypted vault entry as handed to callers. It only
// exists in memory for the duration of the operation that produced it.
type Credential struct {
	Service   string
	Username  string
	Password  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// String returns the service name, annotated with the username when one is
// set. Secret fields are never part of the output.
func (c Credential) String() string {
	if c.Username != "" {
		return fmt.Sprintf("%s (%s)", c.Service, c.Username)
	}
	return c.Service
}

// CredentialRow is a persisted vault entry exactly as stored: username,
// password and notes carry ciphertext, or the empty string for unset
// optional fields. The service name is the single plaintext column.
type CredentialRow struct {
	ID        int       `json:"id"`
	Service   string    `json:"service"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetadataEntry is one key/value row from the vault metadata table.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AuditLogEntry records a single vault action for the audit trail. Details
// may name services, which are plaintext in the store anyway; secrets and
// master passwords are never written here.
type AuditLogEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// BackupData is a container for all data exported in a vault backup.
// Values are carried verbatim, so credential fields stay encrypted and the
// backup never holds plaintext secrets.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Metadata        []MetadataEntry `json:"metadata"`
	Credentials     []CredentialRow `json:"credentials"`
	AuditLogEntries []AuditLogEntry `json:"audit_log_entries"`
}
