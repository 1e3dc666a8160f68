// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/toeirei/vaultmaster/internal/model"
	"github.com/uptrace/bun"
)

// Metadata keys for the vault's two singleton entries.
const (
	metaKeyMasterHash = "master_hash"
	metaKeySalt       = "salt"
)

// CredentialModel maps the `credentials` table for Bun queries.
type CredentialModel struct {
	bun.BaseModel `bun:"table:credentials"`
	ID            int       `bun:"id,pk,autoincrement"`
	Service       string    `bun:"service"`
	Username      string    `bun:"username"`
	Password      string    `bun:"password"`
	Notes         string    `bun:"notes"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// MetadataModel maps the key/value `metadata` table.
type MetadataModel struct {
	bun.BaseModel `bun:"table:metadata"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Username      string `bun:"username"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
}

// execRawProvider is a small interface used to accept either *bun.DB or *bun.Tx
// since both expose NewRaw(...).* methods returning *bun.RawQuery.
type execRawProvider interface {
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// ExecRaw executes a raw SQL statement using the provided Bun DB or transaction.
// It returns the standard sql.Result to match existing call sites.
func ExecRaw(ctx context.Context, exec execRawProvider, query string, args ...interface{}) (sql.Result, error) {
	return exec.NewRaw(query, args...).Exec(ctx)
}

// QueryRawInto runs a raw query and scans the result into dest using Bun's RawQuery.Scan.
func QueryRawInto(ctx context.Context, exec execRawProvider, dest interface{}, query string, args ...interface{}) error {
	return exec.NewRaw(query, args...).Scan(ctx, dest)
}

// WithTx runs fn inside a database transaction, committing on success and
// rolling back when fn returns an error.
func WithTx(ctx context.Context, bdb *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	return bdb.RunInTx(ctx, nil, fn)
}

func credentialModelToRow(c CredentialModel) model.CredentialRow {
	return model.CredentialRow{
		ID:        c.ID,
		Service:   c.Service,
		Username:  c.Username,
		Password:  c.Password,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// --- Vault metadata helpers ---

// GetMetadataValueBun returns the value for a metadata key, or "" when the
// key is absent.
func GetMetadataValueBun(bdb *bun.DB, key string) (string, error) {
	ctx := context.Background()
	var mm MetadataModel
	err := bdb.NewSelect().Model(&mm).Where("? = ?", bun.Ident("key"), key).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return mm.Value, nil
}

// IsVaultInitializedBun reports whether both metadata entries written by
// initialization are present.
func IsVaultInitializedBun(bdb *bun.DB) (bool, error) {
	ctx := context.Background()
	count, err := bdb.NewSelect().Model((*MetadataModel)(nil)).
		Where("? IN (?)", bun.Ident("key"), bun.In([]string{metaKeyMasterHash, metaKeySalt})).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 2, nil
}

// InitializeVaultBun writes the verifier and salt in a single transaction.
// It returns false without touching anything when any metadata entry already
// exists; initialization fires exactly once per vault.
func InitializeVaultBun(bdb *bun.DB, masterHash, saltHex string) (bool, error) {
	ctx := context.Background()
	initialized := false
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*MetadataModel)(nil)).
			Where("? IN (?)", bun.Ident("key"), bun.In([]string{metaKeyMasterHash, metaKeySalt})).
			Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			// A partial pair counts as initialized too; overwriting a
			// leftover salt would orphan existing ciphertexts.
			return nil
		}
		rows := []MetadataModel{
			{Key: metaKeyMasterHash, Value: masterHash},
			{Key: metaKeySalt, Value: saltHex},
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		initialized = true
		return nil
	})
	return initialized, err
}

// --- Credential helpers ---

// AddCredentialBun inserts a credential row with fresh timestamps. It returns
// false when the service name is already taken.
func AddCredentialBun(bdb *bun.DB, service, username, password, notes string) (bool, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	cm := &CredentialModel{
		Service:   service,
		Username:  username,
		Password:  password,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := bdb.NewInsert().Model(cm).
		Column("service", "username", "password", "notes", "created_at", "updated_at").
		Exec(ctx); err != nil {
		if mapped := MapDBError(err); mapped == ErrDuplicate {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetCredentialBun retrieves a credential row by exact service name.
// Returns (nil, nil) when no row matches.
func GetCredentialBun(bdb *bun.DB, service string) (*model.CredentialRow, error) {
	ctx := context.Background()
	var cm CredentialModel
	err := bdb.NewSelect().Model(&cm).Where("service = ?", service).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	row := credentialModelToRow(cm)
	return &row, nil
}

// UpdateCredentialBun overwrites the three ciphertext columns and refreshes
// updated_at, leaving created_at untouched. Returns false when no row
// matches the service name.
func UpdateCredentialBun(bdb *bun.DB, service, username, password, notes string) (bool, error) {
	ctx := context.Background()
	res, err := bdb.NewUpdate().Model((*CredentialModel)(nil)).
		Set("username = ?", username).
		Set("password = ?", password).
		Set("notes = ?", notes).
		Set("updated_at = ?", time.Now().UTC()).
		Where("service = ?", service).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteCredentialBun removes a credential row by service name. Returns
// false when no row matches.
func DeleteCredentialBun(bdb *bun.DB, service string) (bool, error) {
	ctx := context.Background()
	res, err := bdb.NewDelete().Model((*CredentialModel)(nil)).Where("service = ?", service).Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SearchCredentialsBun performs a portable substring search over the
// plaintext service column. Matching uses LOWER(...) so behavior is
// case-insensitive and identical across engines; results are ordered by
// service. An empty keyword matches every row.
func SearchCredentialsBun(bdb *bun.DB, keyword string) ([]model.CredentialRow, error) {
	ctx := context.Background()
	var cm []CredentialModel
	q := bdb.NewSelect().Model(&cm)
	if keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		q = q.Where("LOWER(service) LIKE ?", like)
	}
	if err := q.OrderExpr("service").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.CredentialRow, 0, len(cm))
	for _, c := range cm {
		out = append(out, credentialModelToRow(c))
	}
	return out, nil
}

// ListServicesBun returns all service names ordered by service.
func ListServicesBun(bdb *bun.DB) ([]string, error) {
	ctx := context.Background()
	var services []string
	err := bdb.NewSelect().Model((*CredentialModel)(nil)).
		Column("service").
		OrderExpr("service").
		Scan(ctx, &services)
	if err != nil {
		return nil, err
	}
	return services, nil
}

// CountCredentialsBun returns the number of stored credentials.
func CountCredentialsBun(bdb *bun.DB) (int, error) {
	ctx := context.Background()
	return bdb.NewSelect().Model((*CredentialModel)(nil)).Count(ctx)
}

// --- Audit log helpers ---

// GetAllAuditLogEntriesBun retrieves audit log entries ordered by timestamp desc.
func GetAllAuditLogEntriesBun(bdb *bun.DB) ([]model.AuditLogEntry, error) {
	ctx := context.Background()
	var am []AuditLogModel
	if err := bdb.NewSelect().Model(&am).OrderExpr("timestamp DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(am))
	for _, a := range am {
		out = append(out, model.AuditLogEntry{ID: a.ID, Timestamp: a.Timestamp, Username: a.Username, Action: a.Action, Details: a.Details})
	}
	return out, nil
}

// LogActionBun inserts an audit log entry with the current OS user.
func LogActionBun(bdb *bun.DB, action string, details string) error {
	ctx := context.Background()
	curUser, err := user.Current()
	username := "unknown"
	if err == nil {
		if parts := strings.Split(curUser.Username, `\`); len(parts) > 1 {
			username = parts[1]
		} else {
			username = curUser.Username
		}
	}
	_, err = ExecRaw(ctx, bdb, "INSERT INTO audit_log (username, action, details) VALUES (?, ?, ?)", username, action, details)
	return MapDBError(err)
}

// --- Backup helpers ---

// ExportDataForBackupBun exports all tables' data into a model.BackupData
// using a Bun transaction. Credential values leave exactly as stored, so the
// export carries ciphertext only.
func ExportDataForBackupBun(bdb *bun.DB) (*model.BackupData, error) {
	ctx := context.Background()
	var backup *model.BackupData
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: 1}

		// Metadata
		var mms []MetadataModel
		if err := tx.NewSelect().Model(&mms).OrderExpr("?", bun.Ident("key")).Scan(ctx); err != nil {
			return err
		}
		for _, m := range mms {
			backup.Metadata = append(backup.Metadata, model.MetadataEntry{Key: m.Key, Value: m.Value})
		}

		// Credentials
		var cms []CredentialModel
		if err := tx.NewSelect().Model(&cms).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, c := range cms {
			backup.Credentials = append(backup.Credentials, credentialModelToRow(c))
		}

		// Audit log
		var als []AuditLogModel
		if err := tx.NewSelect().Model(&als).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, a := range als {
			backup.AuditLogEntries = append(backup.AuditLogEntries, model.AuditLogEntry{ID: a.ID, Timestamp: a.Timestamp, Username: a.Username, Action: a.Action, Details: a.Details})
		}

		return nil
	})
	return backup, err
}

// ImportDataFromBackupBun performs a full wipe-and-replace using a Bun transaction.
func ImportDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		// Wipe tables
		for _, t := range []string{"audit_log", "credentials", "metadata"} {
			if _, err := ExecRaw(ctx, tx, fmt.Sprintf("DELETE FROM %s", t)); err != nil {
				return err
			}
		}

		// Metadata
		if len(backup.Metadata) > 0 {
			rows := make([]MetadataModel, 0, len(backup.Metadata))
			for _, m := range backup.Metadata {
				rows = append(rows, MetadataModel{Key: m.Key, Value: m.Value})
			}
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}

		// Credentials, keeping original IDs and timestamps.
		if len(backup.Credentials) > 0 {
			rows := make([]CredentialModel, 0, len(backup.Credentials))
			for _, c := range backup.Credentials {
				rows = append(rows, CredentialModel{
					ID:        c.ID,
					Service:   c.Service,
					Username:  c.Username,
					Password:  c.Password,
					Notes:     c.Notes,
					CreatedAt: c.CreatedAt,
					UpdatedAt: c.UpdatedAt,
				})
			}
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}

		// Audit log: convert RFC3339 timestamps to time.Time when possible so
		// MySQL accepts them.
		for _, ale := range backup.AuditLogEntries {
			var ts interface{} = ale.Timestamp
			if ale.Timestamp != "" {
				if parsed, err := time.Parse(time.RFC3339, ale.Timestamp); err == nil {
					ts = parsed
				} else {
					// Fallback: convert 'T' separator to space and strip trailing 'Z'.
					s := ale.Timestamp
					s = strings.Replace(s, "T", " ", 1)
					s = strings.TrimSuffix(s, "Z")
					ts = s
				}
			}
			if _, err := ExecRaw(ctx, tx, "INSERT INTO audit_log (id, timestamp, username, action, details) VALUES (?, ?, ?, ?, ?)", ale.ID, ts, ale.Username, ale.Action, ale.Details); err != nil {
				return MapDBError(err)
			}
		}
		return nil
	})
}

// IntegrateDataFromBackupBun performs a non-destructive restore: existing
// rows win, backup rows fill the gaps. Metadata is never overwritten; a
// backup's salt must not clobber a live vault's.
func IntegrateDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		if len(backup.Metadata) > 0 {
			rows := make([]MetadataModel, 0, len(backup.Metadata))
			for _, m := range backup.Metadata {
				rows = append(rows, MetadataModel{Key: m.Key, Value: m.Value})
			}
			if _, err := tx.NewInsert().Model(&rows).Ignore().Exec(ctx); err != nil {
				return err
			}
		}
		// Credentials merge on the unique service name; IDs are reassigned
		// so a backup row never collides with an unrelated live row.
		for _, c := range backup.Credentials {
			cm := CredentialModel{
				Service:   c.Service,
				Username:  c.Username,
				Password:  c.Password,
				Notes:     c.Notes,
				CreatedAt: c.CreatedAt,
				UpdatedAt: c.UpdatedAt,
			}
			if _, err := tx.NewInsert().Model(&cm).
				Column("service", "username", "password", "notes", "created_at", "updated_at").
				Ignore().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
