// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil provides test doubles shared across packages. Nothing in
// here touches a real database.
package testutil

import "github.com/toeirei/vaultmaster/internal/model"

// FakeStore is a db.Store double with injectable per-method behavior. The
// zero value behaves like an empty, uninitialized vault; tests override
// individual func fields to force specific storage outcomes, typically
// errors that a healthy SQLite file never produces.
type FakeStore struct {
	InitializeVaultFunc         func(masterHash, saltHex string) (bool, error)
	IsVaultInitializedFunc      func() (bool, error)
	GetMasterHashFunc           func() (string, error)
	GetSaltFunc                 func() (string, error)
	AddCredentialFunc           func(service, username, password, notes string) (bool, error)
	GetCredentialFunc           func(service string) (*model.CredentialRow, error)
	UpdateCredentialFunc        func(service, username, password, notes string) (bool, error)
	DeleteCredentialFunc        func(service string) (bool, error)
	SearchCredentialsFunc       func(keyword string) ([]model.CredentialRow, error)
	ListServicesFunc            func() ([]string, error)
	CountCredentialsFunc        func() (int, error)
	GetAllAuditLogEntriesFunc   func() ([]model.AuditLogEntry, error)
	LogActionFunc               func(action, details string) error
	ExportDataForBackupFunc     func() (*model.BackupData, error)
	ImportDataFromBackupFunc    func(backup *model.BackupData) error
	IntegrateDataFromBackupFunc func(backup *model.BackupData) error
	CloseFunc                   func() error
}

func (f *FakeStore) InitializeVault(masterHash, saltHex string) (bool, error) {
	if f.InitializeVaultFunc != nil {
		return f.InitializeVaultFunc(masterHash, saltHex)
	}
	return true, nil
}

func (f *FakeStore) IsVaultInitialized() (bool, error) {
	if f.IsVaultInitializedFunc != nil {
		return f.IsVaultInitializedFunc()
	}
	return false, nil
}

func (f *FakeStore) GetMasterHash() (string, error) {
	if f.GetMasterHashFunc != nil {
		return f.GetMasterHashFunc()
	}
	return "", nil
}

func (f *FakeStore) GetSalt() (string, error) {
	if f.GetSaltFunc != nil {
		return f.GetSaltFunc()
	}
	return "", nil
}

func (f *FakeStore) AddCredential(service, username, password, notes string) (bool, error) {
	if f.AddCredentialFunc != nil {
		return f.AddCredentialFunc(service, username, password, notes)
	}
	return true, nil
}

func (f *FakeStore) GetCredential(service string) (*model.CredentialRow, error) {
	if f.GetCredentialFunc != nil {
		return f.GetCredentialFunc(service)
	}
	return nil, nil
}

func (f *FakeStore) UpdateCredential(service, username, password, notes string) (bool, error) {
	if f.UpdateCredentialFunc != nil {
		return f.UpdateCredentialFunc(service, username, password, notes)
	}
	return false, nil
}

func (f *FakeStore) DeleteCredential(service string) (bool, error) {
	if f.DeleteCredentialFunc != nil {
		return f.DeleteCredentialFunc(service)
	}
	return false, nil
}

func (f *FakeStore) SearchCredentials(keyword string) ([]model.CredentialRow, error) {
	if f.SearchCredentialsFunc != nil {
		return f.SearchCredentialsFunc(keyword)
	}
	return nil, nil
}

func (f *FakeStore) ListServices() ([]string, error) {
	if f.ListServicesFunc != nil {
		return f.ListServicesFunc()
	}
	return nil, nil
}

func (f *FakeStore) CountCredentials() (int, error) {
	if f.CountCredentialsFunc != nil {
		return f.CountCredentialsFunc()
	}
	return 0, nil
}

func (f *FakeStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	if f.GetAllAuditLogEntriesFunc != nil {
		return f.GetAllAuditLogEntriesFunc()
	}
	return nil, nil
}

func (f *FakeStore) LogAction(action, details string) error {
	if f.LogActionFunc != nil {
		return f.LogActionFunc(action, details)
	}
	return nil
}

func (f *FakeStore) ExportDataForBackup() (*model.BackupData, error) {
	if f.ExportDataForBackupFunc != nil {
		return f.ExportDataForBackupFunc()
	}
	return &model.BackupData{SchemaVersion: 1}, nil
}

func (f *FakeStore) ImportDataFromBackup(backup *model.BackupData) error {
	if f.ImportDataFromBackupFunc != nil {
		return f.ImportDataFromBackupFunc(backup)
	}
	return nil
}

func (f *FakeStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	if f.IntegrateDataFromBackupFunc != nil {
		return f.IntegrateDataFromBackupFunc(backup)
	}
	return nil
}

func (f *FakeStore) Close() error {
	if f.CloseFunc != nil {
		return f.CloseFunc()
	}
	return nil
}
