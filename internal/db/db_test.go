package db

import (
	"database/sql"
	"strings"
	"testing"
)

func TestNew_MigrationsApplied(t *testing.T) {
	WithTestStore(t, func(s Store) {
		bs, ok := s.(*BunStore)
		if !ok {
			t.Fatalf("expected *BunStore, got %T", s)
		}
		sqlDB := bs.BunDB().DB

		rows, err := sqlDB.Query("PRAGMA table_info(schema_migrations)")
		if err != nil {
			t.Fatalf("failed to query schema_migrations table info: %v", err)
		}
		defer func() { _ = rows.Close() }()

		foundAppliedAt := false
		for rows.Next() {
			var cid int
			var name string
			var typ string
			var notnull int
			var dflt sql.NullString
			var pk int
			if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
				t.Fatalf("failed scanning pragma row: %v", err)
			}
			if name == "applied_at" {
				foundAppliedAt = true
				break
			}
		}
		if !foundAppliedAt {
			t.Fatalf("expected schema_migrations.applied_at column to exist after migrations")
		}

		// All three vault tables must exist after migrations.
		for _, table := range []string{"metadata", "credentials", "audit_log"} {
			var name string
			err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Fatalf("expected table %s to exist: %v", table, err)
			}
		}
	})
}

func TestNew_UnsupportedType(t *testing.T) {
	if _, err := New("oracle", "whatever"); err == nil {
		t.Fatalf("expected error for unsupported database type")
	}
}

func TestInitializeVault_Lifecycle(t *testing.T) {
	WithTestStore(t, func(s Store) {
		initialized, err := s.IsVaultInitialized()
		if err != nil {
			t.Fatalf("IsVaultInitialized failed: %v", err)
		}
		if initialized {
			t.Fatalf("fresh store must not report initialized")
		}

		ok, err := s.InitializeVault("hash-one", "73616c74")
		if err != nil {
			t.Fatalf("InitializeVault failed: %v", err)
		}
		if !ok {
			t.Fatalf("expected first InitializeVault to succeed")
		}

		initialized, err = s.IsVaultInitialized()
		if err != nil {
			t.Fatalf("IsVaultInitialized failed: %v", err)
		}
		if !initialized {
			t.Fatalf("store must report initialized after InitializeVault")
		}

		hash, err := s.GetMasterHash()
		if err != nil {
			t.Fatalf("GetMasterHash failed: %v", err)
		}
		if hash != "hash-one" {
			t.Fatalf("GetMasterHash = %q; want %q", hash, "hash-one")
		}
		salt, err := s.GetSalt()
		if err != nil {
			t.Fatalf("GetSalt failed: %v", err)
		}
		if salt != "73616c74" {
			t.Fatalf("GetSalt = %q; want %q", salt, "73616c74")
		}

		// A second initialization must be refused and leave the stored
		// verifier untouched.
		ok, err = s.InitializeVault("hash-two", "deadbeef")
		if err != nil {
			t.Fatalf("second InitializeVault errored: %v", err)
		}
		if ok {
			t.Fatalf("expected second InitializeVault to be refused")
		}
		hash, err = s.GetMasterHash()
		if err != nil {
			t.Fatalf("GetMasterHash failed: %v", err)
		}
		if hash != "hash-one" {
			t.Fatalf("refused init must not overwrite verifier, got %q", hash)
		}
	})
}

func TestGetMetadata_EmptyStore(t *testing.T) {
	WithTestStore(t, func(s Store) {
		hash, err := s.GetMasterHash()
		if err != nil {
			t.Fatalf("GetMasterHash on empty store errored: %v", err)
		}
		if hash != "" {
			t.Fatalf("expected empty master hash, got %q", hash)
		}
		salt, err := s.GetSalt()
		if err != nil {
			t.Fatalf("GetSalt on empty store errored: %v", err)
		}
		if salt != "" {
			t.Fatalf("expected empty salt, got %q", salt)
		}
	})
}

func TestCredential_AddGetDuplicate(t *testing.T) {
	WithTestStore(t, func(s Store) {
		ok, err := s.AddCredential("GitHub", "ct-user", "ct-pass", "ct-notes")
		if err != nil {
			t.Fatalf("AddCredential failed: %v", err)
		}
		if !ok {
			t.Fatalf("expected first AddCredential to succeed")
		}

		// Second insert with the same service name reports a duplicate as a
		// result, not an error.
		ok, err = s.AddCredential("GitHub", "other", "other", "")
		if err != nil {
			t.Fatalf("duplicate AddCredential errored: %v", err)
		}
		if ok {
			t.Fatalf("expected duplicate AddCredential to return false")
		}

		row, err := s.GetCredential("GitHub")
		if err != nil {
			t.Fatalf("GetCredential failed: %v", err)
		}
		if row == nil {
			t.Fatalf("expected credential row, got nil")
		}
		if row.Service != "GitHub" || row.Username != "ct-user" || row.Password != "ct-pass" || row.Notes != "ct-notes" {
			t.Fatalf("stored row does not match input: %+v", row)
		}
		if row.CreatedAt.IsZero() || row.UpdatedAt.IsZero() {
			t.Fatalf("expected timestamps to be set, got %+v", row)
		}

		// Unknown service resolves to (nil, nil).
		row, err = s.GetCredential("NoSuchService")
		if err != nil {
			t.Fatalf("GetCredential for absent service errored: %v", err)
		}
		if row != nil {
			t.Fatalf("expected nil row for absent service, got %+v", row)
		}
	})
}

func TestCredential_LookupIsExactMatch(t *testing.T) {
	WithTestStore(t, func(s Store) {
		if _, err := s.AddCredential("GitHub", "u", "p", ""); err != nil {
			t.Fatalf("AddCredential failed: %v", err)
		}
		row, err := s.GetCredential("github")
		if err != nil {
			t.Fatalf("GetCredential failed: %v", err)
		}
		if row != nil {
			t.Fatalf("lookup must be exact; %q should not match %q", "github", "GitHub")
		}
	})
}

func TestCredential_Update(t *testing.T) {
	WithTestStore(t, func(s Store) {
		if _, err := s.AddCredential("Gmail", "old-u", "old-p", "old-n"); err != nil {
			t.Fatalf("AddCredential failed: %v", err)
		}
		before, err := s.GetCredential("Gmail")
		if err != nil || before == nil {
			t.Fatalf("GetCredential failed: %v", err)
		}

		ok, err := s.UpdateCredential("Gmail", "new-u", "new-p", "new-n")
		if err != nil {
			t.Fatalf("UpdateCredential failed: %v", err)
		}
		if !ok {
			t.Fatalf("expected UpdateCredential to report success")
		}

		after, err := s.GetCredential("Gmail")
		if err != nil || after == nil {
			t.Fatalf("GetCredential after update failed: %v", err)
		}
		if after.Username != "new-u" || after.Password != "new-p" || after.Notes != "new-n" {
			t.Fatalf("update did not overwrite fields: %+v", after)
		}
		if !after.CreatedAt.Equal(before.CreatedAt) {
			t.Fatalf("update must not touch created_at: before=%v after=%v", before.CreatedAt, after.CreatedAt)
		}
		if after.UpdatedAt.Before(before.UpdatedAt) {
			t.Fatalf("updated_at went backwards: before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
		}

		ok, err = s.UpdateCredential("NoSuchService", "u", "p", "n")
		if err != nil {
			t.Fatalf("UpdateCredential for absent service errored: %v", err)
		}
		if ok {
			t.Fatalf("expected UpdateCredential to report false for absent service")
		}
	})
}

func TestCredential_Delete(t *testing.T) {
	WithTestStore(t, func(s Store) {
		if _, err := s.AddCredential("aws", "u", "p", ""); err != nil {
			t.Fatalf("AddCredential failed: %v", err)
		}
		ok, err := s.DeleteCredential("aws")
		if err != nil {
			t.Fatalf("DeleteCredential failed: %v", err)
		}
		if !ok {
			t.Fatalf("expected DeleteCredential to report success")
		}
		row, err := s.GetCredential("aws")
		if err != nil {
			t.Fatalf("GetCredential after delete errored: %v", err)
		}
		if row != nil {
			t.Fatalf("expected credential gone after delete, got %+v", row)
		}
		ok, err = s.DeleteCredential("aws")
		if err != nil {
			t.Fatalf("second DeleteCredential errored: %v", err)
		}
		if ok {
			t.Fatalf("expected second DeleteCredential to report false")
		}
	})
}

func TestSearchCredentials(t *testing.T) {
	WithTestStore(t, func(s Store) {
		for _, svc := range []string{"Gmail", "GitHub", "Google Drive", "aws"} {
			if _, err := s.AddCredential(svc, "u", "p", ""); err != nil {
				t.Fatalf("AddCredential(%s) failed: %v", svc, err)
			}
		}

		cases := []struct {
			name    string
			keyword string
			want    []string
		}{
			{"exact fragment", "Git", []string{"GitHub"}},
			{"case insensitive", "git", []string{"GitHub"}},
			{"shared prefix ordered", "G", []string{"GitHub", "Gmail", "Google Drive"}},
			{"empty keyword matches all", "", []string{"GitHub", "Gmail", "Google Drive", "aws"}},
			{"no match", "zzz", nil},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				rows, err := s.SearchCredentials(c.keyword)
				if err != nil {
					t.Fatalf("SearchCredentials(%q) failed: %v", c.keyword, err)
				}
				if len(rows) != len(c.want) {
					t.Fatalf("SearchCredentials(%q) returned %d rows; want %d", c.keyword, len(rows), len(c.want))
				}
				for i, w := range c.want {
					if rows[i].Service != w {
						t.Fatalf("SearchCredentials(%q)[%d] = %q; want %q", c.keyword, i, rows[i].Service, w)
					}
				}
			})
		}
	})
}

func TestListServicesAndCount(t *testing.T) {
	WithTestStore(t, func(s Store) {
		services, err := s.ListServices()
		if err != nil {
			t.Fatalf("ListServices on empty store failed: %v", err)
		}
		if len(services) != 0 {
			t.Fatalf("expected no services on empty store, got %v", services)
		}

		for _, svc := range []string{"Gmail", "GitHub"} {
			if _, err := s.AddCredential(svc, "u", "p", ""); err != nil {
				t.Fatalf("AddCredential(%s) failed: %v", svc, err)
			}
		}

		services, err = s.ListServices()
		if err != nil {
			t.Fatalf("ListServices failed: %v", err)
		}
		if len(services) != 2 || services[0] != "GitHub" || services[1] != "Gmail" {
			t.Fatalf("ListServices = %v; want [GitHub Gmail]", services)
		}

		count, err := s.CountCredentials()
		if err != nil {
			t.Fatalf("CountCredentials failed: %v", err)
		}
		if count != 2 {
			t.Fatalf("CountCredentials = %d; want 2", count)
		}
	})
}

func TestAuditLog_RecordsMutations(t *testing.T) {
	WithTestStore(t, func(s Store) {
		if _, err := s.InitializeVault("h", "73"); err != nil {
			t.Fatalf("InitializeVault failed: %v", err)
		}
		if _, err := s.AddCredential("GitHub", "u", "p", ""); err != nil {
			t.Fatalf("AddCredential failed: %v", err)
		}
		if _, err := s.UpdateCredential("GitHub", "u2", "p2", ""); err != nil {
			t.Fatalf("UpdateCredential failed: %v", err)
		}
		if _, err := s.DeleteCredential("GitHub"); err != nil {
			t.Fatalf("DeleteCredential failed: %v", err)
		}

		entries, err := s.GetAllAuditLogEntries()
		if err != nil {
			t.Fatalf("GetAllAuditLogEntries failed: %v", err)
		}
		wantActions := map[string]bool{
			"INIT_VAULT":        false,
			"ADD_CREDENTIAL":    false,
			"UPDATE_CREDENTIAL": false,
			"DELETE_CREDENTIAL": false,
		}
		for _, e := range entries {
			if _, tracked := wantActions[e.Action]; tracked {
				wantActions[e.Action] = true
			}
			if e.Username == "" {
				t.Fatalf("audit entry missing username: %+v", e)
			}
			if strings.Contains(e.Details, "p2") {
				t.Fatalf("audit details must never carry stored field values: %+v", e)
			}
		}
		for action, seen := range wantActions {
			if !seen {
				t.Fatalf("expected audit entry for %s; got %+v", action, entries)
			}
		}
	})
}

func TestLogAction_Direct(t *testing.T) {
	WithTestStore(t, func(s Store) {
		if err := s.LogAction("TEST_ACTION", "details here"); err != nil {
			t.Fatalf("LogAction failed: %v", err)
		}
		entries, err := s.GetAllAuditLogEntries()
		if err != nil {
			t.Fatalf("GetAllAuditLogEntries failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected exactly one audit entry, got %d", len(entries))
		}
		if entries[0].Action != "TEST_ACTION" || entries[0].Details != "details here" {
			t.Fatalf("unexpected audit entry: %+v", entries[0])
		}
		if entries[0].Timestamp == "" {
			t.Fatalf("expected audit entry timestamp to be populated")
		}
	})
}
