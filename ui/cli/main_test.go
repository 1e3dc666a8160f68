// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

//nolint:errcheck
package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/charmbracelet/log"
)

const testMasterPassword = "correct horse battery staple"

// setupTestVault points the CLI at a unique in-memory SQLite database and an
// isolated config directory. The store itself opens lazily on the first
// command, through the same path production uses.
func setupTestVault(t *testing.T) {
	t.Helper()

	// Any default config written on first run lands in the test's temp dir.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// A unique shared-cache in-memory database per test keeps tests isolated
	// while the whole connection pool sees one database.
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	t.Setenv("VAULTMASTER_DATABASE_TYPE", "sqlite")
	t.Setenv("VAULTMASTER_DATABASE_DSN", dsn)
	t.Setenv("VAULTMASTER_LANGUAGE", "en")

	// The store is process wide. Close it so this test's environment applies,
	// and again afterwards so the next test starts fresh.
	closeStore()
	t.Cleanup(closeStore)
}

// executeCommand runs a fresh root command with the given arguments and
// captures everything written to stdout, stderr and the package logger. An
// optional reader stands in for stdin so prompts can be scripted.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) string {
	t.Helper()

	oldOut := os.Stdout
	oldErr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w
	log.SetOutput(w)
	defer log.SetOutput(oldErr)
	defer func() {
		os.Stdout = oldOut
		os.Stderr = oldErr
	}()

	if stdin != nil {
		oldIn := os.Stdin
		os.Stdin = stdin.(*os.File)
		defer func() { os.Stdin = oldIn }()
	}

	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read command output: %v", err)
	}
	return buf.String()
}

// pipeStdin returns a pipe read end pre-filled with input for commands that
// prompt. The input is written up front, so it must stay below the pipe
// buffer size; prompt answers always do.
func pipeStdin(t *testing.T, input string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create stdin pipe: %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("failed to write stdin pipe: %v", err)
	}
	w.Close()
	return r
}

func TestNoPasswordCmdsOnFreshVault(t *testing.T) {
	setupTestVault(t)

	t.Run("list should work without initialization", func(t *testing.T) {
		output := executeCommand(t, nil, "list")
		if !strings.Contains(output, "The vault is empty.") {
			t.Errorf("Expected empty vault message. Output:\n%s", output)
		}
	})

	t.Run("audit-log should work without initialization", func(t *testing.T) {
		output := executeCommand(t, nil, "audit-log")
		if !strings.Contains(output, "The audit log is empty.") {
			t.Errorf("Expected empty audit log message. Output:\n%s", output)
		}
	})
}

func TestInitCmd(t *testing.T) {
	setupTestVault(t)

	// The master password is typed twice, like at a real prompt.
	output := executeCommand(t, pipeStdin(t, testMasterPassword+"\n"+testMasterPassword+"\n"), "init")

	t.Run("should print success message", func(t *testing.T) {
		if !strings.Contains(output, "Vault initialized.") {
			t.Errorf("Expected output to contain the init success message. Output:\n%s", output)
		}
	})

	t.Run("second init should report already initialized", func(t *testing.T) {
		output := executeCommand(t, nil, "init")
		if !strings.Contains(output, "The vault is already initialized.") {
			t.Errorf("Expected output to report an existing vault. Output:\n%s", output)
		}
	})

	t.Run("audit log should record the initialization", func(t *testing.T) {
		output := executeCommand(t, nil, "audit-log")
		if !strings.Contains(output, "INIT_VAULT") {
			t.Errorf("Expected audit log to contain INIT_VAULT. Output:\n%s", output)
		}
	})
}

func TestCredentialCmds(t *testing.T) {
	setupTestVault(t)

	executeCommand(t, pipeStdin(t, testMasterPassword+"\n"+testMasterPassword+"\n"), "init")

	// --generate=false everywhere a prompt is expected: the generate flag is
	// shared package state and an earlier test may have left it switched on.
	output := executeCommand(t, pipeStdin(t, "s3cret-gh\n"), "add", "GitHub",
		"-u", "alice@example.com", "--generate=false", "--master-password", testMasterPassword)

	t.Run("add should confirm the stored service", func(t *testing.T) {
		if !strings.Contains(output, "Credential for 'GitHub' added.") {
			t.Errorf("Expected add confirmation for GitHub. Output:\n%s", output)
		}
	})

	t.Run("duplicate add should be refused", func(t *testing.T) {
		output := executeCommand(t, pipeStdin(t, "other\n"), "add", "GitHub",
			"--generate=false", "--master-password", testMasterPassword)
		if !strings.Contains(output, "An entry for 'GitHub' already exists.") {
			t.Errorf("Expected duplicate add to be refused. Output:\n%s", output)
		}
	})

	t.Run("generated add should echo a password of the requested length", func(t *testing.T) {
		output := executeCommand(t, nil, "add", "Email",
			"-u", "bob@example.com", "--generate", "--length", "24", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Credential for 'Email' added.") {
			t.Errorf("Expected add confirmation for Email. Output:\n%s", output)
		}

		var generated string
		for _, line := range strings.Split(output, "\n") {
			if strings.HasPrefix(line, "Generated password: ") {
				generated = strings.TrimPrefix(line, "Generated password: ")
			}
		}
		if len(generated) != 24 {
			t.Errorf("Expected a 24 character generated password, got %q. Output:\n%s", generated, output)
		}
	})

	t.Run("list should show services ordered by name", func(t *testing.T) {
		output := executeCommand(t, nil, "list")
		if !strings.Contains(output, "Stored services (2):") {
			t.Errorf("Expected two stored services. Output:\n%s", output)
		}
		if strings.Index(output, "Email") > strings.Index(output, "GitHub") {
			t.Errorf("Expected services in alphabetical order. Output:\n%s", output)
		}
	})

	t.Run("get should print the decrypted credential", func(t *testing.T) {
		output := executeCommand(t, nil, "get", "GitHub", "--master-password", testMasterPassword)
		for _, want := range []string{"Service: GitHub", "Username: alice@example.com", "Password: s3cret-gh", "Created:"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected output to contain %q. Output:\n%s", want, output)
			}
		}
	})

	t.Run("get should report unknown services", func(t *testing.T) {
		output := executeCommand(t, nil, "get", "Nope", "--master-password", testMasterPassword)
		if !strings.Contains(output, "No entry found for 'Nope'.") {
			t.Errorf("Expected a not-found message. Output:\n%s", output)
		}
	})

	t.Run("search should decrypt matches by service substring", func(t *testing.T) {
		output := executeCommand(t, nil, "search", "hub", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Found 1 result(s) for 'hub':") {
			t.Errorf("Expected one search result. Output:\n%s", output)
		}
		if !strings.Contains(output, "GitHub (alice@example.com)") {
			t.Errorf("Expected the decrypted match line. Output:\n%s", output)
		}
	})

	t.Run("search should report when nothing matches", func(t *testing.T) {
		output := executeCommand(t, nil, "search", "zzz", "--master-password", testMasterPassword)
		if !strings.Contains(output, "No services match 'zzz'.") {
			t.Errorf("Expected a no-match message. Output:\n%s", output)
		}
	})
}

func TestUpdateAndDeleteCmds(t *testing.T) {
	setupTestVault(t)

	executeCommand(t, pipeStdin(t, testMasterPassword+"\n"+testMasterPassword+"\n"), "init")
	executeCommand(t, pipeStdin(t, "old-pw\n"), "add", "GitHub",
		"-u", "alice@example.com", "--generate=false", "--master-password", testMasterPassword)

	t.Run("update should replace the stored fields", func(t *testing.T) {
		output := executeCommand(t, pipeStdin(t, "n3w-pw\n"), "update", "GitHub",
			"-u", "carol@example.com", "--generate=false", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Credential for 'GitHub' updated.") {
			t.Errorf("Expected update confirmation. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "get", "GitHub", "--master-password", testMasterPassword)
		for _, want := range []string{"Username: carol@example.com", "Password: n3w-pw"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected output to contain %q. Output:\n%s", want, output)
			}
		}
	})

	t.Run("update should report unknown services", func(t *testing.T) {
		output := executeCommand(t, pipeStdin(t, "whatever\n"), "update", "Nope",
			"--generate=false", "--master-password", testMasterPassword)
		if !strings.Contains(output, "No entry found for 'Nope'.") {
			t.Errorf("Expected a not-found message. Output:\n%s", output)
		}
	})

	t.Run("delete should honor an aborted confirmation", func(t *testing.T) {
		output := executeCommand(t, pipeStdin(t, "n\n"), "delete", "GitHub",
			"--force=false", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Aborted.") {
			t.Errorf("Expected the delete to abort. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "list")
		if !strings.Contains(output, "GitHub") {
			t.Errorf("Expected the credential to survive an aborted delete. Output:\n%s", output)
		}
	})

	t.Run("forced delete should remove the credential", func(t *testing.T) {
		output := executeCommand(t, nil, "delete", "GitHub", "--force", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Credential for 'GitHub' deleted.") {
			t.Errorf("Expected delete confirmation. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "delete", "GitHub", "--force", "--master-password", testMasterPassword)
		if !strings.Contains(output, "No entry found for 'GitHub'.") {
			t.Errorf("Expected a not-found message on repeat delete. Output:\n%s", output)
		}
	})

	t.Run("audit log should record actions newest first", func(t *testing.T) {
		output := executeCommand(t, nil, "audit-log")
		for _, action := range []string{"INIT_VAULT", "ADD_CREDENTIAL", "UPDATE_CREDENTIAL", "DELETE_CREDENTIAL"} {
			if !strings.Contains(output, action) {
				t.Errorf("Expected audit log to contain %s. Output:\n%s", action, output)
			}
		}
		if strings.Index(output, "DELETE_CREDENTIAL") > strings.Index(output, "INIT_VAULT") {
			t.Errorf("Expected newest entries first. Output:\n%s", output)
		}
	})
}

func TestBackupRestoreCmds(t *testing.T) {
	setupTestVault(t)

	executeCommand(t, pipeStdin(t, testMasterPassword+"\n"+testMasterPassword+"\n"), "init")
	executeCommand(t, pipeStdin(t, "pw-one\n"), "add", "GitHub",
		"-u", "alice@example.com", "--generate=false", "--master-password", testMasterPassword)

	backupFile := filepath.Join(t.TempDir(), "vault-backup.json.zst")
	output := executeCommand(t, nil, "backup", backupFile, "--master-password", testMasterPassword)

	t.Run("backup should write the archive", func(t *testing.T) {
		if !strings.Contains(output, "Backup written to "+backupFile) {
			t.Errorf("Expected backup confirmation. Output:\n%s", output)
		}
		if _, err := os.Stat(backupFile); err != nil {
			t.Fatalf("Expected the backup file to exist: %v", err)
		}
	})

	t.Run("merge restore should bring a deleted credential back", func(t *testing.T) {
		output := executeCommand(t, nil, "delete", "GitHub", "--force", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Credential for 'GitHub' deleted.") {
			t.Fatalf("Expected delete confirmation. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "restore", backupFile, "--master-password", testMasterPassword)
		if !strings.Contains(output, "Restore complete.") {
			t.Fatalf("Expected restore confirmation. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "get", "GitHub", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Password: pw-one") {
			t.Errorf("Expected the restored credential to decrypt. Output:\n%s", output)
		}
	})

	t.Run("full restore should replace the vault wholesale", func(t *testing.T) {
		output := executeCommand(t, pipeStdin(t, "y\n"), "restore", backupFile, "--full", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Restore complete.") {
			t.Fatalf("Expected restore confirmation. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "get", "GitHub", "--master-password", testMasterPassword)
		if !strings.Contains(output, "Username: alice@example.com") {
			t.Errorf("Expected the restored credential to decrypt. Output:\n%s", output)
		}

		output = executeCommand(t, nil, "audit-log")
		if !strings.Contains(output, "RESTORE_BACKUP") {
			t.Errorf("Expected the audit log to record the restore. Output:\n%s", output)
		}
	})
}

func TestDbMaintainCmd(t *testing.T) {
	setupTestVault(t)

	output := executeCommand(t, nil, "db-maintain")
	if !strings.Contains(output, "Running maintenance on the sqlite database...") {
		t.Errorf("Expected the maintenance banner. Output:\n%s", output)
	}
	if !strings.Contains(output, "Database maintenance complete.") {
		t.Errorf("Expected maintenance to finish. Output:\n%s", output)
	}
}

func TestVersionCmd(t *testing.T) {
	setupTestVault(t)

	output := executeCommand(t, nil, "version")
	if !strings.Contains(output, "version: ") {
		t.Errorf("Expected a version line. Output:\n%s", output)
	}
	if !strings.Contains(output, "commit: ") {
		t.Errorf("Expected a commit line. Output:\n%s", output)
	}
}

func TestLanguageFlag_SwitchesOutputLanguage(t *testing.T) {
	setupTestVault(t)

	output := executeCommand(t, nil, "list", "--language", "de")
	if !strings.Contains(output, "Der Tresor ist leer.") {
		t.Errorf("Expected German output with --language de. Output:\n%s", output)
	}
}
