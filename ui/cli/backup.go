// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// backup.go implements the backup, restore and db-maintain commands.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/toeirei/vaultmaster/internal/db"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/model"
)

var fullRestore bool // Flag for the restore command

// backupCmd represents the 'backup' command.
// It dumps all vault data into a single compressed JSON file.
var backupCmd = &cobra.Command{
	Use:   "backup [output-file]",
	Short: "Create a compressed (zstd) JSON backup of the vault",
	Long: `Dumps the entire vault (metadata, credentials, audit log) into a
single, Zstandard-compressed JSON file. Credential fields stay
encrypted in the export, so the backup is exactly as protected as the
vault itself.

If an output file is specified, '.zst' will be appended to the name if
it's not already present. If no output file is specified, a default
filename 'vaultmaster-backup-YYYY-MM-DD.json.zst' is used.

This file can be used for disaster recovery or for migrating to a
different database backend.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var outputFile string
		if len(args) == 0 {
			outputFile = fmt.Sprintf("vaultmaster-backup-%s.json.zst", time.Now().Format("2006-01-02"))
		} else {
			outputFile = args[0]
			if !strings.HasSuffix(outputFile, ".zst") {
				outputFile += ".zst"
			}
		}

		master, err := promptMasterPassword()
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		fmt.Println(i18n.T("backup.starting"))
		data, err := appVault.Backup(master)
		if err != nil {
			fatalVaultErr(err)
		}
		if err := writeCompressedBackup(outputFile, data); err != nil {
			log.Fatalf("%s", i18n.T("backup.error_write", err))
		}
		fmt.Println(i18n.T("backup.success", outputFile))
	},
}

// restoreCmd represents the 'restore' command.
// It restores the vault from a compressed JSON backup file.
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file.zst>",
	Short: "Restore the vault from a compressed JSON backup",
	Long: `Restores the vault from a Zstandard-compressed JSON backup file. By
default this performs a non-destructive merge: existing credentials
win, and only missing ones arrive from the backup. The live master
password and salt are never replaced by a merge.

To perform a full, destructive restore that WIPES all existing data
before importing, use the --full flag. A full restore also installs
the backup's master password verifier and salt, so the password from
backup time applies afterwards.

Restoring into a fresh, uninitialized vault needs no password.

Example (Merge):
  vaultmaster restore ./vaultmaster-backup-2026-08-25.json.zst

Example (Full Restore):
  vaultmaster restore --full ./vaultmaster-backup-2026-08-25.json.zst`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		data, err := readCompressedBackup(inputFile)
		if err != nil {
			log.Fatalf("%s", i18n.T("restore.error_read", err))
		}

		initialized, err := appVault.IsInitialized()
		if err != nil {
			fatalVaultErr(err)
		}

		master := ""
		if initialized {
			master, err = promptMasterPassword()
			if err != nil {
				log.Fatalf("%s", i18n.T("error.generic", err))
			}
			if fullRestore {
				if !confirm(i18n.T("restore.confirm_full")) {
					fmt.Println(i18n.T("restore.aborted"))
					return
				}
			}
		}

		fmt.Println(i18n.T("restore.starting", inputFile))
		if err := appVault.Restore(master, data, !fullRestore); err != nil {
			fatalVaultErr(err)
		}
		fmt.Println(i18n.T("restore.success"))
	},
}

// dbMaintainCmd represents the 'db-maintain' command.
var dbMaintainCmd = &cobra.Command{
	Use:   "db-maintain",
	Short: "Run database maintenance (VACUUM, integrity checks)",
	Long: `Runs engine-specific maintenance against the configured database:
PRAGMA optimize, VACUUM, WAL checkpoint and integrity_check for
SQLite; VACUUM ANALYZE for PostgreSQL; OPTIMIZE TABLE for MySQL.`,
	Run: func(cmd *cobra.Command, args []string) {
		dbType := appConfig.Database.Type
		dsn := appConfig.Database.Dsn

		// Release the pool first so SQLite VACUUM runs unobstructed.
		closeStore()

		fmt.Println(i18n.T("db_maintain.starting", dbType))
		if err := db.RunDBMaintenance(dbType, dsn); err != nil {
			log.Fatalf("%s", i18n.T("db_maintain.error", err))
		}
		fmt.Println(i18n.T("db_maintain.success"))
	},
}

// readCompressedBackup handles reading and decoding a zstd-compressed JSON backup file.
func readCompressedBackup(filename string) (*model.BackupData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdReader, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zstdReader.Close()

	var backupData model.BackupData
	if err := json.NewDecoder(zstdReader).Decode(&backupData); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}

	return &backupData, nil
}

// writeCompressedBackup handles the process of writing the backup data to a
// zstd-compressed file. It streams the JSON encoding directly to the zstd
// writer for memory efficiency. The file is created 0600; it carries the
// vault wholesale.
func writeCompressedBackup(filename string, data *model.BackupData) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdWriter, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	defer func() { _ = zstdWriter.Close() }()

	encoder := json.NewEncoder(zstdWriter)
	encoder.SetIndent("", "  ") // Pretty-print the JSON inside the compressed file

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}

	return nil
}
