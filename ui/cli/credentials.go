// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// credentials.go implements the credential lifecycle commands: init, add,
// get, list, update, delete and search.

package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/toeirei/vaultmaster/internal/crypto"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05"

var credUsername string
var credNotes string
var generatePassword bool
var generateLength int
var copyToClipboard bool
var forceDelete bool

// resolveCredentialPassword returns the password to store: generated when
// --generate is set (and echoed once so the user has it), prompted
// otherwise.
func resolveCredentialPassword(service string) (string, error) {
	if generatePassword {
		pw, err := crypto.GeneratePassword(generateLength)
		if err != nil {
			return "", err
		}
		fmt.Println(i18n.T("add.generated", pw))
		return pw, nil
	}
	return promptHidden(i18n.T("prompt.credential_password", service))
}

// initCmd represents the 'init' command. It sets up a fresh vault with a
// master password.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault with a master password",
	Long: `Creates the vault: derives a verifier from your master password and
generates the vault salt. This can only ever happen once per database;
an existing vault is never overwritten.

There is no way to recover the master password. If you lose it, the
vault contents are gone.`,
	Run: func(cmd *cobra.Command, args []string) {
		initialized, err := appVault.IsInitialized()
		if err != nil {
			fatalVaultErr(err)
		}
		if initialized {
			fmt.Println(i18n.T("init.already_initialized"))
			return
		}

		pw, err := promptHidden(i18n.T("prompt.new_master_password"))
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}
		if pw == "" {
			log.Fatalf("%s", i18n.T("prompt.password_empty"))
		}
		confirmPw, err := promptHidden(i18n.T("prompt.confirm_master_password"))
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}
		if pw != confirmPw {
			log.Fatalf("%s", i18n.T("prompt.password_mismatch"))
		}

		ok, err := appVault.Initialize(pw)
		if err != nil {
			fatalVaultErr(err)
		}
		if !ok {
			fmt.Println(i18n.T("init.already_initialized"))
			return
		}
		fmt.Println(i18n.T("init.success"))
	},
}

// addCmd represents the 'add' command.
var addCmd = &cobra.Command{
	Use:   "add <service>",
	Short: "Add a credential to the vault",
	Long: `Stores a credential under a service name. The service name stays in
plaintext so listing and searching work without the master password;
username, password and notes are each encrypted individually.

Examples:
  vaultmaster add GitHub -u alice@example.com
  vaultmaster add Gmail --generate --length 32`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service := args[0]

		master, err := promptMasterPassword()
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		credPassword, err := resolveCredentialPassword(service)
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		added, err := appVault.AddCredential(master, model.Credential{
			Service:  service,
			Username: credUsername,
			Password: credPassword,
			Notes:    credNotes,
		})
		if err != nil {
			fatalVaultErr(err)
		}
		if !added {
			fmt.Println(i18n.T("add.duplicate", service))
			return
		}
		fmt.Println(i18n.T("add.success", service))
	},
}

// getCmd represents the 'get' command.
var getCmd = &cobra.Command{
	Use:   "get <service>",
	Short: "Retrieve and decrypt a credential",
	Long: `Retrieves a credential by its exact service name and decrypts it with
the master password. With --copy the password goes to the clipboard
instead of the terminal.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service := args[0]

		master, err := promptMasterPassword()
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		cred, err := appVault.GetCredential(master, service)
		if err != nil {
			fatalVaultErr(err)
		}
		if cred == nil {
			fmt.Println(i18n.T("get.not_found", service))
			return
		}

		fmt.Printf("%s %s\n", i18n.T("field.service"), cred.Service)
		if cred.Username != "" {
			fmt.Printf("%s %s\n", i18n.T("field.username"), cred.Username)
		}
		if copyToClipboard {
			if clipErr := clipboard.WriteAll(cred.Password); clipErr != nil {
				log.Errorf("%s", i18n.T("get.clipboard_error", clipErr))
				fmt.Printf("%s %s\n", i18n.T("field.password"), cred.Password)
			} else {
				fmt.Println(i18n.T("get.copied", cred.Service))
			}
		} else {
			fmt.Printf("%s %s\n", i18n.T("field.password"), cred.Password)
		}
		if cred.Notes != "" {
			fmt.Printf("%s %s\n", i18n.T("field.notes"), cred.Notes)
		}
		fmt.Printf("%s %s\n", i18n.T("field.created"), cred.CreatedAt.Local().Format(timestampLayout))
		fmt.Printf("%s %s\n", i18n.T("field.updated"), cred.UpdatedAt.Local().Format(timestampLayout))
	},
}

// listCmd represents the 'list' command. Service names are plaintext, so no
// master password is involved.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored service names",
	Long: `Lists the service names in the vault, ordered by name. Service names
are stored in plaintext, so this works without the master password and
never touches encrypted data.`,
	Run: func(cmd *cobra.Command, args []string) {
		services, err := appVault.ListServices()
		if err != nil {
			fatalVaultErr(err)
		}
		if len(services) == 0 {
			fmt.Println(i18n.T("list.empty"))
			return
		}
		fmt.Println(i18n.T("list.header", len(services)))
		for _, s := range services {
			fmt.Printf("  %s\n", s)
		}
	},
}

// updateCmd represents the 'update' command.
var updateCmd = &cobra.Command{
	Use:   "update <service>",
	Short: "Replace a stored credential's fields",
	Long: `Replaces the username, password and notes of an existing credential
wholesale. Fields not given on the command line are cleared, not kept;
run 'get' first if you need the old values.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service := args[0]

		master, err := promptMasterPassword()
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		credPassword, err := resolveCredentialPassword(service)
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		updated, err := appVault.UpdateCredential(master, model.Credential{
			Service:  service,
			Username: credUsername,
			Password: credPassword,
			Notes:    credNotes,
		})
		if err != nil {
			fatalVaultErr(err)
		}
		if !updated {
			fmt.Println(i18n.T("update.not_found", service))
			return
		}
		fmt.Println(i18n.T("update.success", service))
	},
}

// deleteCmd represents the 'delete' command.
var deleteCmd = &cobra.Command{
	Use:   "delete <service>",
	Short: "Delete a credential from the vault",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service := args[0]

		master, err := promptMasterPassword()
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		if !forceDelete {
			if !confirm(i18n.T("delete.confirm", service)) {
				fmt.Println(i18n.T("delete.aborted"))
				return
			}
		}

		deleted, err := appVault.DeleteCredential(master, service)
		if err != nil {
			fatalVaultErr(err)
		}
		if !deleted {
			fmt.Println(i18n.T("delete.not_found", service))
			return
		}
		fmt.Println(i18n.T("delete.success", service))
	},
}

// searchCmd represents the 'search' command.
var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search credentials by service name",
	Long: `Finds credentials whose service name contains the keyword
(case-insensitive) and decrypts them. Only service and username are
printed; use 'get' for the password.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		keyword := args[0]

		master, err := promptMasterPassword()
		if err != nil {
			log.Fatalf("%s", i18n.T("error.generic", err))
		}

		creds, err := appVault.SearchCredentials(master, keyword)
		if err != nil {
			fatalVaultErr(err)
		}
		if len(creds) == 0 {
			fmt.Println(i18n.T("search.no_match", keyword))
			return
		}
		fmt.Println(i18n.T("search.header", len(creds), keyword))
		for _, c := range creds {
			fmt.Printf("  %s\n", c.String())
		}
	},
}

// auditLogCmd represents the 'audit-log' command. Audit entries carry
// service names and actions only, so like 'list' it needs no master
// password.
var auditLogCmd = &cobra.Command{
	Use:   "audit-log",
	Short: "Show the vault's audit log",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := appVault.AuditLog()
		if err != nil {
			fatalVaultErr(err)
		}
		if len(entries) == 0 {
			fmt.Println(i18n.T("audit.empty"))
			return
		}
		fmt.Println(i18n.T("audit.header", len(entries)))
		for _, e := range entries {
			fmt.Printf("  %-20s %-12s %-18s %s\n", e.Timestamp, e.Username, e.Action, e.Details)
		}
	},
}
