// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for the Vaultmaster
// application using the Cobra library. It defines the root command,
// subcommands (like add, get, backup), flags, and the main entry point
// for execution.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"runtime/debug"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/vaultmaster/internal/config"
	"github.com/toeirei/vaultmaster/internal/crypto"
	"github.com/toeirei/vaultmaster/internal/db"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/logging"
	"github.com/toeirei/vaultmaster/internal/vault"
	"github.com/toeirei/vaultmaster/ui/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var verbose bool
var showVersionFlag bool

// masterPasswordFlag allows scripting; when empty the commands prompt on
// stdin with echo disabled.
var masterPasswordFlag string

var appConfig config.Config

// appStore and appVault are created once per process in
// setupDefaultServices and closed from Execute. Commands reach the vault
// through these; nothing below the CLI holds global state.
var appStore db.Store
var appVault *vault.Vault

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	if appStore != nil {
		return nil
	}

	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./vaultmaster.db",
		"language":      "en",
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// First run: persist a default config so subsequent runs have a file to
	// inspect and edit. Only when no config exists anywhere we looked.
	if optionalConfigPath == nil {
		writeDefaultConfigIfMissing()
	}

	// Post-process config to ensure critical values are not empty, falling
	// back to defaults. This handles config files with empty values.
	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.Dsn == "" {
		appConfig.Database.Dsn = defaults["database.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	i18n.Init(appConfig.Language)

	appStore, err = db.New(appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return errors.New(i18n.T("config.error_init_db", err))
	}
	appVault = vault.New(appStore)

	return nil
}

// writeDefaultConfigIfMissing writes the default user config file when no
// config file exists in either the user path or the working directory.
func writeDefaultConfigIfMissing() {
	userPath, err := config.GetConfigPath(false)
	if err != nil {
		return
	}
	if _, err := os.Stat(userPath); err == nil {
		return
	}
	if _, err := os.Stat("vaultmaster.yaml"); err == nil {
		return
	}
	if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
		log.Warnf("Warning: could not write default config file: %v", writeErr)
	}
}

// closeStore releases the process-wide store. Safe to call repeatedly.
func closeStore() {
	if appStore != nil {
		_ = appStore.Close()
		appStore = nil
		appVault = nil
	}
}

// Execute runs the CLI entrypoint. The root main package should call this
// function and handle process exit.
func Execute() error {
	defer closeStore()

	rootCmd := NewRootCmd()
	return rootCmd.Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}

		if path == "" {
			return nil, nil
		}

		// Make sure the user-provided file exists to avoid unwanted behavior.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

// NewRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaultmaster",
		Short: "Vaultmaster is a local, single-user encrypted secrets vault.",
		Long: `Vaultmaster keeps credentials for your services in a single
encrypted vault protected by one master password. Every field is
encrypted individually; service names stay readable so you can list
and search without unlocking. The vault lives in a local database
(SQLite by default, PostgreSQL and MySQL supported).

Running without a subcommand launches the interactive dashboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Printf("%s\n", compositeVersion())
				os.Exit(0)
			}
			if verbose {
				db.SetDebug(true)
				logging.SetDebug(true)
			}
			return setupDefaultServices(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			// The database and i18n are already initialized by
			// PersistentPreRunE, so we can just run the TUI.
			tui.Run(appVault)
		},
	}

	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (sets -v for DB logs)")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Interface language ("en", "de")`)
	cmd.PersistentFlags().StringVar(&masterPasswordFlag, "master-password", "", "Master password (for scripting; omit to be prompted securely)")
	cmd.PersistentFlags().String("database.type", "sqlite", "Database type (e.g., sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", "./vaultmaster.db", "Database connection string (DSN)")

	// Attach subcommand flags, guarding against redefinition: NewRootCmd may
	// be called multiple times in tests while the subcommands are package
	// level, and pflag panics on duplicate definitions.
	if addCmd.Flags().Lookup("username") == nil {
		addCmd.Flags().StringVarP(&credUsername, "username", "u", "", "Username to store with the credential")
		addCmd.Flags().StringVarP(&credNotes, "notes", "n", "", "Free-form notes to store with the credential")
		addCmd.Flags().BoolVarP(&generatePassword, "generate", "g", false, "Generate a random password instead of prompting")
		addCmd.Flags().IntVar(&generateLength, "length", crypto.DefaultGeneratedPasswordLength, "Length of the generated password")
	}
	if updateCmd.Flags().Lookup("username") == nil {
		updateCmd.Flags().StringVarP(&credUsername, "username", "u", "", "New username (empty clears the field)")
		updateCmd.Flags().StringVarP(&credNotes, "notes", "n", "", "New notes (empty clears the field)")
		updateCmd.Flags().BoolVarP(&generatePassword, "generate", "g", false, "Generate a random password instead of prompting")
		updateCmd.Flags().IntVar(&generateLength, "length", crypto.DefaultGeneratedPasswordLength, "Length of the generated password")
	}
	if getCmd.Flags().Lookup("copy") == nil {
		getCmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy the password to the clipboard instead of printing it")
	}
	if deleteCmd.Flags().Lookup("force") == nil {
		deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Delete without confirmation")
	}
	if restoreCmd.Flags().Lookup("full") == nil {
		restoreCmd.Flags().BoolVar(&fullRestore, "full", false, "Perform a full, destructive restore (wipes all existing data first)")
	}

	// Add a lightweight `version` subcommand so users and CI can run
	// `vaultmaster version`.
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Printf("version: %s\n", v)
			fmt.Printf("commit: %s\n", c)
			if d != "" {
				fmt.Printf("built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		initCmd,
		addCmd,
		getCmd,
		listCmd,
		updateCmd,
		deleteCmd,
		searchCmd,
		auditLogCmd,
		backupCmd,
		restoreCmd,
		dbMaintainCmd,
		versionCmd,
	)

	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	composite := v
	if c != "" && c != "dev" {
		composite = composite + " (" + c + ")"
	}
	if d != "" {
		composite = composite + " built: " + d
	}
	return composite
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime. This helper is separated to make unit testing straightforward.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
			ok = true
		}
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// If Main doesn't contain the version (some build paths), try to
		// find our module in the dependencies and use that version.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/vaultmaster" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort, if no version was discovered, but a gitCommit was
	// provided via ldflags, show that to aid support.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}

// promptMasterPassword returns the master password from the flag when set,
// otherwise reads it from stdin. On a terminal the input stays hidden; on a
// pipe it reads one line, so scripted use keeps working.
func promptMasterPassword() (string, error) {
	if masterPasswordFlag != "" {
		return masterPasswordFlag, nil
	}
	return promptHidden(i18n.T("prompt.master_password"))
}

func promptHidden(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}
	return readLine(os.Stdin)
}

// readLine reads one line without buffering ahead, so consecutive prompts on
// a piped stdin each consume exactly their own line. A trailing line without
// a newline before EOF still counts.
func readLine(r io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err != nil {
			if len(line) == 0 {
				return "", err
			}
			break
		}
	}
	return strings.TrimRight(string(line), "\r"), nil
}

// confirm prints the prompt and reads a y/N answer from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	input, _ := readLine(os.Stdin)
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// fatalVaultErr translates vault layer errors into localized messages and
// exits. Expected outcomes (duplicate, not found) never come through here;
// those are results, not errors.
func fatalVaultErr(err error) {
	switch {
	case errors.Is(err, vault.ErrNotInitialized):
		log.Fatalf("%s", i18n.T("error.not_initialized"))
	case errors.Is(err, vault.ErrInvalidMasterPassword):
		log.Fatalf("%s", i18n.T("error.invalid_master_password"))
	case errors.Is(err, vault.ErrCorruptVault):
		log.Fatalf("%s", i18n.T("error.corrupt_vault"))
	case errors.Is(err, vault.ErrEmptyService):
		log.Fatalf("%s", i18n.T("error.empty_service"))
	case errors.Is(err, crypto.ErrAuthentication):
		log.Fatalf("%s", i18n.T("error.decrypt_failed"))
	default:
		log.Fatalf("%s", i18n.T("error.generic", err))
	}
}
