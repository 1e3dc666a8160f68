// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Vaultmaster.
//
// Usage:
//
//	go run . [flags]
//	./vaultmaster [flags]
//
// This launches the Vaultmaster CLI. See --help for options.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/toeirei/vaultmaster/ui/cli"
)

// version is set at build time using -ldflags, e.g.:
// go build -ldflags "-X main.version=1.2.3"
var version = "dev"

// main is the entrypoint for the Vaultmaster CLI.
func main() {
	// Print version info if requested (optional, placeholder for future flag parsing)
	if os.Getenv("VAULTMASTER_SHOW_VERSION") == "1" {
		fmt.Fprintf(os.Stderr, "Vaultmaster version: %s\n", version)
	}

	if err := cli.Execute(); err != nil {
		log.Printf("Vaultmaster CLI error: %v", err)
		os.Exit(1)
	}
}
