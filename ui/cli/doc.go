// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Vaultmaster using
// Cobra. It wires configuration, i18n and the vault store, and provides
// commands that delegate to the vault layer. CLI code should remain thin;
// crypto and persistence live below internal/vault.
package cli
