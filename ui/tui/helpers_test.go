// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/vaultmaster/internal/i18n"
)

func TestAlignFooter(t *testing.T) {
	got := AlignFooter("left", "right", 20)
	if len(got) != 20 {
		t.Fatalf("expected padded width 20, got %d (%q)", len(got), got)
	}
	if !strings.HasPrefix(got, "left") || !strings.HasSuffix(got, "right") {
		t.Fatalf("expected left/right anchored tokens, got %q", got)
	}

	// Too narrow: a single space still separates the tokens.
	got = AlignFooter("left", "right", 5)
	if got != "left right" {
		t.Fatalf("expected minimal separator, got %q", got)
	}
}

func TestFormatLabelPadding(t *testing.T) {
	got := formatLabelPadding("User:", "alice", 10)
	if got != "User:      alice" {
		t.Fatalf("unexpected padding: %q", got)
	}
	// A label at or past the column width falls back to a single space.
	got = formatLabelPadding("Username:", "bob", 4)
	if got != "Username: bob" {
		t.Fatalf("expected fallback separator, got %q", got)
	}
}

func TestStyleForAuditAction(t *testing.T) {
	cases := []struct {
		action string
		want   lipgloss.Color
	}{
		{"INIT_VAULT", colorSuccess},
		{"ADD_CREDENTIAL", colorSuccess},
		{"DELETE_CREDENTIAL", colorSpecial},
		{"RESTORE_BACKUP", colorSpecial},
		{"UPDATE_CREDENTIAL", colorSubtle},
		{"MERGE_BACKUP", colorSubtle},
	}
	for _, c := range cases {
		style := styleForAuditAction(c.action)
		fg, ok := style.GetForeground().(lipgloss.Color)
		if !ok || fg != c.want {
			t.Fatalf("styleForAuditAction(%s) foreground = %v; want %v", c.action, style.GetForeground(), c.want)
		}
	}
}

func TestFilteredServices(t *testing.T) {
	m := &browseModel{services: []string{"GitHub", "Gmail", "Google Drive", "aws"}}

	// No filter returns everything untouched.
	if got := m.filteredServices(); len(got) != 4 {
		t.Fatalf("expected all services without filter, got %v", got)
	}

	// Matching is a case-insensitive substring check.
	m.filter = "g"
	got := m.filteredServices()
	if len(got) != 3 {
		t.Fatalf("expected 3 matches for 'g', got %v", got)
	}
	m.filter = "HUB"
	got = m.filteredServices()
	if len(got) != 1 || got[0] != "GitHub" {
		t.Fatalf("expected GitHub for 'HUB', got %v", got)
	}
	m.filter = "zzz"
	if got := m.filteredServices(); len(got) != 0 {
		t.Fatalf("expected no matches for 'zzz', got %v", got)
	}
}

func TestNewLanguageModel(t *testing.T) {
	i18n.Init("en")
	m := newLanguageModel()
	if len(m.orderedKeys) < 2 {
		t.Fatalf("expected at least en and de locales, got %v", m.orderedKeys)
	}
	if !sort.StringsAreSorted(m.orderedKeys) {
		t.Fatalf("expected sorted locale keys, got %v", m.orderedKeys)
	}
	for _, code := range m.orderedKeys {
		if m.choices[code] == "" {
			t.Fatalf("expected display name for %s", code)
		}
	}
}
