// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui provides the interactive terminal interface for Vaultmaster.
// This file holds the top-level model, a state machine that routes updates
// and rendering to the currently active sub-view.
package tui // import "github.com/toeirei/vaultmaster/ui/tui"

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/vaultmaster/buildvars"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/logging"
	"github.com/toeirei/vaultmaster/internal/model"
	"github.com/toeirei/vaultmaster/internal/vault"
	"github.com/toeirei/vaultmaster/util/mapst"
	"github.com/toeirei/vaultmaster/util/slicest"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	// menuView is the main dashboard and navigation menu.
	menuView viewState = iota
	browseView
	auditLogView
	languageView
)

// dashboardDataMsg is a message containing the data for the main menu dashboard.
type dashboardDataMsg struct {
	data dashboardData
}

// languageChangedMsg is a message to signal that the language has changed and
// the UI should be re-initialized.
type languageChangedMsg struct{}

// backToMenuMsg is sent by sub-views when the user backs out to the main menu.
type backToMenuMsg struct{}

// dashboardData holds the summary information for the main menu view.
type dashboardData struct {
	initialized     bool
	credentialCount int
	recentLogs      []model.AuditLogEntry
	err             error
}

// mainModel is the top-level model for the TUI. It acts as a state machine
// and router, delegating updates and view rendering to the active sub-model.
type mainModel struct {
	state     viewState
	vault     *vault.Vault
	menu      menuModel
	browse    *browseModel
	auditLog  *auditLogModel
	language  languageModel
	dashboard dashboardData
	width     int
	height    int
	err       error
}

// menuModel holds the state for the main menu.
type menuModel struct {
	choices []string // The menu items to show.
	cursor  int      // Which menu item our cursor is pointing at.
}

// languageModel holds the state for the language selection menu.
type languageModel struct {
	choices     map[string]string // map of lang code to display name
	orderedKeys []string          // for stable iteration
	cursor      int
}

// initialModel creates the starting state of the TUI, beginning at the main menu.
func initialModel(v *vault.Vault) mainModel {
	return mainModel{
		state: menuView,
		vault: v,
		menu: menuModel{
			choices: []string{
				i18n.T("menu.browse_credentials"),
				i18n.T("menu.view_audit_log"),
				i18n.T("menu.language"),
			},
		},
	}
}

// Init is the first function that will be called by the Bubble Tea runtime.
// It kicks off the initial command to load data for the dashboard.
func (m mainModel) Init() tea.Cmd {
	return refreshDashboardCmd(m.vault)
}

// Update is the main message loop. It handles all events (like key presses and
// window size changes) and delegates them to the active sub-model.
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings that work everywhere.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case dashboardDataMsg:
		m.dashboard = msg.data
		if msg.data.err != nil {
			m.err = msg.data.err
		}
		return m, nil

	case languageChangedMsg:
		// Rebuild the whole model so every translated string picks up the
		// new language, preserving the current window dimensions.
		newModel := initialModel(m.vault)
		newModel.width = m.width
		newModel.height = m.height
		return newModel, newModel.Init()
	}

	// Delegate updates to the currently active view.
	switch m.state {
	case browseView:
		// If we received a "back" message, switch the state.
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			m.browse = nil
			return m, refreshDashboardCmd(m.vault)
		}
		var updatedModel tea.Model
		updatedModel, cmd = m.browse.Update(msg)
		m.browse = updatedModel.(*browseModel)

	case auditLogView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd(m.vault)
		}
		var updatedModel tea.Model
		updatedModel, cmd = m.auditLog.Update(msg)
		m.auditLog = updatedModel.(*auditLogModel)

	case languageView:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q", "esc":
				m.state = menuView
				return m, refreshDashboardCmd(m.vault)
			case "up", "k":
				if m.language.cursor > 0 {
					m.language.cursor--
				}
			case "down", "j":
				if m.language.cursor < len(m.language.orderedKeys)-1 {
					m.language.cursor++
				}
			case "enter":
				langCode := m.language.orderedKeys[m.language.cursor]
				// The switch applies to this session. The config file or
				// --language flag sets the startup default.
				i18n.SetLang(langCode)
				return m, func() tea.Msg { return languageChangedMsg{} }
			}
		}

	default: // menuView
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.menu.cursor > 0 {
					m.menu.cursor--
				}
			case "down", "j":
				if m.menu.cursor < len(m.menu.choices)-1 {
					m.menu.cursor++
				}
			case "enter":
				switch m.menu.cursor {
				case 0: // Browse credentials
					m.state = browseView
					m.browse = newBrowseModel(m.vault)
					// Hand the new sub-model the current window size so its
					// first frame lays out correctly.
					var updatedModel tea.Model
					updatedModel, cmd = m.browse.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
					m.browse = updatedModel.(*browseModel)
					return m, cmd
				case 1: // View audit log
					m.state = auditLogView
					m.auditLog = newAuditLogModel(m.vault)
					var updatedModel tea.Model
					updatedModel, cmd = m.auditLog.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
					m.auditLog = updatedModel.(*auditLogModel)
					return m, cmd
				case 2: // Language
					m.state = languageView
					m.language = newLanguageModel()
					return m, nil
				}
			case "L":
				// "L" opens the language menu from anywhere on the main menu.
				m.state = languageView
				m.language = newLanguageModel()
				return m, nil
			}
		}
	}

	return m, cmd
}

// View renders the TUI. It's called after every Update and delegates rendering
// to the currently active sub-model.
func (m mainModel) View() string {
	if m.err != nil {
		// A simple error view
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1, 2)
		return errStyle.Render(fmt.Sprintf("An error occurred: %v", m.err))
	}

	// Delegate rendering to the currently active view.
	switch m.state {
	case browseView:
		return m.browse.View()
	case auditLogView:
		return m.auditLog.View()
	case languageView:
		return m.language.View()
	default: // menuView
		return m.menu.View(m.dashboard, m.width, m.height)
	}
}

// labeledValue is a label/value pair rendered as an aligned detail row.
type labeledValue struct {
	label string
	value string
}

// formatLabelPadding aligns a label/value pair on a fixed label column.
func formatLabelPadding(label, value string, labelWidth int) string {
	if labelWidth <= 0 || len(label) >= labelWidth {
		return label + " " + value
	}
	return label + strings.Repeat(" ", labelWidth-len(label)) + " " + value
}

// View renders the main menu and dashboard.
func (m menuModel) View(data dashboardData, width, height int) string {
	// Title (i18n)
	title := mainTitleStyle.Render("🔐 " + i18n.T("dashboard.title"))
	subTitle := helpStyle.Render(i18n.T("dashboard.subtitle"))
	header := lipgloss.JoinVertical(lipgloss.Left, title, subTitle)

	// --- Panes ---
	paneTitleStyle := lipgloss.NewStyle().Bold(true)

	// Menu List (Left Pane)
	menuItems := append([]string{paneTitleStyle.Render(i18n.T("menu.navigation")), ""},
		slicest.MapI(m.choices, func(i int, choice string) string {
			if m.cursor == i {
				return selectedItemStyle.Render("▸ " + choice)
			}
			return itemStyle.Render("  " + choice)
		})...)
	menuContent := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	// Dashboard (Right Pane)
	var dashboardItems []string
	dashboardItems = append(dashboardItems, paneTitleStyle.Render(i18n.T("dashboard.vault_status")), "")

	vaultStatus := specialStyle.Render(i18n.T("dashboard.status.uninitialized"))
	if data.initialized {
		vaultStatus = successStyle.Render(i18n.T("dashboard.status.initialized"))
	}

	statusItems := []labeledValue{
		{i18n.T("dashboard.status_label"), vaultStatus},
		{i18n.T("dashboard.credentials_label"), fmt.Sprintf("%d", data.credentialCount)},
	}

	maxLabelLen := slicest.Reduce(statusItems, func(item labeledValue, widest int) int {
		if len(item.label) > widest {
			return len(item.label)
		}
		return widest
	})
	dashboardItems = append(dashboardItems, slicest.Map(statusItems, func(item labeledValue) string {
		return formatLabelPadding(item.label, item.value, maxLabelLen)
	})...)

	// Recent Activity
	dashboardItems = append(dashboardItems, "", "", paneTitleStyle.Render(i18n.T("dashboard.recent_activity")), "")

	// --- Layout ---
	paneStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	// Calculate height for the panes to fill the screen
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footerStyle.Render(""))
	paneHeight := height - headerHeight - footerHeight - 2 // -2 for newlines around mainArea

	menuWidth := 38
	dashboardWidth := width - 4 - menuWidth - 2

	if len(data.recentLogs) == 0 {
		dashboardItems = append(dashboardItems, helpStyle.Render(i18n.T("dashboard.no_recent_activity")))
	} else {
		dashboardItems = append(dashboardItems, slicest.Map(data.recentLogs, func(log model.AuditLogEntry) string {
			ts := log.Timestamp
			if len(ts) >= 16 {
				ts = ts[5:16] // Format as MM-DD HH:MM
			}

			// Calculate available space inside the pane for the log line.
			innerDashboardWidth := dashboardWidth - 4 - 2
			availableWidth := innerDashboardWidth - len(ts) - 1

			styledAction := styleForAuditAction(log.Action).Render(log.Action)

			detailsWidth := availableWidth - len(log.Action) - 1
			if detailsWidth < 10 {
				detailsWidth = 10 // Ensure we show at least a little detail.
			}
			details := log.Details
			if len(details) > detailsWidth {
				details = details[:detailsWidth-3] + "..."
			}

			return lipgloss.JoinHorizontal(lipgloss.Left,
				helpStyle.Render(ts), " ", styledAction, " ", helpStyle.Render(details))
		})...)
	}
	dashboardContent := lipgloss.JoinVertical(lipgloss.Left, dashboardItems...)

	leftPane := paneStyle.Width(menuWidth).Height(paneHeight).Render(menuContent)
	rightPane := paneStyle.Width(dashboardWidth).Height(paneHeight).MarginLeft(2).Render(dashboardContent)

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	// Styled footer/help line, with the build version right-aligned.
	footer := footerStyle.Render(AlignFooter(i18n.T("dashboard.footer"), buildvars.VersionOrDefault("dev"), width))

	return lipgloss.JoinVertical(lipgloss.Top, header, mainArea, footer)
}

// newLanguageModel creates a new model for the language selection view.
func newLanguageModel() languageModel {
	// Get the dynamically discovered locales from the i18n package.
	choices := i18n.GetAvailableLocales()

	// Create a sorted list of keys for stable iteration and display order.
	keys := mapst.Keys(choices)
	sort.Strings(keys)

	return languageModel{
		choices:     choices,
		orderedKeys: keys,
		cursor:      0,
	}
}

// Init for languageModel.
func (m languageModel) Init() tea.Cmd { return nil }

// Update for languageModel.
func (m languageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

// View for languageModel.
func (m languageModel) View() string {
	title := mainTitleStyle.Render("🌐 " + i18n.T("menu.language"))

	listItems := append([]string{titleStyle.Render(i18n.T("language.select")), ""},
		slicest.MapI(m.orderedKeys, func(i int, langCode string) string {
			displayName := m.choices[langCode]
			if m.cursor == i {
				return selectedItemStyle.Render("▸ " + displayName)
			}
			return itemStyle.Render("  " + displayName)
		})...)

	paneStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSubtle).Padding(1, 2)
	listPane := paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, listItems...))

	helpLine := footerStyle.Render(AlignFooter(i18n.T("language.help"), "", 60))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", listPane, "", helpLine)
}

// Run is the main entrypoint for the TUI. It initializes and runs the Bubble
// Tea program against an already opened vault.
func Run(v *vault.Vault) {
	if _, err := tea.NewProgram(initialModel(v)).Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}

// refreshDashboardCmd is a tea.Cmd that fetches summary data for the main menu.
func refreshDashboardCmd(v *vault.Vault) tea.Cmd {
	return func() tea.Msg {
		data := dashboardData{}

		initialized, err := v.IsInitialized()
		if err != nil {
			return dashboardDataMsg{data: dashboardData{err: err}}
		}
		data.initialized = initialized

		data.credentialCount, err = v.CountCredentials()
		if err != nil {
			return dashboardDataMsg{data: dashboardData{err: err}}
		}

		// The audit trail is newest-first, so the head is the recent slice.
		logs, err := v.AuditLog()
		if err != nil {
			return dashboardDataMsg{data: dashboardData{err: err}}
		}
		if len(logs) > 5 {
			logs = logs[:5]
		}
		data.recentLogs = logs

		return dashboardDataMsg{data: data}
	}
}

// AlignFooter returns a single-line string where `right` is right-aligned
// within `width` columns and `left` is at the start. If width is too small
// a single space separates the tokens.
func AlignFooter(left, right string, width int) string {
	leftLen := utf8.RuneCountInString(left)
	rightLen := utf8.RuneCountInString(right)
	spaces := width - leftLen - rightLen
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}
