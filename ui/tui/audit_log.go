package tui // import "github.com/toeirei/vaultmaster/ui/tui"

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/model"
	"github.com/toeirei/vaultmaster/internal/vault"
	"github.com/toeirei/vaultmaster/util/slicest"
)

// auditLogModel shows the vault audit trail in a filterable table.
type auditLogModel struct {
	table       table.Model
	allEntries  []model.AuditLogEntry // Master list of all log entries
	filter      string
	isFiltering bool
	err         error
}

func newAuditLogModel(v *vault.Vault) *auditLogModel {
	m := &auditLogModel{}
	entries, err := v.AuditLog()
	if err != nil {
		m.err = err
		return m
	}
	m.allEntries = entries

	columns := []table.Column{
		{Title: i18n.T("audit_log.header.timestamp"), Width: 20},
		{Title: i18n.T("audit_log.header.user"), Width: 15},
		{Title: i18n.T("audit_log.header.action"), Width: 20},
		{Title: i18n.T("audit_log.header.details"), Width: 50},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15), // Resized on the first WindowSizeMsg
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	m.rebuildRows()
	return m
}

// styleForAuditAction picks a color for a vault action name.
func styleForAuditAction(action string) lipgloss.Style {
	switch {
	case strings.HasPrefix(action, "INIT_"),
		strings.HasPrefix(action, "ADD_"):
		return successStyle
	case strings.HasPrefix(action, "DELETE_"),
		strings.HasPrefix(action, "RESTORE_"):
		return specialStyle
	default:
		return helpStyle
	}
}

// rebuildRows filters the master list of entries and populates the table.
func (m *auditLogModel) rebuildRows() {
	lowerFilter := strings.ToLower(m.filter)

	visible := slicest.Filter(m.allEntries, func(entry model.AuditLogEntry) bool {
		if m.filter == "" {
			return true
		}
		return strings.Contains(strings.ToLower(entry.Timestamp), lowerFilter) ||
			strings.Contains(strings.ToLower(entry.Username), lowerFilter) ||
			strings.Contains(strings.ToLower(entry.Action), lowerFilter) ||
			strings.Contains(strings.ToLower(entry.Details), lowerFilter)
	})

	m.table.SetRows(slicest.Map(visible, func(entry model.AuditLogEntry) table.Row {
		ts := entry.Timestamp
		if len(ts) > 19 {
			ts = ts[:19] // Truncate fractional seconds for cleaner display
		}
		action := styleForAuditAction(entry.Action).Render(entry.Action)
		return table.Row{ts, entry.Username, action, entry.Details}
	}))

	// Go to the top of the table after filtering
	if m.isFiltering {
		m.table.GotoTop()
	}
}

func (m *auditLogModel) Init() tea.Cmd { return nil }

func (m *auditLogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Leave room for the title block and the footer line.
		m.table.SetHeight(msg.Height - 6)
		m.table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		// If filtering, handle input.
		if m.isFiltering {
			switch msg.Type {
			case tea.KeyEsc:
				m.isFiltering = false
				m.filter = ""
				m.rebuildRows()
			case tea.KeyEnter:
				m.isFiltering = false
			case tea.KeyBackspace:
				if m.filter != "" {
					r := []rune(m.filter)
					m.filter = string(r[:len(r)-1])
					m.rebuildRows()
				}
			case tea.KeyRunes:
				m.filter += string(msg.Runes)
				m.rebuildRows()
			}
			return m, nil
		}

		// Not filtering, handle commands.
		switch msg.String() {
		case "/":
			m.isFiltering = true
			m.filter = ""
			m.rebuildRows()
			return m, nil
		case "q", "esc":
			if m.filter != "" {
				m.filter = ""
				m.rebuildRows()
				return m, nil
			}
			return m, func() tea.Msg { return backToMenuMsg{} }
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *auditLogModel) View() string {
	if m.err != nil {
		return errorStyle.Render(i18n.T("audit_log.error", m.err))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 "+i18n.T("audit_log.title")) + "\n\n")

	if len(m.table.Rows()) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("audit_log.empty")))
		b.WriteString(m.footerView())
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString(m.footerView())
	return b.String()
}

func (m *auditLogModel) footerView() string {
	var filterStatus string
	if m.isFiltering {
		filterStatus = i18n.T("audit_log.filtering", m.filter)
	} else if m.filter != "" {
		filterStatus = i18n.T("audit_log.filter_active", m.filter)
	} else {
		filterStatus = i18n.T("audit_log.filter_hint")
	}
	return helpStyle.Render("\n" + i18n.T("audit_log.help") + " " + filterStatus)
}
