// Copyright (c) 2026 Vaultmaster Team
// Vaultmaster - encrypted password vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui // import "github.com/toeirei/vaultmaster/ui/tui"

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/model"
	"github.com/toeirei/vaultmaster/internal/vault"
	"github.com/toeirei/vaultmaster/util/slicest"
)

// browseState represents the current step within the credential browser.
type browseState int

const (
	browseStateList browseState = iota
	browseStateMasterPassword
	browseStateDetail
)

// credentialRevealedMsg reports the outcome of a reveal attempt.
type credentialRevealedMsg struct {
	cred *model.Credential
	err  error
}

// browseModel drives the credential browser: a service list anyone can see,
// and a master password gate in front of every decrypted detail view.
type browseModel struct {
	state         browseState
	vault         *vault.Vault
	services      []string
	cursor        int
	filter        string
	isFiltering   bool
	passwordInput textinput.Model
	// master is held for the lifetime of this browser so revealing several
	// entries needs one prompt, not one per entry. The vault still verifies
	// it and re-derives the key on every call.
	master          string
	selectedService string
	cred            *model.Credential
	status          string
	err             error
	width, height   int
}

func newBrowseModel(v *vault.Vault) *browseModel {
	m := &browseModel{
		state:         browseStateList,
		vault:         v,
		passwordInput: newPassphraseInput(),
	}
	services, err := v.ListServices()
	if err != nil {
		m.err = err
		return m
	}
	m.services = services
	return m
}

// newPassphraseInput returns a text input configured for secret entry.
func newPassphraseInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = i18n.T("browse.password_placeholder")
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Width = 40
	return ti
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case credentialRevealedMsg:
		return m.handleRevealResult(msg)
	}

	switch m.state {
	case browseStateMasterPassword:
		return m.updateMasterPassword(msg)
	case browseStateDetail:
		return m.updateDetail(msg)
	default:
		return m.updateList(msg)
	}
}

func (m *browseModel) handleRevealResult(msg credentialRevealedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, vault.ErrInvalidMasterPassword) {
			// Drop the rejected password and ask again.
			m.master = ""
			m.passwordInput.SetValue("")
			m.passwordInput.Focus()
			m.state = browseStateMasterPassword
			m.status = i18n.T("browse.wrong_password")
			return m, textinput.Blink
		}
		m.err = msg.err
		m.state = browseStateList
		return m, nil
	}
	if msg.cred == nil {
		// The entry disappeared between listing and reveal.
		m.status = i18n.T("browse.not_found", m.selectedService)
		m.state = browseStateList
		return m, nil
	}
	m.cred = msg.cred
	m.status = ""
	m.state = browseStateDetail
	return m, nil
}

func (m *browseModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// While typing a filter, keys feed the filter instead of navigating.
	if m.isFiltering {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.isFiltering = false
			m.filter = ""
			m.cursor = 0
		case tea.KeyEnter:
			m.isFiltering = false
		case tea.KeyBackspace:
			if m.filter != "" {
				r := []rune(m.filter)
				m.filter = string(r[:len(r)-1])
				m.cursor = 0
			}
		case tea.KeyRunes:
			m.filter += string(keyMsg.Runes)
			m.cursor = 0
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "/":
		m.isFiltering = true
		m.filter = ""
		m.cursor = 0
	case "up", "k":
		fs := m.filteredServices()
		if m.cursor > 0 {
			m.cursor--
		} else if len(fs) > 0 {
			m.cursor = len(fs) - 1
		}
	case "down", "j":
		fs := m.filteredServices()
		if len(fs) > 0 {
			if m.cursor < len(fs)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}
		}
	case "esc", "q":
		if m.filter != "" {
			m.filter = ""
			m.cursor = 0
			return m, nil
		}
		return m, func() tea.Msg { return backToMenuMsg{} }
	case "enter":
		fs := m.filteredServices()
		if len(fs) == 0 {
			return m, nil
		}
		m.selectedService = fs[m.cursor]
		m.status = ""
		if m.master != "" {
			return m, revealCredentialCmd(m.vault, m.master, m.selectedService)
		}
		m.state = browseStateMasterPassword
		m.passwordInput.SetValue("")
		m.passwordInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *browseModel) updateMasterPassword(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.master = m.passwordInput.Value()
			m.passwordInput.Blur()
			m.status = ""
			return m, revealCredentialCmd(m.vault, m.master, m.selectedService)
		case "esc":
			m.state = browseStateList
			m.passwordInput.SetValue("")
			m.passwordInput.Blur()
			m.status = ""
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

func (m *browseModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "q", "enter":
			m.cred = nil
			m.status = ""
			m.state = browseStateList
		case "c":
			if m.cred != nil {
				if err := clipboard.WriteAll(m.cred.Password); err != nil {
					m.status = i18n.T("browse.clipboard_error", err)
				} else {
					m.status = i18n.T("browse.copied", m.cred.Service)
				}
			}
		}
	}
	return m, nil
}

func (m *browseModel) filteredServices() []string {
	if m.filter == "" {
		return m.services
	}
	lower := strings.ToLower(m.filter)
	return slicest.Filter(m.services, func(s string) bool {
		return strings.Contains(strings.ToLower(s), lower)
	})
}

// revealCredentialCmd decrypts one credential in the background.
func revealCredentialCmd(v *vault.Vault, master, service string) tea.Cmd {
	return func() tea.Msg {
		cred, err := v.GetCredential(master, service)
		return credentialRevealedMsg{cred: cred, err: err}
	}
}

func (m *browseModel) View() string {
	switch m.state {
	case browseStateMasterPassword:
		return m.viewMasterPassword()
	case browseStateDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *browseModel) viewList() string {
	paneStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSubtle).Padding(1, 2)

	title := titleStyle.Render("🔑 " + i18n.T("browse.title"))

	var listItems []string
	filtered := m.filteredServices()
	cursor := m.cursor
	if cursor >= len(filtered) {
		cursor = 0
	}
	if len(filtered) == 0 {
		listItems = append(listItems, helpStyle.Render(i18n.T("browse.empty")))
	} else {
		listItems = slicest.MapI(filtered, func(i int, svc string) string {
			if cursor == i {
				return selectedItemStyle.Render("▸ " + svc)
			}
			return itemStyle.Render("  " + svc)
		})
	}
	if m.err != nil {
		listItems = append(listItems, "", errorStyle.Render(i18n.T("browse.error", m.err)))
	}
	if m.status != "" {
		listItems = append(listItems, "", statusMessageStyle.Render(m.status))
	}

	mainPane := paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", lipgloss.JoinVertical(lipgloss.Left, listItems...)))

	var filterStatus string
	if m.isFiltering {
		filterStatus = i18n.T("browse.filtering", m.filter)
	} else if m.filter != "" {
		filterStatus = i18n.T("browse.filter_active", m.filter)
	} else {
		filterStatus = i18n.T("browse.filter_hint")
	}
	help := footerStyle.Render(AlignFooter(i18n.T("browse.help"), filterStatus, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, mainPane, "", help)
}

func (m *browseModel) viewMasterPassword() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("browse.password_title")))
	b.WriteString("\n\n")
	b.WriteString(i18n.T("browse.password_prompt", m.selectedService))
	b.WriteString("\n\n")
	b.WriteString(m.passwordInput.View())
	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(i18n.T("browse.password_help")))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		dialogBoxStyle.Render(b.String()),
	)
}

func (m *browseModel) viewDetail() string {
	paneStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSubtle).Padding(1, 2)

	title := titleStyle.Render("🔓 " + m.cred.Service)

	rows := []labeledValue{
		{i18n.T("field.username"), m.cred.Username},
		{i18n.T("field.password"), m.cred.Password},
		{i18n.T("field.notes"), m.cred.Notes},
		{i18n.T("field.created"), m.cred.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		{i18n.T("field.updated"), m.cred.UpdatedAt.Local().Format("2006-01-02 15:04:05")},
	}
	maxLabelLen := slicest.Reduce(rows, func(r labeledValue, widest int) int {
		if len(r.label) > widest {
			return len(r.label)
		}
		return widest
	})
	// Empty optional fields stay hidden rather than rendering blank rows.
	lines := slicest.Map(
		slicest.Filter(rows, func(r labeledValue) bool { return r.value != "" }),
		func(r labeledValue) string { return formatLabelPadding(r.label, r.value, maxLabelLen) },
	)
	if m.status != "" {
		lines = append(lines, "", statusMessageStyle.Render(m.status))
	}

	mainPane := paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", lipgloss.JoinVertical(lipgloss.Left, lines...)))
	help := footerStyle.Render(AlignFooter(i18n.T("browse.detail_help"), "", m.width))
	return lipgloss.JoinVertical(lipgloss.Left, mainPane, "", help)
}
