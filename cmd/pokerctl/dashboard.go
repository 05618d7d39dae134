package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const pollInterval = 2 * time.Second

type tickMsg time.Time

type healthMsg struct {
	h   health
	err error
}

type tablesMsg struct {
	ids []string
	err error
}

type tableMsg struct {
	v   tableView
	err error
}

// dashboardModel is a read-only admin browser over pokersrv's
// introspection endpoints: a table list on the left, the selected
// table's detail on the right, refreshed on every tick.
type dashboardModel struct {
	client *adminClient

	h        health
	hErr     error
	tableIDs []string
	tErr     error
	selected int
	detail   tableView
	dErr     error
}

func newDashboardModel(c *adminClient) dashboardModel {
	return dashboardModel{client: c}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.pollHealth(), m.pollTables(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) pollHealth() tea.Cmd {
	return func() tea.Msg {
		h, err := m.client.Health()
		return healthMsg{h: h, err: err}
	}
}

func (m dashboardModel) pollTables() tea.Cmd {
	return func() tea.Msg {
		ids, err := m.client.Tables()
		return tablesMsg{ids: ids, err: err}
	}
}

func (m dashboardModel) pollSelected() tea.Cmd {
	if m.selected < 0 || m.selected >= len(m.tableIDs) {
		return nil
	}
	id := m.tableIDs[m.selected]
	return func() tea.Msg {
		v, err := m.client.Table(id)
		return tableMsg{v: v, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, m.pollSelected()
		case "down", "j":
			if m.selected < len(m.tableIDs)-1 {
				m.selected++
			}
			return m, m.pollSelected()
		}
	case tickMsg:
		return m, tea.Batch(m.pollHealth(), m.pollTables(), m.pollSelected(), tick())
	case healthMsg:
		m.h, m.hErr = msg.h, msg.err
	case tablesMsg:
		m.tableIDs, m.tErr = msg.ids, msg.err
		if m.selected >= len(m.tableIDs) {
			m.selected = len(m.tableIDs) - 1
		}
		return m, m.pollSelected()
	case tableMsg:
		m.detail, m.dErr = msg.v, msg.err
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pokersrv dashboard") + "\n\n")

	if m.hErr != nil {
		b.WriteString(warnStyle.Render(fmt.Sprintf("health: %v", m.hErr)) + "\n")
	} else {
		b.WriteString(okStyle.Render(fmt.Sprintf("active tables: %d", m.h.ActiveTables)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("   rss=%dB  fds=%d  procfs=%v", m.h.ResidentMemoryBytes, m.h.OpenFileDescriptors, m.h.ProcfsAvailable)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.tErr != nil {
		b.WriteString(warnStyle.Render(fmt.Sprintf("tables: %v", m.tErr)) + "\n")
	} else if len(m.tableIDs) == 0 {
		b.WriteString(dimStyle.Render("(no active tables)") + "\n")
	} else {
		for i, id := range m.tableIDs {
			cursor := "  "
			if i == m.selected {
				cursor = okStyle.Render("> ")
			}
			b.WriteString(cursor + id + "\n")
		}
		b.WriteString("\n")
		if m.dErr != nil {
			b.WriteString(warnStyle.Render(fmt.Sprintf("inspect: %v", m.dErr)) + "\n")
		} else {
			b.WriteString(fmt.Sprintf("phase=%s  hand=%d  pot=%d  dealer=%d\n", m.detail.Phase, m.detail.HandNumber, m.detail.pot(), m.detail.DealerButton))
			for _, s := range m.detail.Seats {
				b.WriteString(fmt.Sprintf("  seat %d: %-16s stack=%d\n", s.Index, s.PlayerID, s.Stack))
			}
		}
	}

	b.WriteString(helpStyle.Render("\n↑/↓ select table · q quit"))
	return b.String()
}
