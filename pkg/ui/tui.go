package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxRows = 50

type tickMsg time.Time

// Model is the dashboard state: aggregate counters plus a rolling
// table of recent executions.
type Model struct {
	tbl         table.Model
	rows        []table.Row
	total       int
	executed    int
	rejected    int
	activeConns int
	started     time.Time
	width       int
	err         error
}

// New creates the dashboard model.
func New() Model {
	columns := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Strategy", Width: 20},
		{Title: "Symbol", Width: 10},
		{Title: "Status", Width: 8},
		{Title: "Detail", Width: 40},
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	return Model{
		tbl:     tbl,
		started: time.Now(),
	}
}

// Init starts the uptime ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, tick()

	case ResultMsg:
		m.total++
		status := "error"
		if msg.Success {
			m.executed++
			status = "success"
		} else {
			m.rejected++
		}

		row := table.Row{msg.Time, msg.StrategyID, msg.Symbol, status, msg.Detail}
		m.rows = append([]table.Row{row}, m.rows...)
		if len(m.rows) > maxRows {
			m.rows = m.rows[:maxRows]
		}
		m.tbl.SetRows(m.rows)

	case ConnectionsMsg:
		m.activeConns = msg.Active

	case ErrorMsg:
		m.err = msg.Error
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.err != nil {
		return errorValueStyle.Render(fmt.Sprintf("fatal: %v\n", m.err))
	}

	header := titleStyle.Render("Funding Engine")

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(fmt.Sprintf("%s %d", statLabelStyle.Render("requests"), m.total)),
		statStyle.Render(fmt.Sprintf("%s %s", statLabelStyle.Render("executed"), successValueStyle.Render(fmt.Sprintf("%d", m.executed)))),
		statStyle.Render(fmt.Sprintf("%s %s", statLabelStyle.Render("rejected"), errorValueStyle.Render(fmt.Sprintf("%d", m.rejected)))),
		statStyle.Render(fmt.Sprintf("%s %d", statLabelStyle.Render("connections"), m.activeConns)),
		statStyle.Render(fmt.Sprintf("%s %s", statLabelStyle.Render("uptime"), time.Since(m.started).Truncate(time.Second))),
	)

	body := borderStyle.Render(m.tbl.View())
	help := helpStyle.Render("q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, stats, body, help)
}
