// Package ui implements the terminal dashboard for the engine.
package ui

import tea "github.com/charmbracelet/bubbletea"

// Program is the running bubbletea program, set by the entry point so
// reporters can push messages into the UI.
var Program *tea.Program

// Send delivers a message to the running program, if any.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}

// ResultMsg carries one finished execution into the dashboard.
type ResultMsg struct {
	Time       string
	StrategyID string
	Symbol     string
	Success    bool
	Detail     string // profit on success, reason otherwise
}

// ConnectionsMsg updates the active connection count.
type ConnectionsMsg struct {
	Active int
}

// ErrorMsg reports a fatal startup error to the dashboard.
type ErrorMsg struct {
	Error error
}
