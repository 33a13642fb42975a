// Package report contains Reporter adapters for the execution context.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/funding-engine/business/execution/app"
	"github.com/fd1az/funding-engine/business/execution/domain"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ConsoleReporter implements Reporter for CLI output: one summary line
// per processed request.
type ConsoleReporter struct {
	out     io.Writer
	success atomic.Int64
	failed  atomic.Int64
}

var _ app.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Funding Engine Started")
	fmt.Fprintln(r.out, "======================")
	return nil
}

// Report outputs one execution outcome to the console.
func (r *ConsoleReporter) Report(res domain.Result) {
	ts := res.FinishedAt.Format("15:04:05.000")

	if res.Response.IsSuccess() {
		r.success.Add(1)
		fmt.Fprintf(r.out, "%s %s %s %s profit=%s elapsed=%s gas=%d\n",
			dimStyle.Render(ts),
			successStyle.Render("EXECUTED"),
			res.Request.StrategyID,
			res.Request.Symbol,
			res.Response.Profit.StringFixed(4),
			res.Response.Elapsed,
			res.Response.GasUsed,
		)
		return
	}

	r.failed.Add(1)
	fmt.Fprintf(r.out, "%s %s %s %s reason=%q\n",
		dimStyle.Render(ts),
		errorStyle.Render("REJECTED"),
		res.Request.StrategyID,
		res.Request.Symbol,
		res.Response.ErrorMessage,
	)
}

// UpdateConnections is a no-op for the console; connection churn is
// already in the structured logs.
func (r *ConsoleReporter) UpdateConnections(active int) {}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintf(r.out, "Funding Engine Stopped (executed=%d rejected=%d at %s)\n",
		r.success.Load(), r.failed.Load(), time.Now().Format(time.RFC3339))
	return nil
}
