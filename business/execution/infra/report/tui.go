package report

import (
	"context"

	"github.com/fd1az/funding-engine/business/execution/app"
	"github.com/fd1az/funding-engine/business/execution/domain"
	"github.com/fd1az/funding-engine/pkg/ui"
)

// TUIReporter forwards execution outcomes to the terminal dashboard.
type TUIReporter struct{}

var _ app.Reporter = (*TUIReporter)(nil)

// NewTUIReporter creates a TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start initializes the TUI reporter. The program itself is started by
// the entry point.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// Report pushes one result into the dashboard.
func (r *TUIReporter) Report(res domain.Result) {
	msg := ui.ResultMsg{
		Time:       res.FinishedAt.Format("15:04:05.000"),
		StrategyID: res.Request.StrategyID,
		Symbol:     res.Request.Symbol,
		Success:    res.Response.IsSuccess(),
	}
	if res.Response.IsSuccess() {
		msg.Detail = "profit " + res.Response.Profit.StringFixed(4)
	} else {
		msg.Detail = res.Response.ErrorMessage
	}
	ui.Send(msg)
}

// UpdateConnections pushes the active connection count into the dashboard.
func (r *TUIReporter) UpdateConnections(active int) {
	ui.Send(ui.ConnectionsMsg{Active: active})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	return nil
}
