// Package app contains application services and port definitions for the execution context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/execution/domain"
	ratesDomain "github.com/fd1az/funding-engine/business/rates/domain"
)

// Strategy decides whether two rate observations are worth acting on
// and what the execution yields. Implementations fail with
// BELOW_THRESHOLD when the difference is too small and
// EXECUTION_FAILED when a (simulated) execution attempt does not
// succeed.
type Strategy interface {
	Evaluate(ctx context.Context, primary, secondary ratesDomain.Observation, amount decimal.Decimal) (decimal.Decimal, error)
}

// Reporter receives execution outcomes for display or logging.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report delivers one finished request/response pair.
	Report(res domain.Result)

	// UpdateConnections updates the active connection count display.
	UpdateConnections(active int)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
