// Package domain contains the core domain types for the execution context.
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/internal/apperror"
)

// Request is one arbitrage opportunity submitted by a caller. Both
// structures live only for the duration of one request/response cycle.
type Request struct {
	StrategyID        string
	Symbol            string
	PrimaryExchange   string
	SecondaryExchange string
	Amount            decimal.Decimal
	Priority          int // advisory only, reserved for admission control
	Timestamp         string
}

// Validate checks the semantic invariants of a decoded request.
// The two exchanges may legitimately be identical; the engine does not
// reject that.
func (r Request) Validate() error {
	switch {
	case r.StrategyID == "":
		return apperror.Validation(apperror.CodeInvalidRequest, "strategy_id is empty")
	case r.Symbol == "":
		return apperror.Validation(apperror.CodeInvalidRequest, "symbol is empty")
	case r.PrimaryExchange == "":
		return apperror.Validation(apperror.CodeInvalidRequest, "primary_exchange is empty")
	case r.SecondaryExchange == "":
		return apperror.Validation(apperror.CodeInvalidRequest, "secondary_exchange is empty")
	case !r.Amount.IsPositive():
		return apperror.Validation(apperror.CodeInvalidRequest, "amount must be positive")
	}
	return nil
}
