// Package domain contains the core domain types for the rates context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is a single funding-rate reading from one exchange.
type Observation struct {
	Exchange   string
	Symbol     string
	Rate       decimal.Decimal
	ObservedAt time.Time
}

// Diff returns the signed rate difference between two observations.
func Diff(a, b Observation) decimal.Decimal {
	return a.Rate.Sub(b.Rate)
}
