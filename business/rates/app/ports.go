// Package app contains application services and port definitions for the rates context.
package app

import (
	"context"

	"github.com/fd1az/funding-engine/business/rates/domain"
)

// Source provides funding rates for registered exchanges. A lookup for
// an exchange that is not in the registry fails with an
// UNSUPPORTED_EXCHANGE error.
type Source interface {
	Rate(ctx context.Context, exchangeID, symbol string) (domain.Observation, error)
}
