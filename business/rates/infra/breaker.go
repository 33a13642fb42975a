// Package infra contains infrastructure adapters for the rates context.
package infra

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/funding-engine/business/rates/app"
	"github.com/fd1az/funding-engine/business/rates/domain"
	"github.com/fd1az/funding-engine/internal/apperror"
)

// BreakerSource decorates a rate Source with a circuit breaker so a
// misbehaving feed fails fast instead of stalling every request.
type BreakerSource struct {
	source app.Source
	cb     *gobreaker.CircuitBreaker[domain.Observation]
}

var _ app.Source = (*BreakerSource)(nil)

// NewBreakerSource wraps source in a circuit breaker. Unsupported
// exchange lookups are caller mistakes and do not count as feed
// failures.
func NewBreakerSource(name string, source app.Source) *BreakerSource {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperror.GetCode(err) == apperror.CodeUnsupportedExchange
		},
	}

	return &BreakerSource{
		source: source,
		cb:     gobreaker.NewCircuitBreaker[domain.Observation](settings),
	}
}

// Rate fetches a funding rate through the circuit breaker.
func (b *BreakerSource) Rate(ctx context.Context, exchangeID, symbol string) (domain.Observation, error) {
	obs, err := b.cb.Execute(func() (domain.Observation, error) {
		return b.source.Rate(ctx, exchangeID, symbol)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.Observation{}, apperror.External(apperror.CodeRateSourceOpen, exchangeID, err)
		}
		return domain.Observation{}, err
	}
	return obs, nil
}
