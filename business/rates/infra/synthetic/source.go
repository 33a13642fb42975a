// Package synthetic provides a simulated funding-rate source. It stands
// in for live exchange feeds: rates are drawn from a per-exchange base
// offset plus bounded noise. Replace with a real feed behind the same
// Source interface for production use.
package synthetic

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/rates/app"
	"github.com/fd1az/funding-engine/business/rates/domain"
)

// RandFunc returns a value in [0, 1). Injectable so tests can force
// deterministic rates.
type RandFunc func() float64

// noiseSpan bounds the random component added to each base rate.
const noiseSpan = 0.0002

// baseRates are the simulated per-exchange funding-rate offsets.
var baseRates = map[string]float64{
	"binance": 0.0001,
	"bybit":   0.0002,
	"okx":     0.0003,
}

// defaultBase is used for registered exchanges without a dedicated offset.
const defaultBase = 0.0001

// Source implements app.Source with synthetic rates.
type Source struct {
	registry *domain.Registry
	randFn   RandFunc
	now      func() time.Time
}

var _ app.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithRand overrides the randomness source.
func WithRand(fn RandFunc) Option {
	return func(s *Source) {
		s.randFn = fn
	}
}

// WithClock overrides the observation clock.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

// NewSource creates a synthetic Source over the given registry.
func NewSource(registry *domain.Registry, opts ...Option) *Source {
	s := &Source{
		registry: registry,
		randFn:   rand.Float64,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate returns a synthetic funding rate for a registered exchange.
func (s *Source) Rate(ctx context.Context, exchangeID, symbol string) (domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Observation{}, err
	}

	if _, err := s.registry.Lookup(exchangeID); err != nil {
		return domain.Observation{}, err
	}

	base, ok := baseRates[exchangeID]
	if !ok {
		base = defaultBase
	}

	rate := decimal.NewFromFloat(base + s.randFn()*noiseSpan)

	return domain.Observation{
		Exchange:   exchangeID,
		Symbol:     symbol,
		Rate:       rate,
		ObservedAt: s.now(),
	}, nil
}
