package app

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/execution/domain"
	ratesDomain "github.com/fd1az/funding-engine/business/rates/domain"
	"github.com/fd1az/funding-engine/internal/apperror"
)

// RandFunc returns a value in [0, 1). Injectable so tests can force
// the success and failure branches deterministically.
type RandFunc func() float64

// StrategyConfig holds the funding-rate strategy parameters. All of
// them come from configuration, none are business truth.
type StrategyConfig struct {
	// RateDiffThreshold is the minimum absolute rate difference
	// required before an execution attempt is considered.
	RateDiffThreshold decimal.Decimal

	// SuccessProbability is the chance a simulated execution succeeds.
	SuccessProbability float64

	// EfficiencyFactor scales the expected profit to model slippage
	// and fees.
	EfficiencyFactor decimal.Decimal

	// ExecutionLatency is the artificial delay of one execution attempt.
	ExecutionLatency time.Duration
}

// FundingStrategy evaluates funding-rate arbitrage opportunities.
type FundingStrategy struct {
	cfg    StrategyConfig
	randFn RandFunc
}

var _ Strategy = (*FundingStrategy)(nil)

// StrategyOption configures a FundingStrategy.
type StrategyOption func(*FundingStrategy)

// WithRand overrides the randomness source for the execution outcome.
func WithRand(fn RandFunc) StrategyOption {
	return func(s *FundingStrategy) {
		s.randFn = fn
	}
}

// NewFundingStrategy creates a FundingStrategy from config.
func NewFundingStrategy(cfg StrategyConfig, opts ...StrategyOption) *FundingStrategy {
	s := &FundingStrategy{
		cfg:    cfg,
		randFn: rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate computes the profit for one opportunity or reports why no
// execution happened.
func (s *FundingStrategy) Evaluate(
	ctx context.Context,
	primary, secondary ratesDomain.Observation,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	diff := ratesDomain.Diff(primary, secondary).Abs()

	if diff.LessThan(s.cfg.RateDiffThreshold) {
		return decimal.Zero, apperror.New(apperror.CodeBelowThreshold,
			apperror.WithContext("rate difference "+diff.String()+" below threshold "+s.cfg.RateDiffThreshold.String()))
	}

	expected := amount.Mul(diff)

	// Simulated execution latency.
	if s.cfg.ExecutionLatency > 0 {
		timer := time.NewTimer(s.cfg.ExecutionLatency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return decimal.Zero, ctx.Err()
		case <-timer.C:
		}
	}

	if s.randFn() >= s.cfg.SuccessProbability {
		return decimal.Zero, apperror.New(apperror.CodeExecutionFailed)
	}

	return expected.Mul(s.cfg.EfficiencyFactor), nil
}

// noopReporter discards everything. Used when no reporting surface is
// configured.
type noopReporter struct{}

// NewNopReporter returns a Reporter that discards all output.
func NewNopReporter() Reporter {
	return noopReporter{}
}

func (noopReporter) Start(context.Context) error { return nil }
func (noopReporter) Report(domain.Result)        {}
func (noopReporter) UpdateConnections(int)       {}
func (noopReporter) Stop() error                 { return nil }
