package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/execution/domain"
	ratesDomain "github.com/fd1az/funding-engine/business/rates/domain"
	"github.com/fd1az/funding-engine/internal/apperror"
	"github.com/fd1az/funding-engine/internal/logger"
)

// stubSource returns fixed rates per exchange, or an error for
// unregistered ones.
type stubSource struct {
	rates map[string]string
}

func (s stubSource) Rate(ctx context.Context, exchangeID, symbol string) (ratesDomain.Observation, error) {
	rate, ok := s.rates[exchangeID]
	if !ok {
		return ratesDomain.Observation{}, apperror.Unsupported(exchangeID)
	}
	return ratesDomain.Observation{
		Exchange:   exchangeID,
		Symbol:     symbol,
		Rate:       decimal.RequireFromString(rate),
		ObservedAt: time.Now(),
	}, nil
}

// captureReporter records the results it receives.
type captureReporter struct {
	results []domain.Result
}

func (r *captureReporter) Start(context.Context) error { return nil }
func (r *captureReporter) Report(res domain.Result)    { r.results = append(r.results, res) }
func (r *captureReporter) UpdateConnections(int)       {}
func (r *captureReporter) Stop() error                 { return nil }

func makeRequest() domain.Request {
	return domain.Request{
		StrategyID:        "funding-rate-arb-001",
		Symbol:            "BTC-USDT",
		PrimaryExchange:   "binance",
		SecondaryExchange: "bybit",
		Amount:            decimal.RequireFromString("10000"),
		Priority:          1,
		Timestamp:         "2024-01-15T10:30:00Z",
	}
}

func makeEngine(source stubSource, randValue float64, reporter Reporter) *Engine {
	strategy := NewFundingStrategy(defaultStrategyConfig(),
		WithRand(func() float64 { return randValue }))
	gas := domain.GasBudget{GasPriceWei: 20_000_000_000, MaxGasLimit: 5_000_000}
	return NewEngine(source, strategy, gas, reporter, logger.NewNop(), nil)
}

func TestEngine_Execute_Success(t *testing.T) {
	source := stubSource{rates: map[string]string{
		"binance": "0.0001",
		"bybit":   "0.0004",
	}}
	reporter := &captureReporter{}
	engine := makeEngine(source, 0, reporter)

	resp := engine.Execute(context.Background(), makeRequest())

	if !resp.IsSuccess() {
		t.Fatalf("status = %s (%s), want success", resp.Status, resp.ErrorMessage)
	}
	want := decimal.RequireFromString("2.85")
	if !resp.Profit.Equal(want) {
		t.Errorf("profit = %s, want %s", resp.Profit, want)
	}
	if resp.Elapsed <= 0 {
		t.Errorf("elapsed = %s, want > 0", resp.Elapsed)
	}
	if resp.GasUsed != 20_000_000_000 {
		t.Errorf("gas used = %d, want 20000000000", resp.GasUsed)
	}
	if resp.ErrorMessage != "" {
		t.Errorf("error message on success = %q, want empty", resp.ErrorMessage)
	}

	if len(reporter.results) != 1 {
		t.Fatalf("reported results = %d, want 1", len(reporter.results))
	}
	if got := reporter.results[0].Request.StrategyID; got != "funding-rate-arb-001" {
		t.Errorf("reported strategy_id = %q", got)
	}
}

func TestEngine_Execute_Failures(t *testing.T) {
	goodRates := map[string]string{
		"binance": "0.0001",
		"bybit":   "0.0004",
	}

	tests := []struct {
		name        string
		rates       map[string]string
		randValue   float64
		mutate      func(*domain.Request)
		wantMessage string
	}{
		{
			name:  "unsupported_primary_exchange",
			rates: map[string]string{"bybit": "0.0004"},
			mutate: func(r *domain.Request) {
				r.PrimaryExchange = "kraken"
			},
			wantMessage: "Unsupported exchange: kraken",
		},
		{
			name: "below_threshold",
			rates: map[string]string{
				"binance": "0.00020",
				"bybit":   "0.00021",
			},
			wantMessage: "below threshold",
		},
		{
			name:        "probabilistic_failure",
			rates:       goodRates,
			randValue:   0.99,
			wantMessage: "Arbitrage execution failed",
		},
		{
			name:  "empty_strategy_id",
			rates: goodRates,
			mutate: func(r *domain.Request) {
				r.StrategyID = ""
			},
			wantMessage: "strategy_id is empty",
		},
		{
			name:  "non_positive_amount",
			rates: goodRates,
			mutate: func(r *domain.Request) {
				r.Amount = decimal.Zero
			},
			wantMessage: "amount must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := makeEngine(stubSource{rates: tt.rates}, tt.randValue, nil)

			req := makeRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			resp := engine.Execute(context.Background(), req)

			if resp.IsSuccess() {
				t.Fatalf("status = success, want error")
			}
			if !strings.Contains(resp.ErrorMessage, tt.wantMessage) {
				t.Errorf("error message = %q, want it to contain %q", resp.ErrorMessage, tt.wantMessage)
			}
			// Failures are not timed and carry no profit or gas.
			if resp.Elapsed != 0 {
				t.Errorf("elapsed = %s, want 0 on failure", resp.Elapsed)
			}
			if !resp.Profit.IsZero() {
				t.Errorf("profit = %s, want 0 on failure", resp.Profit)
			}
			if resp.GasUsed != 0 {
				t.Errorf("gas used = %d, want 0 on failure", resp.GasUsed)
			}
		})
	}
}

func TestEngine_Execute_NeverPanicsWithNilReporter(t *testing.T) {
	source := stubSource{rates: map[string]string{
		"binance": "0.0001",
		"bybit":   "0.0004",
	}}
	engine := makeEngine(source, 0, nil)

	resp := engine.Execute(context.Background(), makeRequest())
	if !resp.IsSuccess() {
		t.Fatalf("status = %s, want success", resp.Status)
	}
}
