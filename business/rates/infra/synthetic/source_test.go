package synthetic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/rates/domain"
	"github.com/fd1az/funding-engine/internal/apperror"
)

func testRegistry() *domain.Registry {
	return domain.NewRegistry([]domain.Connector{
		{Name: "binance", BaseURL: "https://fapi.binance.com"},
		{Name: "bybit", BaseURL: "https://api.bybit.com"},
		{Name: "okx", BaseURL: "https://www.okx.com"},
		{Name: "deribit", BaseURL: "https://www.deribit.com"},
	})
}

func TestSource_Rate(t *testing.T) {
	tests := []struct {
		name     string
		exchange string
		randVal  float64
		wantRate string
	}{
		{name: "binance_base", exchange: "binance", randVal: 0, wantRate: "0.0001"},
		{name: "bybit_base", exchange: "bybit", randVal: 0, wantRate: "0.0002"},
		{name: "okx_base", exchange: "okx", randVal: 0, wantRate: "0.0003"},
		{name: "registered_without_offset_uses_default", exchange: "deribit", randVal: 0, wantRate: "0.0001"},
		{name: "noise_is_added", exchange: "binance", randVal: 0.5, wantRate: "0.0002"}, // 0.0001 + 0.5*0.0002
	}

	observedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(testRegistry(),
				WithRand(func() float64 { return tt.randVal }),
				WithClock(func() time.Time { return observedAt }))

			obs, err := s.Rate(context.Background(), tt.exchange, "BTC-USDT")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if obs.Exchange != tt.exchange {
				t.Errorf("exchange = %q, want %q", obs.Exchange, tt.exchange)
			}
			if obs.Symbol != "BTC-USDT" {
				t.Errorf("symbol = %q", obs.Symbol)
			}
			if !obs.Rate.Equal(decimal.RequireFromString(tt.wantRate)) {
				t.Errorf("rate = %s, want %s", obs.Rate, tt.wantRate)
			}
			if !obs.ObservedAt.Equal(observedAt) {
				t.Errorf("observed_at = %s", obs.ObservedAt)
			}
		})
	}
}

func TestSource_RateBounds(t *testing.T) {
	s := NewSource(testRegistry())

	lower := decimal.RequireFromString("0.0001")
	upper := decimal.RequireFromString("0.0003") // base + noise span

	for i := 0; i < 100; i++ {
		obs, err := s.Rate(context.Background(), "binance", "ETH-USDT")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obs.Rate.LessThan(lower) || obs.Rate.GreaterThan(upper) {
			t.Fatalf("rate %s out of [%s, %s]", obs.Rate, lower, upper)
		}
	}
}

func TestSource_UnsupportedExchange(t *testing.T) {
	s := NewSource(testRegistry())

	_, err := s.Rate(context.Background(), "kraken", "BTC-USDT")
	if err == nil {
		t.Fatal("expected error for unregistered exchange")
	}
	if code := apperror.GetCode(err); code != apperror.CodeUnsupportedExchange {
		t.Errorf("code = %s, want UNSUPPORTED_EXCHANGE", code)
	}
}

func TestSource_CancelledContext(t *testing.T) {
	s := NewSource(testRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Rate(ctx, "binance", "BTC-USDT")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
