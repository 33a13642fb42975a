package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/internal/apperror"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry([]Connector{
		{Name: "binance", BaseURL: "https://fapi.binance.com", TakerFee: 0.0004},
		{Name: "bybit", BaseURL: "https://api.bybit.com"},
	})

	c, err := reg.Lookup("binance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.BaseURL != "https://fapi.binance.com" {
		t.Errorf("base url = %q", c.BaseURL)
	}
	if c.TakerFee != 0.0004 {
		t.Errorf("taker fee = %v", c.TakerFee)
	}

	_, err = reg.Lookup("kraken")
	if err == nil {
		t.Fatal("expected error for unknown exchange")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("err type = %T, want *apperror.AppError", err)
	}
	if appErr.Code != apperror.CodeUnsupportedExchange {
		t.Errorf("code = %s, want UNSUPPORTED_EXCHANGE", appErr.Code)
	}
	if appErr.Context != "kraken" {
		t.Errorf("context = %q, want the exchange identifier", appErr.Context)
	}
}

func TestRegistry_SupportsAndNames(t *testing.T) {
	reg := NewRegistry([]Connector{
		{Name: "okx"},
		{Name: "binance"},
		{Name: "bybit"},
	})

	if !reg.Supports("okx") {
		t.Error("Supports(okx) = false")
	}
	if reg.Supports("kraken") {
		t.Error("Supports(kraken) = true")
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}

	names := reg.Names()
	want := []string{"binance", "bybit", "okx"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q (sorted)", i, names[i], want[i])
		}
	}
}

func TestDiff(t *testing.T) {
	a := Observation{Rate: decimal.RequireFromString("0.0004")}
	b := Observation{Rate: decimal.RequireFromString("0.0001")}

	if got := Diff(a, b); !got.Equal(decimal.RequireFromString("0.0003")) {
		t.Errorf("Diff(a, b) = %s, want 0.0003", got)
	}
	if got := Diff(b, a); !got.Equal(decimal.RequireFromString("-0.0003")) {
		t.Errorf("Diff(b, a) = %s, want -0.0003", got)
	}
}
