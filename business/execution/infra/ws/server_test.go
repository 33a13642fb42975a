package ws

import (
	"context"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/execution/app"
	"github.com/fd1az/funding-engine/business/execution/domain"
	"github.com/fd1az/funding-engine/business/execution/infra/wire"
	ratesDomain "github.com/fd1az/funding-engine/business/rates/domain"
	"github.com/fd1az/funding-engine/internal/apperror"
	"github.com/fd1az/funding-engine/internal/logger"
)

type stubSource struct {
	rates map[string]string
}

func (s stubSource) Rate(ctx context.Context, exchangeID, symbol string) (ratesDomain.Observation, error) {
	rate, ok := s.rates[exchangeID]
	if !ok {
		return ratesDomain.Observation{}, apperror.Unsupported(exchangeID)
	}
	return ratesDomain.Observation{
		Exchange: exchangeID,
		Symbol:   symbol,
		Rate:     decimal.RequireFromString(rate),
	}, nil
}

func startTestServer(t *testing.T) *Server {
	t.Helper()

	source := stubSource{rates: map[string]string{
		"binance": "0.0001",
		"bybit":   "0.0004",
	}}
	strategy := app.NewFundingStrategy(app.StrategyConfig{
		RateDiffThreshold:  decimal.RequireFromString("0.0001"),
		SuccessProbability: 0.9,
		EfficiencyFactor:   decimal.RequireFromString("0.95"),
	}, app.WithRand(func() float64 { return 0 }))

	engine := app.NewEngine(source, strategy,
		domain.GasBudget{GasPriceWei: 20_000_000_000, MaxGasLimit: 5_000_000},
		nil, logger.NewNop(), nil)

	srv := NewServer(Config{
		ListenAddr:    "127.0.0.1:0",
		MaxFrameBytes: 64 * 1024,
	}, engine, logger.NewNop(), nil)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func TestServer_ExecuteOverWebSocket(t *testing.T) {
	srv := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+srv.Addr().String()+"/execute", nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	payload := `{"strategy_id":"s1","symbol":"BTC-USDT","primary_exchange":"binance","secondary_exchange":"bybit","amount":10000,"priority":1,"timestamp":"2024-01-15T10:30:00Z"}`
	if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp, err := wire.DecodeResponse(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != domain.StatusSuccess {
		t.Fatalf("status = %s (%s), want success", resp.Status, resp.ErrorMessage)
	}
	if !resp.Profit.Equal(decimal.RequireFromString("2.85")) {
		t.Errorf("profit = %s, want 2.85", resp.Profit)
	}
}

func TestServer_MalformedMessageKeepsSession(t *testing.T) {
	srv := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+srv.Addr().String()+"/execute", nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp, err := wire.DecodeResponse(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != domain.StatusError {
		t.Fatalf("status = %s, want error", resp.Status)
	}

	// The session survives a bad message.
	payload := `{"strategy_id":"s2","symbol":"BTC-USDT","primary_exchange":"binance","secondary_exchange":"bybit","amount":10000,"priority":1,"timestamp":"2024-01-15T10:30:00Z"}`
	if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp, err = wire.DecodeResponse(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != domain.StatusSuccess {
		t.Fatalf("status after recovery = %s (%s), want success", resp.Status, resp.ErrorMessage)
	}
}
