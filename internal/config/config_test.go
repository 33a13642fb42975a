package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "funding-engine" {
		t.Errorf("app.name = %q", cfg.App.Name)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("server.listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.MaxFrameBytes != 64*1024 {
		t.Errorf("server.max_frame_bytes = %d", cfg.Server.MaxFrameBytes)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("server.request_timeout = %s", cfg.Server.RequestTimeout)
	}
	if cfg.Server.IdleTimeout != 5*time.Minute {
		t.Errorf("server.idle_timeout = %s", cfg.Server.IdleTimeout)
	}
	if cfg.Server.HealthPort != 8081 {
		t.Errorf("server.health_port = %d", cfg.Server.HealthPort)
	}

	for _, name := range []string{"binance", "bybit", "okx"} {
		if _, ok := cfg.Exchanges[name]; !ok {
			t.Errorf("default exchange registry missing %q", name)
		}
	}
	if cfg.Exchanges["binance"].BaseURL != "https://fapi.binance.com" {
		t.Errorf("binance base_url = %q", cfg.Exchanges["binance"].BaseURL)
	}

	if cfg.Gas.GasPriceWei != 20_000_000_000 {
		t.Errorf("gas.gas_price_wei = %d", cfg.Gas.GasPriceWei)
	}
	if cfg.Gas.MaxGasLimit != 5_000_000 {
		t.Errorf("gas.max_gas_limit = %d", cfg.Gas.MaxGasLimit)
	}

	if cfg.Strategy.RateDiffThreshold != 0.0001 {
		t.Errorf("strategy.rate_diff_threshold = %v", cfg.Strategy.RateDiffThreshold)
	}
	if cfg.Strategy.SuccessProbability != 0.9 {
		t.Errorf("strategy.success_probability = %v", cfg.Strategy.SuccessProbability)
	}
	if cfg.Strategy.EfficiencyFactor != 0.95 {
		t.Errorf("strategy.efficiency_factor = %v", cfg.Strategy.EfficiencyFactor)
	}
	if cfg.Strategy.ExecutionLatency != 100*time.Microsecond {
		t.Errorf("strategy.execution_latency = %s", cfg.Strategy.ExecutionLatency)
	}

	if cfg.Telemetry.Enabled {
		t.Error("telemetry enabled by default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  listen_addr: "0.0.0.0:9000"
  max_frame_bytes: 1024
strategy:
  success_probability: 1.0
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("server.listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.MaxFrameBytes != 1024 {
		t.Errorf("server.max_frame_bytes = %d", cfg.Server.MaxFrameBytes)
	}
	if cfg.Strategy.SuccessProbability != 1.0 {
		t.Errorf("strategy.success_probability = %v", cfg.Strategy.SuccessProbability)
	}
	// Untouched values keep their defaults.
	if cfg.Gas.GasPriceWei != 20_000_000_000 {
		t.Errorf("gas.gas_price_wei = %d", cfg.Gas.GasPriceWei)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("failed to load defaults: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults_are_valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty_listen_addr",
			mutate:  func(c *Config) { c.Server.ListenAddr = "" },
			wantErr: "listen_addr",
		},
		{
			name:    "non_positive_frame_limit",
			mutate:  func(c *Config) { c.Server.MaxFrameBytes = 0 },
			wantErr: "max_frame_bytes",
		},
		{
			name:    "empty_registry",
			mutate:  func(c *Config) { c.Exchanges = nil },
			wantErr: "exchanges",
		},
		{
			name:    "negative_threshold",
			mutate:  func(c *Config) { c.Strategy.RateDiffThreshold = -0.1 },
			wantErr: "rate_diff_threshold",
		},
		{
			name:    "probability_above_one",
			mutate:  func(c *Config) { c.Strategy.SuccessProbability = 1.5 },
			wantErr: "success_probability",
		},
		{
			name:    "zero_efficiency",
			mutate:  func(c *Config) { c.Strategy.EfficiencyFactor = 0 },
			wantErr: "efficiency_factor",
		},
		{
			name:    "zero_gas_limit",
			mutate:  func(c *Config) { c.Gas.MaxGasLimit = 0 },
			wantErr: "max_gas_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecimalAccessors(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Strategy.RateDiffThresholdDecimal(); got.String() != "0.0001" {
		t.Errorf("threshold decimal = %s", got)
	}
	if got := cfg.Strategy.EfficiencyFactorDecimal(); got.String() != "0.95" {
		t.Errorf("efficiency decimal = %s", got)
	}
}
