// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig                 `mapstructure:"app"`
	Server    ServerConfig              `mapstructure:"server"`
	Exchanges map[string]ExchangeConfig `mapstructure:"exchanges"`
	FlashLoan FlashLoanConfig           `mapstructure:"flash_loan"`
	Gas       GasConfig                 `mapstructure:"gas"`
	Strategy  StrategyConfig            `mapstructure:"strategy"`
	Telemetry TelemetryConfig           `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the TCP listener and per-connection settings.
type ServerConfig struct {
	ListenAddr        string        `mapstructure:"listen_addr"`
	MaxFrameBytes     int           `mapstructure:"max_frame_bytes"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"` // 0 = unlimited
	WSEnabled         bool          `mapstructure:"ws_enabled"`
	WSListenAddr      string        `mapstructure:"ws_listen_addr"`
	HealthPort        int           `mapstructure:"health_port"`
}

// ExchangeConfig holds connector metadata for one exchange.
// Credentials are placeholders; no live connectivity happens here.
type ExchangeConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	APIKey    string  `mapstructure:"api_key"`
	SecretKey string  `mapstructure:"secret_key"`
	MakerFee  float64 `mapstructure:"maker_fee"`
	TakerFee  float64 `mapstructure:"taker_fee"`
}

// FlashLoanConfig lists liquidity provider identifiers. Informational
// only; no borrowing logic is wired to them.
type FlashLoanConfig struct {
	Providers []string `mapstructure:"providers"`
}

// GasConfig holds the cost-accounting constants attached to successful
// responses. Read-only after startup.
type GasConfig struct {
	GasPriceWei uint64 `mapstructure:"gas_price_wei"`
	MaxGasLimit uint64 `mapstructure:"max_gas_limit"`
}

// StrategyConfig holds funding-rate strategy thresholds.
type StrategyConfig struct {
	RateDiffThreshold  float64       `mapstructure:"rate_diff_threshold"`
	SuccessProbability float64       `mapstructure:"success_probability"`
	EfficiencyFactor   float64       `mapstructure:"efficiency_factor"`
	ExecutionLatency   time.Duration `mapstructure:"execution_latency"`
}

// RateDiffThresholdDecimal returns the threshold as decimal.Decimal.
func (c *StrategyConfig) RateDiffThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.RateDiffThreshold)
}

// EfficiencyFactorDecimal returns the efficiency factor as decimal.Decimal.
func (c *StrategyConfig) EfficiencyFactorDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.EfficiencyFactor)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ENGINE")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ENGINE_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ENGINE_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ENGINE_LOG_LEVEL", "LOG_LEVEL")

	// Server
	v.BindEnv("server.listen_addr", "ENGINE_LISTEN_ADDR", "LISTEN_ADDR")
	v.BindEnv("server.ws_enabled", "ENGINE_WS_ENABLED")
	v.BindEnv("server.ws_listen_addr", "ENGINE_WS_LISTEN_ADDR")
	v.BindEnv("server.health_port", "ENGINE_HEALTH_PORT")

	// Gas
	v.BindEnv("gas.gas_price_wei", "ENGINE_GAS_PRICE_WEI")
	v.BindEnv("gas.max_gas_limit", "ENGINE_MAX_GAS_LIMIT")

	// Strategy
	v.BindEnv("strategy.rate_diff_threshold", "ENGINE_RATE_DIFF_THRESHOLD")
	v.BindEnv("strategy.success_probability", "ENGINE_SUCCESS_PROBABILITY")
	v.BindEnv("strategy.efficiency_factor", "ENGINE_EFFICIENCY_FACTOR")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ENGINE_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ENGINE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ENGINE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "funding-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.listen_addr", "127.0.0.1:8080")
	v.SetDefault("server.max_frame_bytes", 64*1024)
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.idle_timeout", "5m")
	v.SetDefault("server.requests_per_minute", 0)
	v.SetDefault("server.ws_enabled", false)
	v.SetDefault("server.ws_listen_addr", "127.0.0.1:8090")
	v.SetDefault("server.health_port", 8081)

	// Exchange registry defaults
	v.SetDefault("exchanges.binance.base_url", "https://fapi.binance.com")
	v.SetDefault("exchanges.binance.maker_fee", 0.0002)
	v.SetDefault("exchanges.binance.taker_fee", 0.0004)
	v.SetDefault("exchanges.bybit.base_url", "https://api.bybit.com")
	v.SetDefault("exchanges.bybit.maker_fee", 0.0002)
	v.SetDefault("exchanges.bybit.taker_fee", 0.0004)
	v.SetDefault("exchanges.okx.base_url", "https://www.okx.com")
	v.SetDefault("exchanges.okx.maker_fee", 0.0002)
	v.SetDefault("exchanges.okx.taker_fee", 0.0004)

	// Flash loan defaults
	v.SetDefault("flash_loan.providers", []string{"aave", "dydx", "compound"})

	// Gas defaults: 20 gwei, 5M gas limit
	v.SetDefault("gas.gas_price_wei", uint64(20_000_000_000))
	v.SetDefault("gas.max_gas_limit", uint64(5_000_000))

	// Strategy defaults
	v.SetDefault("strategy.rate_diff_threshold", 0.0001)
	v.SetDefault("strategy.success_probability", 0.9)
	v.SetDefault("strategy.efficiency_factor", 0.95)
	v.SetDefault("strategy.execution_latency", "100us")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "funding-engine")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Server.MaxFrameBytes <= 0 {
		return fmt.Errorf("server.max_frame_bytes must be positive")
	}
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("exchanges registry cannot be empty")
	}
	if c.Strategy.RateDiffThreshold < 0 {
		return fmt.Errorf("strategy.rate_diff_threshold cannot be negative")
	}
	if c.Strategy.SuccessProbability < 0 || c.Strategy.SuccessProbability > 1 {
		return fmt.Errorf("strategy.success_probability must be in [0, 1]")
	}
	if c.Strategy.EfficiencyFactor <= 0 || c.Strategy.EfficiencyFactor > 1 {
		return fmt.Errorf("strategy.efficiency_factor must be in (0, 1]")
	}
	if c.Gas.MaxGasLimit == 0 {
		return fmt.Errorf("gas.max_gas_limit must be positive")
	}
	return nil
}
