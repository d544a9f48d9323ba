package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/quantprim/prism/internal/core"
)

type Config struct {
	Backtest BacktestConfig `mapstructure:"backtest"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// BacktestConfig holds the default run parameters.
type BacktestConfig struct {
	Strategy       string  `mapstructure:"strategy"`
	FastPeriod     int     `mapstructure:"fast_period"`
	SlowPeriod     int     `mapstructure:"slow_period"`
	TrendPeriod    int     `mapstructure:"trend_period"`
	RSIPeriod      int     `mapstructure:"rsi_period"`
	AllowShort     bool    `mapstructure:"allow_short"`
	InitialCapital float64 `mapstructure:"initial_capital"`
	CostRate       float64 `mapstructure:"cost_rate"`
	TradeSize      float64 `mapstructure:"trade_size"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
}

// SweepConfig holds the parameter-sweep grid and ranking settings.
type SweepConfig struct {
	FastMin  int    `mapstructure:"fast_min"`
	FastMax  int    `mapstructure:"fast_max"`
	FastStep int    `mapstructure:"fast_step"`
	SlowMin  int    `mapstructure:"slow_min"`
	SlowMax  int    `mapstructure:"slow_max"`
	SlowStep int    `mapstructure:"slow_step"`
	Metric   string `mapstructure:"metric"`
	Workers  int    `mapstructure:"workers"`
}

// FeedConfig selects the market data provider.
type FeedConfig struct {
	Provider string      `mapstructure:"provider"` // "limex" or "oanda"
	Limex    LimexConfig `mapstructure:"limex"`
	OANDA    OANDAConfig `mapstructure:"oanda"`
}

type LimexConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type OANDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// LedgerConfig selects the trade ledger backend.
type LedgerConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

// ArchiveConfig selects the result archive backend.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			Strategy:       "ma_crossover",
			FastPeriod:     20,
			SlowPeriod:     50,
			TrendPeriod:    50,
			RSIPeriod:      14,
			InitialCapital: 10000,
			CostRate:       0.001,
			TradeSize:      1,
			RiskFreeRate:   0.02,
		},
		Sweep: SweepConfig{
			FastMin:  5,
			FastMax:  50,
			FastStep: 5,
			SlowMin:  20,
			SlowMax:  200,
			SlowStep: 10,
			Metric:   "sharpe_ratio",
			Workers:  4,
		},
		Feed: FeedConfig{
			Provider: "limex",
		},
		Ledger: LedgerConfig{
			Driver: "memory",
			DSN:    "prism.db",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "results",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backtest.FastPeriod <= 0 || c.Backtest.SlowPeriod <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("periods must be positive, got fast=%d slow=%d",
				c.Backtest.FastPeriod, c.Backtest.SlowPeriod))
	}
	if c.Backtest.FastPeriod >= c.Backtest.SlowPeriod {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast period %d must be below slow period %d",
				c.Backtest.FastPeriod, c.Backtest.SlowPeriod))
	}
	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.CostRate < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cost_rate cannot be negative, got %f", c.Backtest.CostRate))
	}

	if c.Sweep.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sweep workers must be at least 1, got %d", c.Sweep.Workers))
	}
	if c.Sweep.FastStep <= 0 || c.Sweep.SlowStep <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sweep steps must be positive, got fast=%d slow=%d",
				c.Sweep.FastStep, c.Sweep.SlowStep))
	}

	switch c.Feed.Provider {
	case "", "limex", "oanda":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown feed provider: %s", c.Feed.Provider))
	}

	switch c.Ledger.Driver {
	case "", "memory":
	case "sqlite":
		if c.Ledger.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("ledger dsn required when driver is sqlite"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown ledger driver: %s", c.Ledger.Driver))
	}

	switch c.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type: %s", c.Archive.Type))
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		}
	}

	return nil
}
