// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/solanastream/tradekit/internal/types"
)

// Relay kinds accepted in configuration.
const (
	RelayKindRPC         = "rpc"
	RelayKindQueryToken  = "query_token"
	RelayKindHeaderKey   = "header_key"
	RelayKindBlockEngine = "block_engine"
	RelayKindGRPC        = "grpc"
)

type RelayConfig struct {
	Kind        string   `mapstructure:"kind"`
	Name        string   `mapstructure:"name"`
	Endpoint    string   `mapstructure:"endpoint"`
	AuthToken   string   `mapstructure:"auth_token"`
	Method      string   `mapstructure:"method"`
	RPS         float64  `mapstructure:"rps"`
	TipLamports uint64   `mapstructure:"tip_lamports"`
	TipAccounts []string `mapstructure:"tip_accounts"`
}

type StreamConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Token     string `mapstructure:"token"`
	Plaintext bool   `mapstructure:"plaintext"`
}

type Config struct {
	RPCList    []string `mapstructure:"rpc_list"`
	PrivateKey string   `mapstructure:"private_key"`
	// PriorityLevel selects a named compute-budget profile. When set it
	// overrides compute_units and unit_price_micro_lamports.
	PriorityLevel          string        `mapstructure:"priority_level"`
	ComputeUnits           uint32        `mapstructure:"compute_units"`
	UnitPriceMicroLamports uint64        `mapstructure:"unit_price_micro_lamports"`
	SlippageBps            uint64        `mapstructure:"slippage_bps"`
	SubmitTimeoutMs        int           `mapstructure:"submit_timeout_ms"`
	ReconnectMaxElapsedSec int           `mapstructure:"reconnect_max_elapsed_sec"`
	DebugLogging           bool          `mapstructure:"debug_logging"`
	Relays                 []RelayConfig `mapstructure:"relays"`
	ConfirmedStream        StreamConfig  `mapstructure:"confirmed_stream"`
	FragmentStream         StreamConfig  `mapstructure:"fragment_stream"`
}

const (
	DefaultComputeUnits           = 200_000
	DefaultUnitPriceMicroLamports = 5_000
	DefaultSlippageBps            = 500
	DefaultSubmitTimeoutMs        = 8_000
	DefaultReconnectMaxElapsedSec = 120
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"compute_units":             DefaultComputeUnits,
		"unit_price_micro_lamports": DefaultUnitPriceMicroLamports,
		"slippage_bps":              DefaultSlippageBps,
		"submit_timeout_ms":         DefaultSubmitTimeoutMs,
		"reconnect_max_elapsed_sec": DefaultReconnectMaxElapsedSec,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// TipLamports returns the configured tip for every tip-taking relay,
// in declaration order.
func (cfg *Config) TipLamports() []uint64 {
	var tips []uint64
	for _, r := range cfg.Relays {
		if relayTakesTip(r.Kind) {
			tips = append(tips, r.TipLamports)
		}
	}
	return tips
}

func relayTakesTip(kind string) bool {
	switch kind {
	case RelayKindQueryToken, RelayKindHeaderKey, RelayKindBlockEngine:
		return true
	}
	return false
}

func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if len(cfg.Relays) == 0 {
		return errors.New("at least one relay required")
	}
	for i, r := range cfg.Relays {
		if err := validateRelay(r); err != nil {
			return fmt.Errorf("relay %d: %w", i, err)
		}
	}
	return nil
}

func validateRelay(r RelayConfig) error {
	switch r.Kind {
	case RelayKindRPC, RelayKindBlockEngine:
		return validateURLWithCache(r.Endpoint, "http")
	case RelayKindQueryToken, RelayKindHeaderKey:
		if r.AuthToken == "" {
			return errors.New("auth_token required")
		}
		if len(r.TipAccounts) == 0 {
			return errors.New("tip_accounts required")
		}
		return validateURLWithCache(r.Endpoint, "http")
	case RelayKindGRPC:
		if r.Method == "" {
			return errors.New("method required for grpc relay")
		}
		if r.Endpoint == "" {
			return errors.New("endpoint required")
		}
		return nil
	default:
		return fmt.Errorf("unknown relay kind %q", r.Kind)
	}
}

func validateNumericParams(cfg *Config) error {
	if cfg.PriorityLevel != "" && !types.PriorityLevel(cfg.PriorityLevel).Valid() {
		return fmt.Errorf("unknown priority_level %q", cfg.PriorityLevel)
	}
	if cfg.ComputeUnits == 0 {
		return errors.New("invalid compute_units")
	}
	if cfg.SlippageBps >= 10_000 {
		return errors.New("invalid slippage_bps")
	}
	if cfg.SubmitTimeoutMs <= 0 {
		return errors.New("invalid submit_timeout_ms")
	}
	if cfg.ReconnectMaxElapsedSec <= 0 {
		return errors.New("invalid reconnect_max_elapsed_sec")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("TRADEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envKey := v.GetString("PRIVATE_KEY")
	if envKey != "" {
		cfg.PrivateKey = envKey
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
