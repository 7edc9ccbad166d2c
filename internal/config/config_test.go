package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, cfg map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func validConfig() map[string]interface{} {
	return map[string]interface{}{
		"private_key": "testkey",
		"rpc_list":    []string{"https://rpc.example"},
		"relays": []map[string]interface{}{
			{"kind": "rpc", "endpoint": "https://rpc.example"},
			{
				"kind":         "query_token",
				"endpoint":     "https://fast.example",
				"auth_token":   "secret",
				"tip_lamports": 100000,
				"tip_accounts": []string{"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"},
			},
		},
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, validConfig())

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "testkey", cfg.PrivateKey)
	assert.Equal(t, uint32(DefaultComputeUnits), cfg.ComputeUnits)
	assert.Equal(t, uint64(DefaultSlippageBps), cfg.SlippageBps)
	assert.Equal(t, DefaultSubmitTimeoutMs, cfg.SubmitTimeoutMs)
	require.Len(t, cfg.Relays, 2)
	assert.Equal(t, RelayKindQueryToken, cfg.Relays[1].Kind)
}

func TestTipLamportsFollowsTipTakingRelays(t *testing.T) {
	path := writeConfig(t, validConfig())

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Plain RPC takes no tip; only the query-token relay contributes.
	assert.Equal(t, []uint64{100000}, cfg.TipLamports())
}

func TestLoadConfigMissingKey(t *testing.T) {
	c := validConfig()
	delete(c, "private_key")

	_, err := LoadConfig(writeConfig(t, c))
	assert.Error(t, err)
}

func TestLoadConfigEmptyRPCList(t *testing.T) {
	c := validConfig()
	c["rpc_list"] = []string{}

	_, err := LoadConfig(writeConfig(t, c))
	assert.Error(t, err)
}

func TestLoadConfigBadRPCScheme(t *testing.T) {
	c := validConfig()
	c["rpc_list"] = []string{"ftp://rpc.example"}

	_, err := LoadConfig(writeConfig(t, c))
	assert.Error(t, err)
}

func TestLoadConfigRelayValidation(t *testing.T) {
	c := validConfig()
	c["relays"] = []map[string]interface{}{
		{"kind": "query_token", "endpoint": "https://fast.example"},
	}
	_, err := LoadConfig(writeConfig(t, c))
	assert.Error(t, err, "auth_token is required")

	c["relays"] = []map[string]interface{}{
		{"kind": "teleport", "endpoint": "https://x.example"},
	}
	_, err = LoadConfig(writeConfig(t, c))
	assert.Error(t, err, "unknown relay kind")

	c["relays"] = []map[string]interface{}{}
	_, err = LoadConfig(writeConfig(t, c))
	assert.Error(t, err, "at least one relay required")
}

func TestLoadConfigGRPCRelay(t *testing.T) {
	c := validConfig()
	c["relays"] = []map[string]interface{}{
		{"kind": "grpc", "endpoint": "relay.example:443", "method": "/landing.Service/Send"},
	}

	cfg, err := LoadConfig(writeConfig(t, c))
	require.NoError(t, err)
	assert.Empty(t, cfg.TipLamports())
}

func TestLoadConfigPriorityLevel(t *testing.T) {
	c := validConfig()
	c["priority_level"] = "high"

	cfg, err := LoadConfig(writeConfig(t, c))
	require.NoError(t, err)
	assert.Equal(t, "high", cfg.PriorityLevel)

	c["priority_level"] = "turbo"
	_, err = LoadConfig(writeConfig(t, c))
	assert.Error(t, err)
}

func TestLoadConfigInvalidSlippage(t *testing.T) {
	c := validConfig()
	c["slippage_bps"] = 10_000

	_, err := LoadConfig(writeConfig(t, c))
	assert.Error(t, err)
}

func TestEnvOverridesPrivateKey(t *testing.T) {
	t.Setenv("TRADEKIT_PRIVATE_KEY", "envkey")

	cfg, err := LoadConfig(writeConfig(t, validConfig()))
	require.NoError(t, err)
	assert.Equal(t, "envkey", cfg.PrivateKey)
}

func TestEnvOverridesRPCList(t *testing.T) {
	t.Setenv("TRADEKIT_RPC_LIST", " https://a.example , https://b.example ")

	cfg, err := LoadConfig(writeConfig(t, validConfig()))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.RPCList)
}
