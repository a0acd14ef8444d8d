package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "vulnserve", cfg.Logger.ServiceName)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 512, cfg.Models.MaxSequenceLength)
	assert.Equal(t, 256, cfg.Models.MaxRepairTokens)
	assert.Equal(t, 0, cfg.Models.BosID)
	assert.Equal(t, 1, cfg.Models.PadID)
	assert.Equal(t, 2, cfg.Models.EosID)
	assert.Equal(t, 3, cfg.Runtime.MaxAttempts)
}

func TestNewConfigFromViper_Valid(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)
	v.Set("assets.label_map_path", "/srv/assets/label_map.json")
	v.Set("server.addr", ":9000")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/srv/assets/label_map.json", cfg.Assets.LabelMapPath)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"zero batch size", func(c *Config) { c.Server.MaxBatchSize = 0 }, "max_batch_size"},
		{"missing runtime url", func(c *Config) { c.Runtime.BaseURL = "" }, "runtime.base_url"},
		{"zero attempts", func(c *Config) { c.Runtime.MaxAttempts = 0 }, "max_attempts"},
		{"tiny frame", func(c *Config) { c.Models.MaxSequenceLength = 3 }, "max_sequence_length"},
		{"zero repair budget", func(c *Config) { c.Models.MaxRepairTokens = 0 }, "max_repair_tokens"},
		{"no label map source", func(c *Config) { c.Assets.LabelMapPath = ""; c.Assets.Endpoint = "" }, "label_map_path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			cfg.Assets.LabelMapPath = "/srv/assets/label_map.json"
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
