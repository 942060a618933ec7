package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ScaleMinMax, cfg.ScalingMethod)
	assert.Equal(t, EncodeLabel, cfg.EncodingMethod)
	assert.Equal(t, 20, cfg.MaxCategories)
	assert.True(t, cfg.ExtractDateFeatures)
	assert.Equal(t, DefaultDateFeatures(), cfg.DateFeatures)
	assert.Equal(t, InfinityToNull, cfg.InfinityPolicy)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown scaling method",
			mutate:  func(c *Config) { c.ScalingMethod = "QUANTILE" },
			wantErr: "scaling method",
		},
		{
			name:    "unknown encoding method",
			mutate:  func(c *Config) { c.EncodingMethod = "HASH" },
			wantErr: "encoding method",
		},
		{
			name:    "unknown infinity policy",
			mutate:  func(c *Config) { c.InfinityPolicy = "DROP" },
			wantErr: "infinity policy",
		},
		{
			name:    "max categories below one",
			mutate:  func(c *Config) { c.MaxCategories = -1 },
			wantErr: "max categories",
		},
		{
			name:    "unknown date feature",
			mutate:  func(c *Config) { c.DateFeatures = []string{"year", "decade"} },
			wantErr: "date feature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
