package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, "https://www.googleapis.com/books/v1", cfg.ProviderBaseURL)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(KeyAddr, ":9090")
	t.Setenv(KeyProviderTimeout, "2s")
	t.Setenv(KeyCORSAllowedOrigins, " https://a.example , ,https://b.example")
	t.Setenv(KeyEnableHSTS, "true")
	t.Setenv(KeyRateLimitBurst, "5")

	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.EnableHSTS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeyDSN, ""},
		{KeyDBTimeout, "0s"},
		{KeyRateLimitRPS, "0"},
		{KeyMaxBodyBytes, "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
