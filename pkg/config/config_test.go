package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 3*time.Second, cfg.Documents.AssetTimeout)
	assert.Equal(t, "Antananarivo", cfg.Documents.IssuePlace)
	assert.True(t, cfg.Documents.QREnabled)
	assert.Equal(t, 24*time.Hour, cfg.Archive.SignedURLTTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://stages.gov.mg/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.mg, ,https://b.mg")
	t.Setenv("DOCUMENTS_ASSET_TIMEOUT", "750ms")
	t.Setenv("DOCUMENTS_CACHE_TTL", "not-a-duration")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "https://stages.gov.mg", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.mg", "https://b.mg"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 750*time.Millisecond, cfg.Documents.AssetTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Documents.CacheTTL)
}
