package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Normalize(t *testing.T) {
	cfg := &Config{
		StorageOrigin: "https://example.supabase.co/",
	}
	cfg.normalize()

	assert.Equal(t, "https://example.supabase.co", cfg.StorageOrigin)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 12, cfg.GalleryPerPage)
	assert.Equal(t, int64(10<<20), cfg.BlurMaxBytes)
	assert.Equal(t, 10*time.Second, cfg.BlurFetchTimeout)
	assert.Greater(t, cfg.AssemblerConcurrency, 0)
	assert.Equal(t, int64(100), cfg.MaxConcurrency)
}

func TestConfig_NormalizeKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		CacheTTL:             5 * time.Minute,
		GalleryPerPage:       6,
		AssemblerConcurrency: 3,
	}
	cfg.normalize()

	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 6, cfg.GalleryPerPage)
	assert.Equal(t, 3, cfg.AssemblerConcurrency)
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:9090", (&Config{}).Addr())
	assert.Equal(t, "127.0.0.1:8080", (&Config{ServerHost: "127.0.0.1", ServerPort: 8080}).Addr())
}

func TestConfig_AllowOrigins(t *testing.T) {
	cfg := &Config{CORSAllowOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins())

	assert.Empty(t, (&Config{}).AllowOrigins())
}

func TestConfig_PostgresDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.example",
		DBPort:     5432,
		DBUsername: "postgres",
		DBPassword: "secret",
		DBName:     "gallery",
	}
	assert.Equal(t, "host=db.example port=5432 user=postgres password=secret dbname=gallery sslmode=disable", cfg.PostgresDSN())

	cfg.DBSSLMode = "require"
	assert.Contains(t, cfg.PostgresDSN(), "sslmode=require")
}
