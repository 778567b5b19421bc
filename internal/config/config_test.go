package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFrom_Valid(t *testing.T) {
	p := writeConfig(t, `server:
  host: "127.0.0.1"
  port: ":9000"
limits:
  max_batch_files: 5
  max_pixels: 1000000
cache:
  result_cache_enabled: true
  result_cache_ttl: 2m
convert:
  default_quality: 55
  text_backend: native
  ocr_languages: ["eng", "deu"]
  ocr_max_side: 2000
flashcards:
  max_cards: 3
`)
	cfg := LoadFrom(p)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Limits.MaxBatchFiles)
	assert.Equal(t, 1000000, cfg.Limits.MaxPixels)
	assert.Equal(t, 2000, cfg.Convert.OCRMaxSide)
	assert.True(t, cfg.Cache.ResultCacheEnabled)
	assert.Equal(t, 2*time.Minute, cfg.Cache.ResultCacheTTL)
	assert.Equal(t, 55, cfg.Convert.DefaultQuality)
	assert.Equal(t, "native", cfg.Convert.TextBackend)
	assert.Equal(t, []string{"eng", "deu"}, cfg.Convert.OCRLanguages)
	assert.Equal(t, 3, cfg.Flashcards.MaxCards)
}

func TestLoadFrom_AppliesDefaults(t *testing.T) {
	cfg := LoadFrom(writeConfig(t, "server:\n  host: \"\"\n"))

	assert.Equal(t, ":8000", cfg.Server.Port)
	assert.Equal(t, 70, cfg.Convert.DefaultQuality)
	assert.Equal(t, "mupdf", cfg.Convert.TextBackend)
	assert.Equal(t, "soffice", cfg.Convert.OfficeBinary)
	assert.Equal(t, "./uploads", cfg.Storage.UploadDir)
	assert.Equal(t, 10, cfg.Flashcards.MaxCards)
	assert.Equal(t, 40_000_000, cfg.Limits.MaxPixels)
	assert.Equal(t, 4000, cfg.Convert.OCRMaxSide)
	assert.Contains(t, cfg.PDF.PaperSizes, "A4")
}

func TestLoadFrom_PanicsOnInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{name: "quality too high", yml: "convert:\n  default_quality: 101\n"},
		{name: "negative user limit", yml: "rate_limiter:\n  user_limit: -1\n"},
		{name: "unknown text backend", yml: "convert:\n  text_backend: magic\n"},
		{name: "unknown default paper", yml: "pdf:\n  default_paper: B0\n"},
		{name: "negative pixel limit", yml: "limits:\n  max_pixels: -1\n"},
		{name: "negative ocr side", yml: "convert:\n  ocr_max_side: -5\n"},
		{name: "negative pool", yml: "pdf:\n  chrome_pool_size: -2\n"},
		{name: "broken yaml", yml: "server: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.yml)
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			_ = LoadFrom(p)
		})
	}
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	p := writeConfig(t, "server:\n  port: \":7777\"\n")
	t.Setenv("CONFIG_PATH", p)
	cfg := Load()
	if cfg.Server.Port != ":7777" {
		t.Fatalf("expected CONFIG_PATH to be used")
	}
}

func TestLoad_EnvOverridesBinaries(t *testing.T) {
	p := writeConfig(t, "server:\n  port: \":7777\"\n")
	t.Setenv("CONFIG_PATH", p)
	t.Setenv("CHROME_BIN", "/opt/chrome")
	t.Setenv("SOFFICE_BIN", "/opt/soffice")

	cfg := Load()
	assert.Equal(t, "/opt/chrome", cfg.PDF.ChromePath)
	assert.Equal(t, "/opt/soffice", cfg.Convert.OfficeBinary)
}
