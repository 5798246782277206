package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"WEB_HOST", "WEB_PORT", "WEB_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_URL", "DATABASE_MAX_OPEN_CONNS", "REDIS_ADDRESS", "REDIS_DB",
		"PROGRESS_STORE", "PROGRESS_TIMEZONE", "CATALOG_SOURCE", "ANALYSIS_TOP_N",
		"ANALYSIS_DEFAULT_CONFIDENCE", "ANALYSIS_LANDMARK_COUNT", "ANALYSIS_MAX_IMAGE_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Web.Host != "0.0.0.0" || cfg.Web.Port != 8080 {
		t.Errorf("web = %s:%d, want 0.0.0.0:8080", cfg.Web.Host, cfg.Web.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Database.MaxOpenConns != 25 || cfg.Database.MaxIdleConns != 5 {
		t.Errorf("database pool = %+v", cfg.Database)
	}
	if cfg.Progress.Store != ProgressStoreMemory || cfg.Catalog.Source != CatalogSourceEmbedded {
		t.Errorf("stores = %q / %q", cfg.Progress.Store, cfg.Catalog.Source)
	}
	if cfg.Analysis.TopN != 3 || cfg.Analysis.DefaultConfidence != 0.85 || cfg.Analysis.LandmarkCount != 468 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("PROGRESS_STORE", "Redis")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("ANALYSIS_TOP_N", "5")
	t.Setenv("ANALYSIS_DEFAULT_CONFIDENCE", "0.6")
	t.Setenv("PROGRESS_TIMEZONE", "UTC")

	cfg := Load()

	if cfg.Web.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Web.Port)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Web.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Web.AllowedOrigins, want)
	}
	if cfg.Progress.Store != ProgressStoreRedis {
		t.Errorf("Store = %q, want redis", cfg.Progress.Store)
	}
	if cfg.Analysis.TopN != 5 || cfg.Analysis.DefaultConfidence != 0.6 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 7},
		{"valid", "12", 12},
		{"zero", "0", 7},
		{"negative", "-3", 7},
		{"garbage", "abc", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.value)
			if got := envInt("TEST_ENV_INT", 7); got != tt.want {
				t.Errorf("envInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"postgres without url", func(c *Config) { c.Progress.Store = ProgressStorePostgres }, "DATABASE_URL"},
		{"redis without address", func(c *Config) { c.Progress.Store = ProgressStoreRedis }, "REDIS_ADDRESS"},
		{"unknown store", func(c *Config) { c.Progress.Store = "sqlite" }, "unknown progress store"},
		{"mariadb without dsn", func(c *Config) { c.Catalog.Source = CatalogSourceMariaDB }, "CATALOG_DATABASE_URL"},
		{"unknown catalog", func(c *Config) { c.Catalog.Source = "csv" }, "unknown catalog source"},
		{"bad timezone", func(c *Config) { c.Progress.Timezone = "Mars/Olympus" }, "PROGRESS_TIMEZONE"},
		{"bad confidence", func(c *Config) { c.Analysis.DefaultConfidence = 1.5 }, "confidence"},
		{"bad port", func(c *Config) { c.Web.Port = 70000 }, "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Web:      WebConfig{Port: 8080},
				Progress: ProgressConfig{Store: ProgressStoreMemory},
				Catalog:  CatalogConfig{Source: CatalogSourceEmbedded},
				Analysis: AnalysisConfig{DefaultConfidence: 0.85},
			}
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
