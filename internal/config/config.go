package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/makeup-coach/internal/constants"
)

// Progress store backends.
const (
	ProgressStorePostgres = "postgres"
	ProgressStoreRedis    = "redis"
	ProgressStoreMemory   = "memory"
)

// Catalog sources.
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceMariaDB  = "mariadb"
)

type Config struct {
	Web      WebConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Progress ProgressConfig
	Catalog  CatalogConfig
	Analysis AnalysisConfig
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // localhost is always allowed
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type ProgressConfig struct {
	Store    string // postgres, redis or memory
	Timezone string // IANA zone deciding calendar days for streaks
}

// Location resolves the configured timezone.
func (c *ProgressConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

type CatalogConfig struct {
	Source      string // embedded or mariadb
	Path        string // optional YAML override of the embedded catalog
	DatabaseURL string // MariaDB DSN when Source is mariadb
}

type AnalysisConfig struct {
	RegionsPath       string // optional YAML override of the default regions
	TopN              int
	DefaultConfidence float64
	LandmarkCount     int
	MaxImageSize      int // larger uploads are downscaled to fit
}

// envString reads an environment variable, returning defaultVal when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envNonNegativeInt is envInt that also accepts zero (e.g. Redis database 0).
func envNonNegativeInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envList(key string) []string {
	var items []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envNonNegativeInt("REDIS_DB", 0),
		},
		Progress: ProgressConfig{
			Store:    strings.ToLower(envString("PROGRESS_STORE", ProgressStoreMemory)),
			Timezone: os.Getenv("PROGRESS_TIMEZONE"),
		},
		Catalog: CatalogConfig{
			Source:      strings.ToLower(envString("CATALOG_SOURCE", CatalogSourceEmbedded)),
			Path:        os.Getenv("CATALOG_PATH"),
			DatabaseURL: os.Getenv("CATALOG_DATABASE_URL"),
		},
		Analysis: AnalysisConfig{
			RegionsPath:       os.Getenv("REGIONS_PATH"),
			TopN:              envInt("ANALYSIS_TOP_N", constants.DefaultTopN),
			DefaultConfidence: envFloat("ANALYSIS_DEFAULT_CONFIDENCE", constants.DefaultConfidence),
			LandmarkCount:     envInt("ANALYSIS_LANDMARK_COUNT", constants.FaceMeshLandmarkCount),
			MaxImageSize:      envInt("ANALYSIS_MAX_IMAGE_SIZE", constants.MaxImageSize),
		},
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid web port: %d", c.Web.Port))
	}

	switch c.Progress.Store {
	case ProgressStoreMemory:
	case ProgressStorePostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres progress store"))
		}
	case ProgressStoreRedis:
		if c.Redis.Address == "" {
			errs = append(errs, errors.New("REDIS_ADDRESS is required for the redis progress store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown progress store: %q", c.Progress.Store))
	}
	if _, err := c.Progress.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid PROGRESS_TIMEZONE: %w", err))
	}

	switch c.Catalog.Source {
	case CatalogSourceEmbedded:
	case CatalogSourceMariaDB:
		if c.Catalog.DatabaseURL == "" {
			errs = append(errs, errors.New("CATALOG_DATABASE_URL is required for the mariadb catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog source: %q", c.Catalog.Source))
	}

	if c.Analysis.DefaultConfidence < 0 || c.Analysis.DefaultConfidence > 1 {
		errs = append(errs, fmt.Errorf("default confidence must be within [0,1], got %v", c.Analysis.DefaultConfidence))
	}

	return errors.Join(errs...)
}
