package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool

	DatabaseURL string
	DBPath      string

	TomTomAPIKey   string
	TomTomBaseURL  string
	RoutingTimeout time.Duration

	GeocodeBaseURL string
	GeocodeTimeout time.Duration

	CoordCacheSize int
	RouteCacheSize int
	AbsentTTL      time.Duration

	RedisAddr     string
	RedisCoordTTL time.Duration

	MetricsEnabled bool
}

func FromEnv() Config {
	return Config{
		Addr:       getenv("ADDR", ":8010"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBPath:      getenv("DB_PATH", "gps_cache.db"),

		TomTomAPIKey:   strings.TrimSpace(os.Getenv("TOMTOM_API_KEY")),
		TomTomBaseURL:  getenv("TOMTOM_BASE_URL", "https://api.tomtom.com"),
		RoutingTimeout: getduration("ROUTING_TIMEOUT", 10*time.Second),

		GeocodeBaseURL: getenv("GEOCODE_BASE_URL", "https://www.codigo-postal.pt"),
		GeocodeTimeout: getduration("GEOCODE_TIMEOUT", 8*time.Second),

		CoordCacheSize: getint("COORD_CACHE_SIZE", 0),
		RouteCacheSize: getint("ROUTE_CACHE_SIZE", 0),
		AbsentTTL:      getduration("ABSENT_TTL", 0),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisCoordTTL: getduration("REDIS_COORD_TTL", 720*time.Hour),

		MetricsEnabled: getbool("METRICS_ENABLED", true),
	}
}

// Validate reports configuration the server cannot start without.
func (c Config) Validate() error {
	if c.TomTomAPIKey == "" {
		return errors.New("TOMTOM_API_KEY is required")
	}
	if c.CoordCacheSize < 0 || c.RouteCacheSize < 0 {
		return errors.New("cache sizes must be >= 0")
	}
	if c.AbsentTTL < 0 {
		return errors.New("ABSENT_TTL must be >= 0")
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string { return getenv(key, fallback) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
