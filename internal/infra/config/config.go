package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Stops      StopsConfig      `yaml:"stops"`
	Places     PlacesConfig     `yaml:"places"`
	Realtime   RealtimeConfig   `yaml:"realtime"`
	Route      RouteConfig      `yaml:"route"`
	RouteCache RouteCacheConfig `yaml:"routeCache"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	MCP        MCPConfig        `yaml:"mcp"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RequestTimeout time.Duration   `yaml:"requestTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig controls bearer token checks on the API.
type AuthConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Secret          string        `yaml:"secret"`
	Issuer          string        `yaml:"issuer"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// CatalogConfig points at the truck stop catalog document.
type CatalogConfig struct {
	Path   string              `yaml:"path"`
	Watch  bool                `yaml:"watch"`
	Object ObjectStorageConfig `yaml:"object"`
}

// ObjectStorageConfig locates the catalog in an S3 compatible bucket (R2, MinIO).
type ObjectStorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
}

// StopsConfig tunes the safe stop finder.
type StopsConfig struct {
	DefaultRadiusMiles float64 `yaml:"defaultRadiusMiles"`
	DefaultLimit       int     `yaml:"defaultLimit"`
	FallbackThreshold  int     `yaml:"fallbackThreshold"`
}

// PlacesConfig configures the Google Places fallback search.
type PlacesConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Keyword string        `yaml:"keyword"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig mirrors the circuit breaker knobs.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"maxFailures"`
	OpenTimeout time.Duration `yaml:"openTimeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RealtimeConfig toggles parking availability enrichment.
type RealtimeConfig struct {
	Enabled  bool `yaml:"enabled"`
	Simulate bool `yaml:"simulate"`
}

// RouteConfig tunes route sampling.
type RouteConfig struct {
	SampleIntervalMiles float64 `yaml:"sampleIntervalMiles"`
}

// RouteCacheConfig controls caching of route analyses.
type RouteCacheConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// TelemetryConfig enables OpenTelemetry metrics and traces.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ServiceName  string `yaml:"serviceName"`
	StdoutTraces bool   `yaml:"stdoutTraces"`
}

// MCPConfig names the stdio tool server.
type MCPConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("CATALOG_WATCH"); v != "" {
		cfg.Catalog.Watch = parseBool(v)
	}
	if v := os.Getenv("CATALOG_OBJECT_ENABLED"); v != "" {
		cfg.Catalog.Object.Enabled = parseBool(v)
	}
	if v := os.Getenv("CATALOG_OBJECT_ENDPOINT"); v != "" {
		cfg.Catalog.Object.Endpoint = v
	}
	if v := os.Getenv("CATALOG_OBJECT_BUCKET"); v != "" {
		cfg.Catalog.Object.Bucket = v
	}
	if v := os.Getenv("CATALOG_OBJECT_KEY"); v != "" {
		cfg.Catalog.Object.Key = v
	}
	if v := os.Getenv("CATALOG_OBJECT_ACCESS_KEY"); v != "" {
		cfg.Catalog.Object.AccessKey = v
	}
	if v := os.Getenv("CATALOG_OBJECT_SECRET_KEY"); v != "" {
		cfg.Catalog.Object.SecretKey = v
	}
	if v := os.Getenv("CATALOG_OBJECT_REGION"); v != "" {
		cfg.Catalog.Object.Region = v
	}
	if v := os.Getenv("GOOGLE_PLACES_API_KEY"); v != "" {
		cfg.Places.APIKey = v
	}
	if v := os.Getenv("GOOGLE_PLACES_BASE_URL"); v != "" {
		cfg.Places.BaseURL = v
	}
	if v := os.Getenv("GOOGLE_PLACES_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Places.Timeout = parsed
		}
	}
	if v := os.Getenv("REALTIME_ENABLED"); v != "" {
		cfg.Realtime.Enabled = parseBool(v)
	}
	if v := os.Getenv("REALTIME_SIMULATE"); v != "" {
		cfg.Realtime.Simulate = parseBool(v)
	}
	if v := os.Getenv("ROUTE_SAMPLE_INTERVAL_MILES"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Route.SampleIntervalMiles = parsed
		}
	}
	if v := os.Getenv("ROUTE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.RouteCache.TTL = parsed
		}
	}
	if v := os.Getenv("ROUTE_CACHE_VALKEY_ENABLED"); v != "" {
		cfg.RouteCache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("ROUTE_CACHE_VALKEY_ADDR"); v != "" {
		cfg.RouteCache.Valkey.Addr = v
	}
	if v := os.Getenv("TELEMETRY_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("TELEMETRY_SERVICE_NAME"); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	if v := os.Getenv("TELEMETRY_STDOUT_TRACES"); v != "" {
		cfg.Telemetry.StdoutTraces = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   15 * time.Second,
			RequestTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
			},
		},
		Auth: AuthConfig{
			Enabled:         false,
			Issuer:          "safetravels",
			TokenTTL:        24 * time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		Catalog: CatalogConfig{
			Path: "configs/catalog.json",
		},
		Stops: StopsConfig{
			DefaultRadiusMiles: 50,
			DefaultLimit:       10,
			FallbackThreshold:  3,
		},
		Places: PlacesConfig{
			BaseURL: "https://maps.googleapis.com/maps/api/place/nearbysearch/json",
			Keyword: "truck stop",
			Timeout: 5 * time.Second,
			Breaker: BreakerConfig{
				MaxFailures: 3,
				OpenTimeout: time.Minute,
				Interval:    5 * time.Minute,
			},
		},
		Realtime: RealtimeConfig{
			Enabled:  true,
			Simulate: true,
		},
		Route: RouteConfig{
			SampleIntervalMiles: 20,
		},
		RouteCache: RouteCacheConfig{
			TTL: 15 * time.Minute,
			Valkey: ValkeyConfig{
				Prefix: "route",
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName: "safetravels",
		},
		MCP: MCPConfig{
			Name:    "safetravels",
			Version: "1.0.0",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RequestTimeout < 0 {
		return errors.New("http.requestTimeout cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty when auth is enabled")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if c.Catalog.Object.Enabled {
		if strings.TrimSpace(c.Catalog.Object.Endpoint) == "" || strings.TrimSpace(c.Catalog.Object.Bucket) == "" || strings.TrimSpace(c.Catalog.Object.Key) == "" {
			return errors.New("catalog.object endpoint, bucket and key are required when object storage is enabled")
		}
	}
	if c.Stops.DefaultRadiusMiles <= 0 {
		return errors.New("stops.defaultRadiusMiles must be positive")
	}
	if c.Stops.DefaultLimit <= 0 {
		return errors.New("stops.defaultLimit must be positive")
	}
	if c.Stops.FallbackThreshold < 0 {
		return errors.New("stops.fallbackThreshold cannot be negative")
	}
	if c.Places.Timeout <= 0 {
		return errors.New("places.timeout must be positive")
	}
	if c.Route.SampleIntervalMiles <= 0 {
		return errors.New("route.sampleIntervalMiles must be positive")
	}
	if c.RouteCache.TTL < 0 {
		return errors.New("routeCache.ttl cannot be negative")
	}
	if c.RouteCache.Valkey.Enabled && strings.TrimSpace(c.RouteCache.Valkey.Addr) == "" {
		return errors.New("routeCache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if strings.TrimSpace(c.MCP.Name) == "" {
		return errors.New("mcp.name cannot be empty")
	}
	return nil
}
