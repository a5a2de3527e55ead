package emsquery

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/viper"
)

const (
	// DefaultDatabaseID is the FOQA flights database present on every EMS system.
	DefaultDatabaseID = "[ems-core][entity-type][foqa-flights]"

	// DefaultPageSize is the row window of a paged query.
	DefaultPageSize = 25000

	// SimpleQueryRowLimit is the largest row limit served by a single-shot query.
	SimpleQueryRowLimit = 25000
)

// ClientConfig contains configuration for an EMS query client.
type ClientConfig struct {
	// BaseURL is the API root.
	// OPTIONAL: Uses transport.DefaultBaseURL if empty.
	BaseURL string `mapstructure:"base_url"`

	// User and Password authenticate with the password grant.
	// REQUIRED unless a custom transport is supplied.
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// SystemID identifies the EMS system.
	// REQUIRED: MUST NOT be empty.
	SystemID string `mapstructure:"system_id"`

	// DatabaseID identifies the database queried.
	// OPTIONAL: Uses DefaultDatabaseID if empty.
	DatabaseID string `mapstructure:"database_id"`

	// PageSize is the row window of paged queries.
	// OPTIONAL: Uses DefaultPageSize if 0.
	PageSize int `mapstructure:"page_size"`

	// MaxReconnects bounds silent re-authentications per request.
	// OPTIONAL: Uses transport.DefaultMaxReconnects if 0.
	MaxReconnects int `mapstructure:"max_reconnects"`

	// RequestsPerSecond limits the request rate. 0 means unlimited.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// IgnoreTLSErrors disables certificate verification.
	IgnoreTLSErrors bool `mapstructure:"ignore_tls_errors"`

	// Timeout bounds a single HTTP exchange. 0 means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// Logger for client events.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger `mapstructure:"-"`

	// LogLevel sets the minimum log level. Only used if Logger is nil.
	LogLevel *slog.Level `mapstructure:"-"`

	// Allocator for the Arrow arrays backing query results.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator `mapstructure:"-"`

	// HTTPClient performs requests.
	// OPTIONAL: A client honoring Timeout and IgnoreTLSErrors is created if nil.
	HTTPClient *http.Client `mapstructure:"-"`
}

// Standard errors returned by the emsquery package.
var (
	// ErrInvalidConfig indicates ClientConfig validation failed.
	ErrInvalidConfig = errors.New("invalid client config")

	// ErrMissingQueryID indicates the paged query open response carried no id.
	// The run is aborted.
	ErrMissingQueryID = errors.New("async query open response has no query id")
)

// LoadConfig reads a ClientConfig from an optional file and environment
// variables. Variables named <prefix><KEY> override file values, for example
// EMSQUERY_PAGE_SIZE sets page_size when prefix is "EMSQUERY_".
// An empty file skips the file.
func LoadConfig(file, prefix string) (ClientConfig, error) {
	v := viper.New()
	v.SetDefault("database_id", DefaultDatabaseID)
	v.SetDefault("page_size", DefaultPageSize)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return ClientConfig{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, file, err)
		}
	}

	prefix = strings.ToUpper(prefix)
	if prefix != "" {
		for _, env := range os.Environ() {
			key, value, ok := strings.Cut(env, "=")
			if !ok || !strings.HasPrefix(key, prefix) {
				continue
			}
			v.Set(strings.ToLower(strings.TrimPrefix(key, prefix)), value)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// withDefaults validates cfg and fills optional fields.
func (cfg ClientConfig) withDefaults() (ClientConfig, error) {
	if cfg.SystemID == "" {
		return cfg, fmt.Errorf("%w: system id is required", ErrInvalidConfig)
	}
	if cfg.PageSize < 0 {
		return cfg, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidConfig, cfg.PageSize)
	}
	if cfg.RequestsPerSecond < 0 {
		return cfg, fmt.Errorf("%w: requests per second must not be negative", ErrInvalidConfig)
	}
	if cfg.DatabaseID == "" {
		cfg.DatabaseID = DefaultDatabaseID
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Allocator == nil {
		cfg.Allocator = memory.DefaultAllocator
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
		if cfg.LogLevel != nil {
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: *cfg.LogLevel,
			})
			cfg.Logger = slog.New(handler)
		}
	}
	return cfg, nil
}
