// Package config loads the server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// REQSCHEMA_* environment variables. Nested keys use a double underscore in
// environment names, so REQSCHEMA_SERVER__ADDR sets server.addr.
package config

import (
	"time"
)

// Built-in middleware names, in the order the default pipeline runs them.
const (
	MiddlewareErrors    = "host::errors"
	MiddlewareRequestID = "host::requestid"
	MiddlewareLogger    = "host::logger"
	MiddlewareMetrics   = "host::metrics"
	MiddlewareCORS      = "host::cors"
	MiddlewareRateLimit = "host::ratelimit"
	MiddlewareBody      = "host::body"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	API       PrefixConfig    `koanf:"api"`
	Admin     PrefixConfig    `koanf:"admin"`
	Body      BodyConfig      `koanf:"body"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Routes    RoutesConfig    `koanf:"routes"`

	// Language selects the catalog of validation messages.
	Language string `koanf:"language" validate:"oneof=en ja"`

	// Middlewares is the ordered global pipeline. Plugin middlewares are
	// referenced by their registered name.
	Middlewares []string `koanf:"middlewares" validate:"required,min=1,unique,dive,required"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// PrefixConfig holds the mount prefix of a router type.
type PrefixConfig struct {
	Prefix string `koanf:"prefix" validate:"required,startswith=/"`
}

type BodyConfig struct {
	// MaxBytes caps JSON and urlencoded bodies.
	MaxBytes int64 `koanf:"max_bytes" validate:"gt=0"`
	// MaxMultipartMemory is kept in memory before multipart parts spill to disk.
	MaxMultipartMemory int64 `koanf:"max_multipart_memory" validate:"gt=0"`
	// UploadDir receives persisted uploads; empty means os.TempDir().
	UploadDir string `koanf:"upload_dir"`
	// KeepUploads disables removal of persisted uploads after the request.
	KeepUploads bool `koanf:"keep_uploads"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age" validate:"gte=0"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"gte=0"`
	Window   time.Duration `koanf:"window" validate:"gte=0"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"omitempty,startswith=/"`
}

type RoutesConfig struct {
	// File is a YAML routes file; empty means routes are registered in code only.
	File string `koanf:"file"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:1337",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		API:     PrefixConfig{Prefix: "/api"},
		Admin:   PrefixConfig{Prefix: "/admin"},
		Body: BodyConfig{
			MaxBytes:           1 << 20,
			MaxMultipartMemory: 32 << 20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         86400,
		},
		RateLimit: RateLimitConfig{Enabled: false, Requests: 100, Window: time.Minute},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
		Language:  "en",
		Middlewares: []string{
			MiddlewareErrors,
			MiddlewareRequestID,
			MiddlewareLogger,
			MiddlewareMetrics,
			MiddlewareCORS,
			MiddlewareRateLimit,
			MiddlewareBody,
		},
	}
}
