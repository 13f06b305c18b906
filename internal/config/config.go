package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	Storage    StorageConfig    `yaml:"storage"`
	Generation GenerationConfig `yaml:"generation"`
	Conversion ConversionConfig `yaml:"conversion"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-Id"`
	ExposedHeaders   string `yaml:"exposed_headers"   env:"CORS_EXPOSED_HEADERS"   env-default:"Content-Disposition,Content-Length,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES" env-default:"20971520"`
}

// DatabaseConfig holds PostgreSQL connection settings. ApplicationName is
// reported in pg_stat_activity; a zero StatementTimeout keeps the server
// default.
type DatabaseConfig struct {
	DSN              string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns         int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns         int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ApplicationName  string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"docgen"`
	StatementTimeout time.Duration `yaml:"statement_timeout"  env:"DATABASE_STATEMENT_TIMEOUT"  env-default:"30s"`
}

// AuthConfig holds access-token settings. Tokens are issued elsewhere; the
// service only validates them.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"docgen"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// StorageConfig holds blob storage settings.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"os"`
	Root    string `yaml:"root"    env:"STORAGE_ROOT"    env-default:"./data"`
}

// Generation modes.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// GenerationConfig holds document generation settings.
type GenerationConfig struct {
	Mode            string        `yaml:"mode"             env:"GENERATION_MODE"             env-default:"async"`
	Workers         int           `yaml:"workers"          env:"GENERATION_WORKERS"          env-default:"4"`
	QueueSize       int           `yaml:"queue_size"       env:"GENERATION_QUEUE_SIZE"       env-default:"256"`
	AllowAnonymous  bool          `yaml:"allow_anonymous"  env:"GENERATION_ALLOW_ANONYMOUS"  env-default:"false"`
	RecoverInterval time.Duration `yaml:"recover_interval" env:"GENERATION_RECOVER_INTERVAL" env-default:"1m"`
	StaleAfter      time.Duration `yaml:"stale_after"      env:"GENERATION_STALE_AFTER"      env-default:"15m"`
	RateLimit       int           `yaml:"rate_limit"       env:"GENERATION_RATE_LIMIT"       env-default:"30"`
}

// Synchronous reports whether documents are generated inside the request.
func (g GenerationConfig) Synchronous() bool { return g.Mode == ModeSync }

// ConversionConfig holds DOCX to PDF conversion settings.
type ConversionConfig struct {
	BackendsRaw  string        `yaml:"backends"      env:"CONVERSION_BACKENDS"      env-default:"docx2pdf,soffice"`
	Timeout      time.Duration `yaml:"timeout"       env:"CONVERSION_TIMEOUT"       env-default:"60s"`
	GotenbergURL string        `yaml:"gotenberg_url" env:"CONVERSION_GOTENBERG_URL"`
	SofficeBin   string        `yaml:"soffice_bin"   env:"CONVERSION_SOFFICE_BIN"   env-default:"soffice"`
	Docx2PDFBin  string        `yaml:"docx2pdf_bin"  env:"CONVERSION_DOCX2PDF_BIN"  env-default:"docx2pdf"`
	TempDir      string        `yaml:"temp_dir"      env:"CONVERSION_TEMP_DIR"`
}

// Backends returns the ordered converter names.
func (c ConversionConfig) Backends() []string {
	var out []string
	for _, b := range strings.Split(c.BackendsRaw, ",") {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
