package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"` // comma-separated; empty = any

	// Remote REST backend
	BackendURL            string `mapstructure:"BACKEND_URL"`
	BackendTimeoutSeconds int    `mapstructure:"BACKEND_TIMEOUT_SECONDS"`

	// Redis (session tokens, same-day history, mail queue)
	RedisURL          string `mapstructure:"REDIS_URL"`
	HistorialTTLHours int    `mapstructure:"HISTORIAL_TTL_HOURS"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	InactividadMinutos int    `mapstructure:"TERMINAL_INACTIVIDAD_MINUTOS"` // idle workspaces are dropped after this

	// Receipts
	NegocioNombre    string `mapstructure:"NEGOCIO_NOMBRE"`
	NegocioRUC       string `mapstructure:"NEGOCIO_RUC"`
	NegocioDireccion string `mapstructure:"NEGOCIO_DIRECCION"`
	ReciboAncho      int    `mapstructure:"RECIBO_ANCHO"`    // characters per line, 32 = 58mm, 48 = 80mm
	PrinterAddress   string `mapstructure:"PRINTER_ADDRESS"` // host:port of a network thermal printer; empty = no printing

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 2)
	viper.SetDefault("BACKEND_URL", "http://localhost:4001/api")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("HISTORIAL_TTL_HOURS", 36)
	viper.SetDefault("JWT_EXPIRATION_HOURS", 12)
	viper.SetDefault("TERMINAL_INACTIVIDAD_MINUTOS", 120)
	viper.SetDefault("NEGOCIO_NOMBRE", "Ferretería")
	viper.SetDefault("RECIBO_ANCHO", 32)
	viper.SetDefault("SMTP_PORT", 587)

	// Optional .env file for local development, does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BackendTimeout is the per-request timeout for calls to the remote backend.
func (c *Config) BackendTimeout() time.Duration {
	if c.BackendTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

// SesionTTL is the lifetime of a login session (JWT and cached backend token).
func (c *Config) SesionTTL() time.Duration {
	if c.JWTExpirationHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

// HistorialTTL is how long same-day sale history stays cached.
func (c *Config) HistorialTTL() time.Duration {
	if c.HistorialTTLHours <= 0 {
		return 36 * time.Hour
	}
	return time.Duration(c.HistorialTTLHours) * time.Hour
}

// Inactividad is how long a session workspace survives without requests.
func (c *Config) Inactividad() time.Duration {
	if c.InactividadMinutos <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.InactividadMinutos) * time.Minute
}

// Origins splits CORS_ORIGINS.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
