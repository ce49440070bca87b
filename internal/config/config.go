package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config representa la configuración del servidor
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Inngest   InngestConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Email     EmailConfig
	Catalog   CatalogConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port    string
	Host    string
	Env     string
	BaseURL string
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// InngestConfig representa la configuración de Inngest
type InngestConfig struct {
	EventKey   string
	SigningKey string
	AppID      string
	Dev        bool
}

// RateLimitConfig representa la configuración de rate limiting
type RateLimitConfig struct {
	Default int
	Window  time.Duration
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig representa la configuración de notificaciones por correo
type EmailConfig struct {
	ResendAPIKey  string
	FromAddress   string
	TreasuryInbox string
	MedellinInbox string
	GuarneInbox   string
}

// CatalogConfig representa la configuración del catálogo de productos
type CatalogConfig struct {
	CacheTTL time.Duration
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe
	if err := godotenv.Load(); err != nil {
		// No es crítico si no existe el archivo .env
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8081"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Env:     getEnv("SERVER_ENV", "development"),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "distribuidores"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Inngest: InngestConfig{
			EventKey:   getEnv("INNGEST_EVENT_KEY", ""),
			SigningKey: getEnv("INNGEST_SIGNING_KEY", ""),
			AppID:      getEnv("INNGEST_APP_ID", "distribuidores-api"),
			Dev:        getEnvAsBool("INNGEST_DEV", true),
		},
		RateLimit: RateLimitConfig{
			Default: getEnvAsInt("RATE_LIMIT_DEFAULT", 120),
			Window:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
			FromAddress:   getEnv("EMAIL_FROM", "pedidos@unicornio.com.co"),
			TreasuryInbox: getEnv("EMAIL_TREASURY", "tesoreria@unicornio.com.co"),
			MedellinInbox: getEnv("EMAIL_MEDELLIN", "bodega.medellin@unicornio.com.co"),
			GuarneInbox:   getEnv("EMAIL_GUARNE", "bodega.guarne@unicornio.com.co"),
		},
		Catalog: CatalogConfig{
			CacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 60*time.Second),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// SiteInbox retorna el correo de la bodega que despacha una sede
func (c *Config) SiteInbox(site string) string {
	if site == "guarne" {
		return c.Email.GuarneInbox
	}
	return c.Email.MedellinInbox
}
