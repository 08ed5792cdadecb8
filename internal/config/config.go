// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Mongo      MongoConfig
	Storage    StorageConfig
	Shop       ShopConfig
	Mirror     MirrorConfig
	Payment    PaymentConfig
	OrderStore OrderStoreConfig
	JWT        JWTConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name           string
	Version        string
	Environment    string
	Debug          bool
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
	CompanyPhone   string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SeedCatalog  bool
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// MongoConfig contains MongoDB configuration for the remote order store
type MongoConfig struct {
	URI      string
	Database string
}

// StorageConfig selects the backend for per-session cart and order records
type StorageConfig struct {
	Driver     string // redis or sqlite
	SQLitePath string
	SessionTTL time.Duration
}

// ShopConfig contains storefront pricing configuration
type ShopConfig struct {
	Currency              string
	FreeShippingThreshold int64
	FlatShippingRate      int64
	CatalogCacheTTL       time.Duration
}

// MirrorConfig controls how placed orders are replicated to the remote order store
type MirrorConfig struct {
	Policy          string // none, retry:<n>, required
	Transport       string // http or kafka
	URL             string
	Timeout         time.Duration
	RetryBackoff    time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// PaymentConfig contains Razorpay configuration
type PaymentConfig struct {
	KeyID            string
	KeySecret        string
	BaseURL          string
	RequireSignature bool
	Timeout          time.Duration
}

// OrderStoreConfig selects the backend for the canonical server-side order store
type OrderStoreConfig struct {
	Driver string // postgres or mongo
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	AdminEmail         string
	AdminPasswordHash  string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "The T Shirt Store"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			Environment:    getEnv("APP_ENV", "development"),
			Debug:          getEnvAsBool("APP_DEBUG", true),
			CompanyName:    getEnv("COMPANY_NAME", "The T Shirt Store"),
			CompanyAddress: getEnv("COMPANY_ADDRESS", ""),
			CompanyEmail:   getEnv("COMPANY_EMAIL", "support@tshirtstore.example"),
			CompanyPhone:   getEnv("COMPANY_PHONE", ""),
		},
		Server: ServerConfig{
			Port:            getEnv("APP_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "tshirt_store"),
			User:         getEnv("DB_USER", "tshirt_store"),
			Password:     getEnv("DB_PASSWORD", "tshirt_store"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
			SeedCatalog:  getEnvAsBool("DB_SEED_CATALOG", true),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "tshirt_store"),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "redis"),
			SQLitePath: getEnv("STORAGE_SQLITE_PATH", "data/sessions.db"),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		},
		Shop: ShopConfig{
			Currency:              getEnv("SHOP_CURRENCY", "INR"),
			FreeShippingThreshold: getEnvAsInt64("SHIPPING_FREE_THRESHOLD", 1000),
			FlatShippingRate:      getEnvAsInt64("SHIPPING_FLAT_RATE", 99),
			CatalogCacheTTL:       getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		},
		Mirror: MirrorConfig{
			Policy:          getEnv("MIRROR_POLICY", "none"),
			Transport:       getEnv("MIRROR_TRANSPORT", "http"),
			URL:             getEnv("MIRROR_URL", "http://localhost:8080/api/v1/orders"),
			Timeout:         getEnvAsDuration("MIRROR_TIMEOUT", 10*time.Second),
			RetryBackoff:    getEnvAsDuration("MIRROR_RETRY_BACKOFF", 500*time.Millisecond),
			KafkaBrokers:    getEnvAsSlice("MIRROR_KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:      getEnv("MIRROR_KAFKA_TOPIC", "storefront-orders"),
			BreakerFailures: uint32(getEnvAsInt("MIRROR_BREAKER_FAILURES", 5)),
			BreakerCooldown: getEnvAsDuration("MIRROR_BREAKER_COOLDOWN", 30*time.Second),
		},
		Payment: PaymentConfig{
			KeyID:            getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:        getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:          getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			RequireSignature: getEnvAsBool("PAYMENT_REQUIRE_SIGNATURE", false),
			Timeout:          getEnvAsDuration("RAZORPAY_TIMEOUT", 30*time.Second),
		},
		OrderStore: OrderStoreConfig{
			Driver: getEnv("ORDER_STORE_DRIVER", "postgres"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "https://tshirt-ecommerce-store.vercel.app"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID", "X-Request-ID"}),
			AdminEmail:         getEnv("ADMIN_EMAIL", ""),
			AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	switch c.Storage.Driver {
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("STORAGE_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.OrderStore.Driver {
	case "postgres":
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo order store")
		}
	default:
		return fmt.Errorf("unsupported ORDER_STORE_DRIVER %q", c.OrderStore.Driver)
	}

	if c.Shop.FreeShippingThreshold <= 0 {
		return fmt.Errorf("SHIPPING_FREE_THRESHOLD must be positive")
	}
	if c.Shop.FlatShippingRate < 0 {
		return fmt.Errorf("SHIPPING_FLAT_RATE cannot be negative")
	}

	if !isValidMirrorPolicy(c.Mirror.Policy) {
		return fmt.Errorf("invalid MIRROR_POLICY %q", c.Mirror.Policy)
	}
	switch c.Mirror.Transport {
	case "http":
		if c.Mirror.URL == "" {
			return fmt.Errorf("MIRROR_URL is required for the http transport")
		}
	case "kafka":
		if len(c.Mirror.KafkaBrokers) == 0 || c.Mirror.KafkaTopic == "" {
			return fmt.Errorf("MIRROR_KAFKA_BROKERS and MIRROR_KAFKA_TOPIC are required for the kafka transport")
		}
	default:
		return fmt.Errorf("unsupported MIRROR_TRANSPORT %q", c.Mirror.Transport)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// isValidMirrorPolicy accepts none, required and retry:<n> with n >= 1.
// The policy itself is parsed by the order package.
func isValidMirrorPolicy(policy string) bool {
	switch policy {
	case "none", "required":
		return true
	}
	if n, ok := strings.CutPrefix(policy, "retry:"); ok {
		attempts, err := strconv.Atoi(n)
		return err == nil && attempts >= 1
	}
	return false
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
