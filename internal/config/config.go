package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

const minJWTSecretLength = 32

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port         string
	Env          string
	JWTSecret    string
	StoreBackend string

	DB       DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	Checkout order.Config
}

// DatabaseConfig contains PostgreSQL connection parameters. URL, when set,
// takes precedence over the individual parts.
type DatabaseConfig struct {
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	Migrations string
}

// DSN returns the connection string for lib/pq.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig contains Redis connection parameters. An empty Addr disables
// the order-number registry.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	ReservationTTL time.Duration
}

// KafkaConfig contains broker settings. No brokers disables event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
	}

	cfg.DB = DatabaseConfig{
		URL:        getEnv("DATABASE_URL", ""),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       getEnv("DB_PORT", "5432"),
		User:       getEnv("DB_USER", "storefront"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "storefront"),
		SSLMode:    getEnv("DB_SSLMODE", "disable"),
		Migrations: getEnv("DB_MIGRATIONS", "file://migrations"),
	}

	cfg.Mongo = MongoConfig{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGO_DATABASE", "storefront"),
	}

	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Kafka = KafkaConfig{
		Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		Topic:   getEnv("KAFKA_TOPIC", "storefront-orders"),
		GroupID: getEnv("KAFKA_GROUP_ID", "storefront-notifier"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", "localhost"),
		Port:     getEnvInt("SMTP_PORT", 1025),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "orders@storefront.local"),
	}

	var err error
	if cfg.Redis.ReservationTTL, err = parseDurationEnv("ORDER_NUMBER_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid ORDER_NUMBER_TTL: %w", err)
	}
	if cfg.Checkout, err = loadCheckout(); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendPostgres, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want memory, postgres or mongo)", cfg.StoreBackend)
	}

	return cfg, nil
}

// ValidateAPI checks the settings only the HTTP API needs.
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	}
	return nil
}

func loadCheckout() (order.Config, error) {
	cfg := order.Config{
		Currency:              strings.ToUpper(getEnv("CURRENCY", "NGN")),
		DefaultShippingMethod: getEnv("DEFAULT_SHIPPING_METHOD", "standard"),
	}

	var err error
	if cfg.TaxRate, err = decimal.NewFromString(getEnv("TAX_RATE", "0.025")); err != nil {
		return cfg, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if cfg.ShippingRates, err = ParseShippingRates(getEnv("SHIPPING_RATES", "standard:3000,express:5000")); err != nil {
		return cfg, fmt.Errorf("invalid SHIPPING_RATES: %w", err)
	}
	if cfg.DeliveryEstimate, err = parseDurationEnv("DELIVERY_ESTIMATE", "168h"); err != nil {
		return cfg, fmt.Errorf("invalid DELIVERY_ESTIMATE: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid checkout configuration: %w", err)
	}
	return cfg, nil
}

// ParseShippingRates parses "method:amount,method:amount".
func ParseShippingRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, entry := range splitList(raw) {
		method, amount, ok := strings.Cut(entry, ":")
		method = strings.TrimSpace(method)
		if !ok || method == "" {
			return nil, fmt.Errorf("entry %q is not method:amount", entry)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		if !order.IsCents(rate) {
			return nil, fmt.Errorf("entry %q: more than 2 decimal places", entry)
		}
		rates[method] = rate
	}
	return rates, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
