package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32

	// MigrationsPath is a golang-migrate source URL.
	MigrationsPath string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// TLSConfig enables TLS on the gRPC listener when both files are set.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// TracingConfig enables OTLP span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type LogConfig struct {
	Level  string
	Format string
}

// AllocationDefaults fill constraint fields a request leaves empty.
type AllocationDefaults struct {
	MinDSCR              decimal.Decimal
	MaxLTVPerProperty    decimal.Decimal
	MaxIterations        int
	ConvergenceTolerance decimal.Decimal
}

type Config struct {
	GRPCPort       int
	HTTPPort       int
	GRPCTLS        TLSConfig
	GRPCReflection bool
	Log            LogConfig
	Tracing        TracingConfig
	DB             DatabaseConfig
	Kafka          KafkaConfig
	Cache          CacheConfig
	Allocation     AllocationDefaults
	ServiceName    string
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	if c.DB.Enabled && c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required when DB_ENABLED is set")
	}
	if (c.GRPCTLS.CertFile == "") != (c.GRPCTLS.KeyFile == "") {
		return fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must list at least one broker when KAFKA_ENABLED is set")
	}
	if !c.Allocation.MinDSCR.IsPositive() {
		return fmt.Errorf("DEFAULT_MIN_DSCR must be positive, got %s", c.Allocation.MinDSCR)
	}
	if c.Allocation.MaxLTVPerProperty.IsNegative() {
		return fmt.Errorf("DEFAULT_MAX_LTV must not be negative, got %s", c.Allocation.MaxLTVPerProperty)
	}
	if c.Allocation.MaxIterations <= 0 {
		return fmt.Errorf("DEFAULT_MAX_ITERATIONS must be positive, got %d", c.Allocation.MaxIterations)
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9091),
		HTTPPort: getEnvInt("HTTP_PORT", 8091),
		GRPCTLS: TLSConfig{
			CertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			KeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
		},
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		DB: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_underwriting"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),

			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://internal/infrastructure/persistence/postgres/migrations"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "underwriting-events"),
		},
		Cache: CacheConfig{
			RedisAddr: getEnv("REDIS_ADDR", ""),
			TTL:       getEnvDuration("CACHE_TTL", 15*time.Minute),
		},
		Allocation: AllocationDefaults{
			MinDSCR:              getEnvDecimal("DEFAULT_MIN_DSCR", decimal.RequireFromString("1.25")),
			MaxLTVPerProperty:    getEnvDecimal("DEFAULT_MAX_LTV", decimal.Zero),
			MaxIterations:        getEnvInt("DEFAULT_MAX_ITERATIONS", 50),
			ConvergenceTolerance: getEnvDecimal("DEFAULT_CONVERGENCE_TOLERANCE", decimal.NewFromInt(1)),
		},
		ServiceName: "underwriting-service",
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
