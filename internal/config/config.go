package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bankcore/internal/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Transfer modes.
const (
	TransferModeSync     = "sync"
	TransferModeDeferred = "deferred"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the process-wide configuration, read once at start-up.
type Config struct {
	Env  string
	Port string

	Storage    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	RedisPoolSize     int
	RedisMinIdleConns int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration

	JWTSecret   string
	JWTTokenTTL time.Duration
	BcryptCost  int

	AdminUsername string
	AdminPassword string

	OTelEndpoint       string
	OTelExportInterval time.Duration

	TransferMode         string
	ContainerMode        models.ContainerMode
	AllowSelfTransfer    bool
	BlockSuspectedOwners bool
	OperationTimeout     time.Duration

	SettlementCron     string
	SettlementTimezone string
	SettlementLockTTL  time.Duration
	ExpiryCron         string

	Limits models.LimitPolicy
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load builds a Config from the environment.
func Load() Config {
	storage := strings.ToLower(GetEnv("STORAGE", StoragePostgres))

	return Config{
		Env:  GetEnv("ENV", "development"),
		Port: GetEnv("PORT", "3000"),

		Storage:    storage,
		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD", "postgres"),
		DBName:     GetEnv("DB_NAME", "bankcore"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisEnabled:  GetBoolEnv("REDIS_ENABLED", storage == StoragePostgres),
		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		RedisPoolSize:     GetIntEnv("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns: GetIntEnv("REDIS_MIN_IDLE_CONNS", 5),
		RedisDialTimeout:  GetDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:  GetDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout: GetDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),

		JWTSecret:   GetEnv("JWT_SECRET", "bankcore"),
		JWTTokenTTL: GetDurationEnv("JWT_TOKEN_TTL", 24*time.Hour),
		BcryptCost:  GetIntEnv("BCRYPT_COST", 10),

		AdminUsername: GetEnv("ADMIN_USERNAME", ""),
		AdminPassword: GetEnv("ADMIN_PASSWORD", ""),

		OTelEndpoint:       GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelExportInterval: GetDurationEnv("OTEL_EXPORT_INTERVAL", 30*time.Second),

		TransferMode:         strings.ToLower(GetEnv("TRANSFER_MODE", TransferModeSync)),
		ContainerMode:        models.ContainerMode(strings.ToLower(GetEnv("CONTAINER_MODE", string(models.ContainerModeAny)))),
		AllowSelfTransfer:    GetBoolEnv("ALLOW_SELF_TRANSFER", false),
		BlockSuspectedOwners: GetBoolEnv("BLOCK_SUSPECTED_OWNERS", false),
		OperationTimeout:     GetDurationEnv("OPERATION_TIMEOUT", 10*time.Second),

		SettlementCron:     GetEnv("SETTLEMENT_CRON", "0 0 * * *"),
		SettlementTimezone: GetEnv("SETTLEMENT_TZ", "UTC"),
		SettlementLockTTL:  GetDurationEnv("SETTLEMENT_LOCK_TTL", 30*time.Minute),
		ExpiryCron:         GetEnv("EXPIRY_CRON", "30 0 * * *"),

		Limits: models.LimitPolicy{
			MaxAccountsPerOwner:  GetIntEnv("MAX_ACCOUNTS_PER_OWNER", models.DefaultMaxAccountsPerOwner),
			MaxCardsPerAccount:   GetIntEnv("MAX_CARDS_PER_ACCOUNT", models.DefaultMaxCardsPerAccount),
			MinAcceptableBalance: GetDecimalEnv("MIN_ACCEPTABLE_BALANCE", decimal.Zero),
			MonthlyTransferLimit: GetDecimalEnv("MONTHLY_TRANSFER_LIMIT", decimal.NewFromInt(models.DefaultMonthlyTransferLimit)),
		},
	}
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetDecimalEnv returns a decimal environment variable or a default value.
func GetDecimalEnv(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
