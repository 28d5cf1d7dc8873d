package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment    string      `json:"environment"`
	ServerPort     string      `json:"server_port"`
	JWTSecret      string      `json:"-"`
	TokenTTLHours  int         `json:"token_ttl_hours"`
	AllowedOrigins []string    `json:"allowed_origins"`
	DBDriver       string      `json:"db_driver"`
	DBHost         string      `json:"db_host"`
	DBPort         string      `json:"db_port"`
	DBUser         string      `json:"db_user"`
	DBPassword     string      `json:"-"`
	DBName         string      `json:"db_name"`
	DBSSLMode      string      `json:"db_ssl_mode"`
	DBPath         string      `json:"db_path"`
	DBMaxIdleConns int         `json:"db_max_idle_conns"`
	DBMaxOpenConns int         `json:"db_max_open_conns"`
	LogLevel       string      `json:"log_level"`
	SentryDSN      string      `json:"-"`
	EncryptionKey  string      `json:"-"`
	RateLimitMax   int         `json:"rate_limit_max"`
	Redis          RedisConfig `json:"redis"`
	// Minutes between scheduler scans for campaigns whose scheduled time has passed.
	CampaignScanMinutes int `json:"campaign_scan_minutes"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTLHours:  getEnvAsInt("TOKEN_TTL_HOURS", 24),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "onethy"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBPath:         getEnv("DB_PATH", "./onethy.db"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		RateLimitMax:   getEnvAsInt("RATE_LIMIT_MAX", 120),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		CampaignScanMinutes: getEnvAsInt("CAMPAIGN_SCAN_MINUTES", 1),
	}

	// Validate required configurations
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if AppConfig.EncryptionKey == "" {
		// Channel secrets fall back to the token signing secret
		AppConfig.EncryptionKey = AppConfig.JWTSecret
	}
	switch AppConfig.DBDriver {
	case "postgres":
		if AppConfig.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", AppConfig.DBDriver)
	}

	logConfig()
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		logrus.Warnf("Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.WithFields(logrus.Fields{
		"environment":   AppConfig.Environment,
		"server_port":   AppConfig.ServerPort,
		"db_driver":     AppConfig.DBDriver,
		"database":      fmt.Sprintf("%s@%s:%s/%s", AppConfig.DBUser, AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBName),
		"redis_enabled": AppConfig.Redis.Enabled,
		"sentry":        AppConfig.SentryDSN != "",
	}).Info("Loaded configuration")
}
