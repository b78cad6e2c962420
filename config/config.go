package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stackcalc/logger"
)

// Хранилища состояния, которые умеет открывать приложение
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Addr        string
	OpenBrowser bool

	Store      string
	DataFile   string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string

	LogLevel string
	LogFile  string
}

func Load() *Config {
	// Загрузка .env файла
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	return &Config{
		Addr:        getEnv("CALC_ADDR", ":8080"),
		OpenBrowser: getEnvAsBool("CALC_OPEN_BROWSER", true),

		Store:      strings.ToLower(getEnv("CALC_STORE", StoreFile)),
		DataFile:   getEnv("CALC_DATA_FILE", "calculator_data.json"),
		SQLitePath: getEnv("CALC_SQLITE_PATH", "calculator.db"),

		RedisAddr:     getEnv("CALC_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("CALC_REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("CALC_REDIS_DB", 0),

		JWTSecret:      getEnv("CALC_JWT_SECRET", "change-me-in-production"),
		TokenTTL:       time.Duration(getEnvAsInt("CALC_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AllowedOrigins: getEnvAsList("CALC_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel: getEnv("CALC_LOG_LEVEL", "info"),
		LogFile:  getEnv("CALC_LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
