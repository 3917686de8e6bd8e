package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"bin2ml/internal/logger"
)

// LoadEnv loads .env files into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("ignoring malformed integer", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func GetEnvUint64(key string, defaultValue uint64) uint64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		logger.Warn("ignoring malformed integer", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}
