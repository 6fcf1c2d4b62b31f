package config

import (
	"os"
	"strconv"
)

type envConfig struct {
	LogLevel               string
	ServerPort             int
	Version                string
	LeaveAPIEndpoint       string
	JWTSecret              string
	EmailFrom              string
	HolidayRefreshSchedule string
	RateLimitTimeout       int
}

func NewEnvironmentConfig() *envConfig {
	return &envConfig{
		LogLevel:               getEnvString("LOG_LEVEL", "INFO"),
		ServerPort:             getEnvInt("SERVER_PORT", 0),
		Version:                getEnvString("VERSION", ""),
		LeaveAPIEndpoint:       getEnvString("LEAVE_API_ENDPOINT", ""),
		JWTSecret:              getEnvString("JWT_SECRET", ""),
		EmailFrom:              getEnvString("EMAIL_FROM", ""),
		HolidayRefreshSchedule: getEnvString("HOLIDAY_REFRESH_SCHEDULE", "@daily"),
		RateLimitTimeout:       getEnvInt("RATE_LIMIT_TIMEOUT", 2),
	}
}

// helper function to read an environment or return a default value
func getEnvString(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

// helper function to read an environment or return a default value
func getEnvInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(getEnvString(key, strconv.Itoa(defaultVal)))
	if err == nil {
		return val
	}

	return defaultVal
}
