package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort           string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	JWTSecret         string
	TokenTTL          time.Duration
	LoginRatePerMin   int
	LoginRateBurst    int
	AdminInitUsername string
	AdminInitPassword string
	AdminInitEnabled  bool
}

func LoadConfig() Config {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	return Config{
		AppPort:           getEnv("APP_PORT", "7002"),
		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "changehub"),
		DBUser:            getEnv("DB_USER", "changehub"),
		DBPassword:        getEnv("DB_PASSWORD", "changehub_password"),
		JWTSecret:         getEnv("JWT_SECRET", "dev_jwt_secret_change_me"),
		TokenTTL:          time.Duration(getEnvInt("TOKEN_TTL_MIN", 60)) * time.Minute,
		LoginRatePerMin:   getEnvInt("LOGIN_RATE_PER_MIN", 10),
		LoginRateBurst:    getEnvInt("LOGIN_RATE_BURST", 10),
		AdminInitUsername: os.Getenv("ADMIN_INIT_USERNAME"),
		AdminInitPassword: os.Getenv("ADMIN_INIT_PASSWORD"),
		AdminInitEnabled:  getEnvBool("ADMIN_INIT_ENABLED", false),
	}
}

func (c Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
