package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process settings, read once at startup.
type Config struct {
	Port             string
	UploadDir        string
	JWTSecret        string
	TokenTTLHours    int
	ValkeyAddr       string // empty means in-memory user storage
	CORSOrigin       string
	RoomEvictOnEmpty bool
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		JWTSecret:        getEnv("JWT_SECRET", "a_default_secret_for_dev"),
		TokenTTLHours:    getEnvInt("TOKEN_TTL_HOURS", 72),
		ValkeyAddr:       getEnv("VALKEY_ADDR", ""),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://127.0.0.1:5173"),
		RoomEvictOnEmpty: getEnv("ROOM_EVICT_ON_EMPTY", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
