package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"plp-bookstore/internal/constants"
)

type Config struct {
	Port                string
	MongoURI            string
	DBName              string
	BooksCollection     string
	JWTSecret           string
	UserId              string
	UserName            string
	UserPassword        string
	LogLevel            string
	SeedFile            string
	RequestTimeout      time.Duration
	StatsCacheTTL       time.Duration
	AuditExportInterval time.Duration
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.S().Debugf("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "plp_bookstore"),
		BooksCollection: getEnv("BOOKS_COLLECTION", constants.DefaultBooksCollection),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		UserId:          os.Getenv("HARD_CODED_USER_ID"),
		UserName:        os.Getenv("HARD_CODED_USER_NAME"),
		UserPassword:    os.Getenv("HARD_CODED_USER_PASSWORD"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		SeedFile:        os.Getenv("SEED_FILE"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.StatsCacheTTL, err = getDuration("STATS_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AuditExportInterval, err = getDuration("AUDIT_EXPORT_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
