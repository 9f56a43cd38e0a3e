package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// MongoTransactions requires a replica set. Disable for a standalone mongod.
	MongoTransactions bool
	WriteRetries      int

	MaxActionPoints int
	MaxBonusPoints  int
	NearbyWindow    int

	LeaderboardCacheSize int
	LeaderboardCacheTTL  time.Duration

	SnapshotSchedule string // cron expression, empty disables snapshots
	WarehouseDSN     string // postgres DSN, empty disables the export
	AllowDevLogin    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "secret"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:               getEnv("DB_NAME", "gamifier"),
		SkipAuth:             getEnv("SKIP_AUTH", "false") == "true",
		Environment:          getEnv("ENVIRONMENT", "development"),
		AppId:                getEnv("APP_ID", "gamifier"),
		MongoTransactions:    getEnv("MONGO_TRANSACTIONS", "true") == "true",
		WriteRetries:         getEnvInt("WRITE_RETRIES", 5),
		MaxActionPoints:      getEnvInt("MAX_ACTION_POINTS", 1000),
		MaxBonusPoints:       getEnvInt("MAX_BONUS_POINTS", 1000),
		NearbyWindow:         getEnvInt("NEARBY_WINDOW", 5),
		LeaderboardCacheSize: getEnvInt("LEADERBOARD_CACHE_SIZE", 256),
		LeaderboardCacheTTL:  getEnvDuration("LEADERBOARD_CACHE_TTL", 5*time.Minute),
		SnapshotSchedule:     getEnv("SNAPSHOT_SCHEDULE", ""),
		WarehouseDSN:         getEnv("WAREHOUSE_DSN", ""),
		AllowDevLogin:        getEnv("ALLOW_DEV_LOGIN", "false") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}
