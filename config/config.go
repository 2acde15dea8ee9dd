package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver     string
	DBDSN        string
	MenuSeedPath string

	JWTSecret      string
	KitchenAPIKey  string
	AllowedOrigin  string
	PollInterval   time.Duration
	SessionIdleTTL time.Duration

	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	RedisAddr              string
	RecommendationCacheTTL time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	return Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("DB_DSN", "canteen.db"),
		MenuSeedPath: getEnv("MENU_SEED_PATH", "database/seeds/menu.sql"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		KitchenAPIKey:  os.Getenv("KITCHEN_API_KEY"),
		AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		PollInterval:   getDuration("POLL_INTERVAL", time.Second),
		SessionIdleTTL: getDuration("SESSION_IDLE_TTL", 24*time.Hour),

		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIBaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIModel:   getEnv("AI_MODEL", "gpt-4o-mini"),

		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RecommendationCacheTTL: getDuration("RECOMMENDATION_CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("1s") or bare seconds ("5").
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	utils.ErrorLogger.Printf("Invalid duration for %s: %q, using %s", key, v, fallback)
	return fallback
}

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MenuItem{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
