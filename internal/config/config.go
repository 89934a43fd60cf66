package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Planning PlanningConfig
	Ingest   IngestConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// PlanningConfig carries the tunable engine defaults. Materials can override
// service level and target accuracy per row; these are the fallbacks.
type PlanningConfig struct {
	DefaultServiceLevel   float64
	DefaultTargetMAPE     float64
	DefaultLeadTimeDays   int
	DefaultLeadTimeStdDev float64
	SafetyStockDays       float64
	OrderingCost          float64
	HoldingCostRate       float64
	BatchWorkers          int
}

// IngestConfig points the transaction-file loader at its bucket.
type IngestConfig struct {
	Backend   string
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	LocalDir  string
	UploadDir string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "planning")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("PLANNING_DEFAULT_SERVICE_LEVEL", 0.95)
		viper.SetDefault("PLANNING_DEFAULT_TARGET_MAPE", 25.0)
		viper.SetDefault("PLANNING_DEFAULT_LEAD_TIME_DAYS", 14)
		viper.SetDefault("PLANNING_DEFAULT_LEAD_TIME_STDDEV", 3.0)
		viper.SetDefault("PLANNING_SAFETY_STOCK_DAYS", 7.0)
		viper.SetDefault("PLANNING_ORDERING_COST", 50.0)
		viper.SetDefault("PLANNING_HOLDING_COST_RATE", 0.25)
		viper.SetDefault("PLANNING_BATCH_WORKERS", 4)
		viper.SetDefault("INGEST_BACKEND", "local")
		viper.SetDefault("INGEST_BUCKET", "")
		viper.SetDefault("INGEST_REGION", "")
		viper.SetDefault("INGEST_ENDPOINT", "")
		viper.SetDefault("INGEST_PREFIX", "transactions/")
		viper.SetDefault("INGEST_LOCAL_DIR", "./data/ingest")
		viper.SetDefault("INGEST_UPLOAD_DIR", "./data/uploads")

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Planning: PlanningConfig{
				DefaultServiceLevel:   viper.GetFloat64("PLANNING_DEFAULT_SERVICE_LEVEL"),
				DefaultTargetMAPE:     viper.GetFloat64("PLANNING_DEFAULT_TARGET_MAPE"),
				DefaultLeadTimeDays:   viper.GetInt("PLANNING_DEFAULT_LEAD_TIME_DAYS"),
				DefaultLeadTimeStdDev: viper.GetFloat64("PLANNING_DEFAULT_LEAD_TIME_STDDEV"),
				SafetyStockDays:       viper.GetFloat64("PLANNING_SAFETY_STOCK_DAYS"),
				OrderingCost:          viper.GetFloat64("PLANNING_ORDERING_COST"),
				HoldingCostRate:       viper.GetFloat64("PLANNING_HOLDING_COST_RATE"),
				BatchWorkers:          viper.GetInt("PLANNING_BATCH_WORKERS"),
			},
			Ingest: IngestConfig{
				Backend:   viper.GetString("INGEST_BACKEND"),
				Bucket:    viper.GetString("INGEST_BUCKET"),
				Region:    viper.GetString("INGEST_REGION"),
				Endpoint:  viper.GetString("INGEST_ENDPOINT"),
				Prefix:    viper.GetString("INGEST_PREFIX"),
				LocalDir:  viper.GetString("INGEST_LOCAL_DIR"),
				UploadDir: viper.GetString("INGEST_UPLOAD_DIR"),
			},
		}
	})

	return instance
}
