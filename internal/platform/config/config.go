package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
	QueueDriverRedis      = "redis"
	QueueDriverMemory     = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StorageDriver  string
	QueueDriver    string
	MigrationsPath string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Worker and retry policy
	WorkerConcurrency int
	JobMaxAttempts    int
	JobBackoffBase    time.Duration
	JobPollInterval   time.Duration
	JobLeaseDuration  time.Duration
	RefundOnFailure   bool

	// Generation service
	GenerationAPIURL    string
	GenerationAPIKey    string
	GenerationModel     string
	GenerationMaxTokens int
	GenerationTimeout   time.Duration

	// Reconciliation sweep
	ReconcileInterval     time.Duration
	ReconcilePendingGrace time.Duration
	ReconcileStaleAfter   time.Duration

	SignupBonusCredits int64

	// Notifications and archive; empty disables them
	AMQPURL        string
	NotifyExchange string
	S3Bucket       string
	AWSRegion      string

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("QUEUE_DRIVER", QueueDriverRedis)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "fortune-desk")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("WORKER_CONCURRENCY", 4)
	viper.SetDefault("JOB_MAX_ATTEMPTS", 3)
	viper.SetDefault("JOB_BACKOFF_BASE", "5s")
	viper.SetDefault("JOB_POLL_INTERVAL", "1s")
	viper.SetDefault("JOB_LEASE_DURATION", "5m")
	viper.SetDefault("REFUND_ON_FAILURE", false)
	viper.SetDefault("GENERATION_API_URL", "https://api.anthropic.com/v1/messages")
	viper.SetDefault("GENERATION_API_KEY", "")
	viper.SetDefault("GENERATION_MODEL", "claude-3-5-sonnet-latest")
	viper.SetDefault("GENERATION_MAX_TOKENS", 2000)
	viper.SetDefault("GENERATION_TIMEOUT", "60s")
	viper.SetDefault("RECONCILE_INTERVAL", "1m")
	viper.SetDefault("RECONCILE_PENDING_GRACE", "2m")
	viper.SetDefault("RECONCILE_STALE_AFTER", "10m")
	viper.SetDefault("SIGNUP_BONUS_CREDITS", 3)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("NOTIFY_EXCHANGE", "fortune.events")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("AWS_REGION", "ap-northeast-1")
	viper.SetDefault("RATE_LIMIT", "10-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: must be %s or %s", cfg.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}
	cfg.QueueDriver = strings.ToLower(viper.GetString("QUEUE_DRIVER"))
	if cfg.QueueDriver != QueueDriverRedis && cfg.QueueDriver != QueueDriverMemory {
		return nil, fmt.Errorf("invalid QUEUE_DRIVER %q: must be %s or %s", cfg.QueueDriver, QueueDriverRedis, QueueDriverMemory)
	}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" && cfg.StorageDriver == StorageDriverPostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	cfg.WorkerConcurrency = positiveInt("WORKER_CONCURRENCY", 4)
	cfg.JobMaxAttempts = positiveInt("JOB_MAX_ATTEMPTS", 3)
	cfg.GenerationMaxTokens = positiveInt("GENERATION_MAX_TOKENS", 2000)
	cfg.RefundOnFailure = viper.GetBool("REFUND_ON_FAILURE")

	cfg.JWTExpiryDuration = duration("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JobBackoffBase = duration("JOB_BACKOFF_BASE", 5*time.Second)
	cfg.JobPollInterval = duration("JOB_POLL_INTERVAL", time.Second)
	cfg.JobLeaseDuration = duration("JOB_LEASE_DURATION", 5*time.Minute)
	cfg.GenerationTimeout = duration("GENERATION_TIMEOUT", 60*time.Second)
	cfg.ReconcileInterval = duration("RECONCILE_INTERVAL", time.Minute)
	cfg.ReconcilePendingGrace = duration("RECONCILE_PENDING_GRACE", 2*time.Minute)
	cfg.ReconcileStaleAfter = duration("RECONCILE_STALE_AFTER", 10*time.Minute)

	cfg.GenerationAPIURL = viper.GetString("GENERATION_API_URL")
	cfg.GenerationAPIKey = viper.GetString("GENERATION_API_KEY")
	cfg.GenerationModel = viper.GetString("GENERATION_MODEL")
	if cfg.GenerationAPIKey == "" {
		log.Println("Warning: GENERATION_API_KEY not set. Generation calls will fail.")
	}

	cfg.SignupBonusCredits = viper.GetInt64("SIGNUP_BONUS_CREDITS")
	if cfg.SignupBonusCredits < 0 {
		log.Printf("Warning: Invalid value for SIGNUP_BONUS_CREDITS (%d). Defaulting to 3.\n", cfg.SignupBonusCredits)
		cfg.SignupBonusCredits = 3
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.NotifyExchange = viper.GetString("NOTIFY_EXCHANGE")
	cfg.S3Bucket = viper.GetString("S3_BUCKET")
	cfg.AWSRegion = viper.GetString("AWS_REGION")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that only make sense together. A generation call
// must finish before its job lease expires and before the reconciler treats
// the request as abandoned.
func (c *Config) Validate() error {
	if c.GenerationTimeout >= c.JobLeaseDuration {
		return fmt.Errorf("GENERATION_TIMEOUT (%s) must be shorter than JOB_LEASE_DURATION (%s)", c.GenerationTimeout, c.JobLeaseDuration)
	}
	if c.GenerationTimeout >= c.ReconcileStaleAfter {
		return fmt.Errorf("GENERATION_TIMEOUT (%s) must be shorter than RECONCILE_STALE_AFTER (%s)", c.GenerationTimeout, c.ReconcileStaleAfter)
	}
	return nil
}

// duration reads a Go duration string, falling back to def with a warning.
func duration(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func positiveInt(key string, def int) int {
	n := viper.GetInt(key)
	if n <= 0 {
		log.Printf("Warning: Invalid value for %s (%d). Defaulting to %d.\n", key, n, def)
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
