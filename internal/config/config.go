package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store and scheduler backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"

	SchedulerLoop  = "loop"
	SchedulerRiver = "river"
)

const devJWTSecret = "tryon-dev-secret"

type Config struct {
	AppEnv             string   `envconfig:"APP_ENV" default:"development"`
	Port               string   `envconfig:"PORT" default:"8080"`
	JWTSecret          string   `envconfig:"JWT_SECRET" default:"tryon-dev-secret"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	StoreBackend     string `envconfig:"STORE_BACKEND" default:"memory"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisKeyPrefix   string `envconfig:"REDIS_KEY_PREFIX" default:"tryon:"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	SchedulerBackend string `envconfig:"SCHEDULER_BACKEND" default:"loop"`
	RiverMaxWorkers  int    `envconfig:"RIVER_MAX_WORKERS" default:"10"`

	StartingCredits   int           `envconfig:"STARTING_CREDITS" default:"100"`
	ImageCreationCost int           `envconfig:"IMAGE_CREATION_COST" default:"10"`
	VideoCreationCost int           `envconfig:"VIDEO_CREATION_COST" default:"20"`
	TryOnBatchSize    int           `envconfig:"TRYON_BATCH_SIZE" default:"4"`
	CompletionDelay   time.Duration `envconfig:"COMPLETION_DELAY" default:"4s"`
	VideoLatency      time.Duration `envconfig:"VIDEO_LATENCY" default:"2s"`
	PurchaseLatency   time.Duration `envconfig:"PURCHASE_LATENCY" default:"2s"`
	UploadLatency     time.Duration `envconfig:"UPLOAD_LATENCY" default:"1500ms"`
	LoginLatency      time.Duration `envconfig:"LOGIN_LATENCY" default:"1500ms"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SeedDemoTasks     bool          `envconfig:"SEED_DEMO_TASKS" default:"false"`

	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	HTTPIdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.SchedulerBackend = strings.ToLower(strings.TrimSpace(cfg.SchedulerBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// NeedsDatabase reports whether any backend needs DATABASE_URL.
func (c *Config) NeedsDatabase() bool {
	return c.StoreBackend == StorePostgres || c.SchedulerBackend == SchedulerRiver
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q: want memory, redis or postgres", c.StoreBackend))
	}
	switch c.SchedulerBackend {
	case SchedulerLoop, SchedulerRiver:
	default:
		errs = append(errs, fmt.Errorf("SCHEDULER_BACKEND %q: want loop or river", c.SchedulerBackend))
	}
	if c.NeedsDatabase() && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required for the postgres store or river scheduler"))
	}
	if c.StoreBackend == StoreRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required for the redis store"))
	}
	if c.ImageCreationCost <= 0 || c.VideoCreationCost <= 0 {
		errs = append(errs, errors.New("creation costs must be positive"))
	}
	if c.TryOnBatchSize <= 0 {
		errs = append(errs, errors.New("TRYON_BATCH_SIZE must be positive"))
	}
	if c.StartingCredits < 0 {
		errs = append(errs, errors.New("STARTING_CREDITS must not be negative"))
	}
	if !c.IsDevelopment() && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set outside development"))
	}
	return errors.Join(errs...)
}
