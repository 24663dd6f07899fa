package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Session  SessionConfig
	Fault    FaultConfig
}

type AppConfig struct {
	AppName     string `validate:"required"`
	Environment string `validate:"required"`
	HTTPPort    string `validate:"required,numeric"`
	LogLevel    string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type StoreConfig struct {
	Driver            string `validate:"oneof=postgres memory"`
	MigrationsOnStart bool
}

type DatabaseConfig struct {
	DBHost     string `validate:"required_if=Enabled true"`
	DBPort     string `validate:"required_if=Enabled true"`
	DBName     string `validate:"required_if=Enabled true"`
	DBUser     string `validate:"required_if=Enabled true"`
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32 `validate:"gte=0"`
	PoolMinConns          int32 `validate:"gte=0"`
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	// Enabled is set when the postgres store driver is selected.
	Enabled bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int `validate:"gte=0,lte=15"`
	// Prefix namespaces every key so instances can share a server.
	Prefix string
	TTL    time.Duration `validate:"gt=0"`
}

// Disabled reports whether no Redis host was configured. The cache and the
// stage lock then run in-process.
func (c RedisConfig) Disabled() bool {
	return c.Host == ""
}

type JWTConfig struct {
	AccessSecret  string        `validate:"required,min=16"`
	RefreshSecret string        `validate:"required,min=16,nefield=AccessSecret"`
	AccessTTL     time.Duration `validate:"gt=0"`
	RefreshTTL    time.Duration `validate:"gt=0,gtfield=AccessTTL"`
}

type SessionConfig struct {
	AutosaveDelay   time.Duration `validate:"gt=0"`
	AutosaveWorkers int           `validate:"gte=1,lte=64"`
}

type FaultConfig struct {
	// Rate is the probability in [0,1] that a mutating request fails with 503.
	Rate float64 `validate:"gte=0,lte=1"`
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")

	structValidator = validator.New()
)

// Load reads the environment, optionally seeded from a .env file in the
// working directory, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing, invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		d, err := parseDuration(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	flag := func(key string, def bool) bool {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return b
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogLevel:    strings.ToLower(opt("LOG_LEVEL", "info")),
	}

	cfg.Store = StoreConfig{
		Driver:            strings.ToLower(opt("STORE_DRIVER", StoreDriverPostgres)),
		MigrationsOnStart: flag("MIGRATIONS_ON_START", true),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST", ""),
		DBPort:                opt("DB_PORT", "5432"),
		DBName:                opt("DB_NAME", ""),
		DBUser:                opt("DB_USER", ""),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE", "disable"),
		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", 0),
		Enabled:               cfg.Store.Driver == StoreDriverPostgres,
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", ""),
		Port:     opt("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       num("REDIS_DB", 0),
		Prefix:   opt("REDIS_PREFIX", "hireboard"),
		TTL:      dur("REDIS_TTL", 600*time.Second),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:  req("JWT_ACCESS_SECRET"),
		RefreshSecret: req("JWT_REFRESH_SECRET"),
		AccessTTL:     dur("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    dur("JWT_REFRESH_TTL", 7*24*time.Hour),
	}

	cfg.Session = SessionConfig{
		AutosaveDelay:   dur("AUTOSAVE_DELAY", time.Second),
		AutosaveWorkers: num("AUTOSAVE_WORKERS", 4),
	}

	rate, err := strconv.ParseFloat(opt("FAULT_RATE", "0"), 64)
	if err != nil {
		invalid = append(invalid, "FAULT_RATE")
	}
	cfg.Fault = FaultConfig{Rate: rate}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the value constraints of every section.
func (c Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// parseDuration accepts Go duration strings ("15m") as well as a bare number
// of seconds ("900").
func parseDuration(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", raw)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}
