package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	FeatureFlags  FeatureFlagsConfig
	Interpolation InterpolationConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Interpolation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NOIRION_APP_ENV" required:"true"`
	Port         string `envconfig:"NOIRION_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NOIRION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOIRION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NOIRION_DB_DSN"`
	Driver string `envconfig:"NOIRION_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NOIRION_DB_HOST"`
	LegacyPort     int    `envconfig:"NOIRION_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NOIRION_DB_USER"`
	LegacyPassword string `envconfig:"NOIRION_DB_PASSWORD"`
	LegacyName     string `envconfig:"NOIRION_DB_NAME"`
	LegacySSLMode  string `envconfig:"NOIRION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOIRION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOIRION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOIRION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOIRION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOIRION_REDIS_URL"`
	Address      string        `envconfig:"NOIRION_REDIS_ADDR"`
	Password     string        `envconfig:"NOIRION_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOIRION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOIRION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOIRION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOIRION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOIRION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOIRION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint is configured. Redis only backs
// the idempotency middleware, so the platform runs without it.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite              bool `envconfig:"NOIRION_USE_SQLITE" default:"false"`
	AutoMigrate            bool `envconfig:"NOIRION_AUTO_MIGRATE" default:"false"`
	HomeLocationAutoUpdate bool `envconfig:"NOIRION_HOME_LOCATION_AUTO_UPDATE" default:"true"`
}

type InterpolationConfig struct {
	DefaultWindowMinutes int `envconfig:"NOIRION_INTERPOLATION_DEFAULT_WINDOW_MINUTES" default:"60"`
	MaxWindowMinutes     int `envconfig:"NOIRION_INTERPOLATION_MAX_WINDOW_MINUTES" default:"1440"`
}

func (i InterpolationConfig) validate() error {
	if i.DefaultWindowMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvInterpolationDefaultWindow)
	}
	if i.MaxWindowMinutes < i.DefaultWindowMinutes {
		return fmt.Errorf("%s must be >= %s", EnvInterpolationMaxWindow, EnvInterpolationDefaultWindow)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
