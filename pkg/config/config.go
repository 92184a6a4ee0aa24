package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied to every environment variable read by Load.
const EnvPrefix = "ISIRWATCH"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, error messages).
const (
	EnvAppEnv   = "ISIRWATCH_APP_ENV"
	EnvDBDSN    = "ISIRWATCH_DB_DSN"
	EnvDBHost   = "ISIRWATCH_DB_HOST"
	EnvDBUser   = "ISIRWATCH_DB_USER"
	EnvDBName   = "ISIRWATCH_DB_NAME"
	EnvRedisURL = "ISIRWATCH_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Registry     RegistryConfig
	Sync         SyncConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ISIRWATCH_APP_ENV" required:"true"`
	Port         string `envconfig:"ISIRWATCH_APP_PORT" default:"8080"`
	OpsPort      string `envconfig:"ISIRWATCH_OPS_PORT" default:"9090"`
	LogLevel     string `envconfig:"ISIRWATCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ISIRWATCH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ISIRWATCH_DB_DSN"`
	Driver string `envconfig:"ISIRWATCH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ISIRWATCH_DB_HOST"`
	LegacyPort     int    `envconfig:"ISIRWATCH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ISIRWATCH_DB_USER"`
	LegacyPassword string `envconfig:"ISIRWATCH_DB_PASSWORD"`
	LegacyName     string `envconfig:"ISIRWATCH_DB_NAME"`
	LegacySSLMode  string `envconfig:"ISIRWATCH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ISIRWATCH_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ISIRWATCH_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ISIRWATCH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ISIRWATCH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ISIRWATCH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ISIRWATCH_REDIS_ADDR"`
	Password     string        `envconfig:"ISIRWATCH_REDIS_PASSWORD"`
	DB           int           `envconfig:"ISIRWATCH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ISIRWATCH_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"ISIRWATCH_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"ISIRWATCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ISIRWATCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ISIRWATCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RegistryConfig points at the two insolvency-register web services.
type RegistryConfig struct {
	FeedURL       string        `envconfig:"ISIRWATCH_REGISTRY_FEED_URL" default:"https://isir.justice.cz:8443/isir_public_ws/IsirWsPublicService"`
	SupplementURL string        `envconfig:"ISIRWATCH_REGISTRY_SUPPLEMENT_URL" default:"https://isir.justice.cz/isir_cuzk_ws/IsirWsCuzkService"`
	Timeout       time.Duration `envconfig:"ISIRWATCH_REGISTRY_TIMEOUT" default:"60s"`
}

type SyncConfig struct {
	Interval       time.Duration `envconfig:"ISIRWATCH_SYNC_INTERVAL" default:"15m"`
	LockTTL        time.Duration `envconfig:"ISIRWATCH_SYNC_LOCK_TTL" default:"30m"`
	DigestInterval time.Duration `envconfig:"ISIRWATCH_DIGEST_INTERVAL" default:"1h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ISIRWATCH_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DigestTopic        string `envconfig:"ISIRWATCH_PUBSUB_DIGEST_TOPIC" default:"iw-notice-digests"`
	DigestSubscription string `envconfig:"ISIRWATCH_PUBSUB_DIGEST_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ISIRWATCH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ISIRWATCH_AUTO_MIGRATE" default:"false"`
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
