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
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Realtime      RealtimeConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDFINDER_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDFINDER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDFINDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDFINDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDFINDER_DB_DSN"`
	Driver string `envconfig:"MEDFINDER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDFINDER_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDFINDER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDFINDER_DB_USER"`
	LegacyPassword string `envconfig:"MEDFINDER_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDFINDER_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDFINDER_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MEDFINDER_SQLITE_PATH" default:"medfinder.db"`

	MaxOpenConns    int           `envconfig:"MEDFINDER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDFINDER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDFINDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDFINDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDFINDER_REDIS_URL"`
	Address      string        `envconfig:"MEDFINDER_REDIS_ADDR"`
	Password     string        `envconfig:"MEDFINDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDFINDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDFINDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDFINDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDFINDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDFINDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDFINDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDFINDER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDFINDER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEDFINDER_JWT_EXPIRATION_MINUTES" default:"120"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDFINDER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDFINDER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDFINDER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDFINDER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDFINDER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MEDFINDER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MEDFINDER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MEDFINDER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MEDFINDER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MEDFINDER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MEDFINDER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDFINDER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDFINDER_AUTO_MIGRATE" default:"false"`
	Seed        bool `envconfig:"MEDFINDER_SEED" default:"false"`
}

type RealtimeConfig struct {
	Channel        string        `envconfig:"MEDFINDER_REALTIME_CHANNEL" default:"medfinder:stock-events"`
	QueueSize      int           `envconfig:"MEDFINDER_REALTIME_QUEUE_SIZE" default:"256"`
	PublishTimeout time.Duration `envconfig:"MEDFINDER_REALTIME_PUBLISH_TIMEOUT" default:"2s"`
	ClientBuffer   int           `envconfig:"MEDFINDER_REALTIME_CLIENT_BUFFER" default:"16"`
	KeepAlive      time.Duration `envconfig:"MEDFINDER_REALTIME_KEEPALIVE" default:"25s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEDFINDER_CORS_ALLOWED_ORIGINS" default:"http://localhost:4200"`
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
