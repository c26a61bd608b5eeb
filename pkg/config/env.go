package config

// envconfig reads the explicit tag names, so the prefix only scopes unnamed fields.
const EnvPrefix = "MEDFINDER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MEDFINDER_APP_ENV"
	EnvPort     = "MEDFINDER_APP_PORT"
	EnvLogLevel = "MEDFINDER_LOG_LEVEL"

	EnvDBDSN  = "MEDFINDER_DB_DSN"
	EnvDBHost = "MEDFINDER_DB_HOST"
	EnvDBUser = "MEDFINDER_DB_USER"
	EnvDBName = "MEDFINDER_DB_NAME"

	EnvRedisURL = "MEDFINDER_REDIS_URL"

	EnvJWTSecret  = "MEDFINDER_JWT_SECRET"
	EnvJWTIssuer  = "MEDFINDER_JWT_ISSUER"
	EnvJWTExpMins = "MEDFINDER_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "MEDFINDER_USE_SQLITE"
	EnvAutoMigrate = "MEDFINDER_AUTO_MIGRATE"
	EnvSeed        = "MEDFINDER_SEED"

	EnvRealtimeQueueSize = "MEDFINDER_REALTIME_QUEUE_SIZE"
	EnvCORSOrigins       = "MEDFINDER_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
