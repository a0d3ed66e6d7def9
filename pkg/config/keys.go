package config

// EnvPrefix namespaces every Noirion environment variable.
const EnvPrefix = "noirion"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "NOIRION_APP_ENV"

	EnvDBDSN  = "NOIRION_DB_DSN"
	EnvDBHost = "NOIRION_DB_HOST"
	EnvDBUser = "NOIRION_DB_USER"
	EnvDBName = "NOIRION_DB_NAME"

	EnvInterpolationDefaultWindow = "NOIRION_INTERPOLATION_DEFAULT_WINDOW_MINUTES"
	EnvInterpolationMaxWindow     = "NOIRION_INTERPOLATION_MAX_WINDOW_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
