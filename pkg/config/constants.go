package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SOKOPLACE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SOKOPLACE_APP_ENV"
	EnvPort     = "SOKOPLACE_APP_PORT"
	EnvDBDSN    = "SOKOPLACE_DB_DSN"
	EnvDBHost   = "SOKOPLACE_DB_HOST"
	EnvDBUser   = "SOKOPLACE_DB_USER"
	EnvDBName   = "SOKOPLACE_DB_NAME"
	EnvRedisURL = "SOKOPLACE_REDIS_URL"

	EnvJWTSecret  = "SOKOPLACE_JWT_SECRET"
	EnvJWTIssuer  = "SOKOPLACE_JWT_ISSUER"
	EnvJWTExpMins = "SOKOPLACE_JWT_EXPIRATION_MINUTES"

	EnvGatewaySecretKey = "SOKOPLACE_GATEWAY_SECRET_KEY"
	EnvGatewayBaseURL   = "SOKOPLACE_GATEWAY_BASE_URL"
	EnvCommerceBaseURL  = "SOKOPLACE_COMMERCE_BASE_URL"
	EnvCommerceToken    = "SOKOPLACE_COMMERCE_SERVICE_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
