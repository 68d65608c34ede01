package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Commerce CommerceConfig
	Checkout CheckoutConfig
	Payments PaymentsConfig
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
	Env          string `envconfig:"SOKOPLACE_APP_ENV" required:"true"`
	Port         string `envconfig:"SOKOPLACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOKOPLACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOKOPLACE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SOKOPLACE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOKOPLACE_DB_DSN"`
	Driver string `envconfig:"SOKOPLACE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOKOPLACE_DB_HOST"`
	LegacyPort     int    `envconfig:"SOKOPLACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOKOPLACE_DB_USER"`
	LegacyPassword string `envconfig:"SOKOPLACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOKOPLACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOKOPLACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOKOPLACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOKOPLACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOKOPLACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOKOPLACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOKOPLACE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOKOPLACE_REDIS_ADDR"`
	Password     string        `envconfig:"SOKOPLACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOKOPLACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOKOPLACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOKOPLACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOKOPLACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOKOPLACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOKOPLACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SOKOPLACE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SOKOPLACE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SOKOPLACE_JWT_EXPIRATION_MINUTES" required:"true"`
}

// GatewayConfig points at the hosted payment processor.
type GatewayConfig struct {
	BaseURL       string        `envconfig:"SOKOPLACE_GATEWAY_BASE_URL" required:"true"`
	SecretKey     string        `envconfig:"SOKOPLACE_GATEWAY_SECRET_KEY" required:"true"`
	CallbackURL   string        `envconfig:"SOKOPLACE_GATEWAY_CALLBACK_URL"`
	VerifyTimeout time.Duration `envconfig:"SOKOPLACE_GATEWAY_VERIFY_TIMEOUT" default:"30s"`
}

// CommerceConfig points at the remote order/dispute service.
type CommerceConfig struct {
	BaseURL      string        `envconfig:"SOKOPLACE_COMMERCE_BASE_URL" required:"true"`
	ServiceToken string        `envconfig:"SOKOPLACE_COMMERCE_SERVICE_TOKEN"`
	Timeout      time.Duration `envconfig:"SOKOPLACE_COMMERCE_TIMEOUT" default:"30s"`
}

type CheckoutConfig struct {
	// DeliveryFee is in major currency units; it applies to door delivery only.
	DeliveryFee   int64  `envconfig:"SOKOPLACE_CHECKOUT_DELIVERY_FEE" default:"1000"`
	PickupAddress string `envconfig:"SOKOPLACE_CHECKOUT_PICKUP_ADDRESS" default:"Sokoplace Pickup Center"`
	ContactEmail  string `envconfig:"SOKOPLACE_CHECKOUT_CONTACT_EMAIL"`
}

type PaymentsConfig struct {
	LedgerTTL      time.Duration `envconfig:"SOKOPLACE_PAYMENTS_LEDGER_TTL" default:"24h"`
	IdempotencyTTL time.Duration `envconfig:"SOKOPLACE_PAYMENTS_IDEMPOTENCY_TTL" default:"720h"`
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
