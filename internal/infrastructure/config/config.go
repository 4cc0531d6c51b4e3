package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/hska/buch-catalog/internal/core/token"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development" validate:"oneof=local development staging production"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo  MongoConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Auth   AuthConfig
	Notify NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017" validate:"required"`
	Database string `env:"MONGO_DB,  default=buch_catalog"             validate:"required"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379" validate:"required"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// JWTConfig selects the signing algorithm and its key material. HS* reads
// Secret, RS* and ES* read the PEM files.
type JWTConfig struct {
	Algorithm      string        `env:"JWT_ALGORITHM, default=HS256" validate:"oneof=HS256 HS384 HS512 RS256 RS384 RS512 ES256 ES384 ES512"`
	Secret         string        `env:"JWT_SECRET"`
	PrivateKeyFile string        `env:"JWT_PRIVATE_KEY_FILE"`
	PublicKeyFile  string        `env:"JWT_PUBLIC_KEY_FILE"`
	Issuer         string        `env:"JWT_ISSUER,   default=https://buch.example/auth" validate:"required"`
	Lifetime       time.Duration `env:"JWT_LIFETIME, default=1h"                        validate:"gte=1s"`
}

type AuthConfig struct {
	BcryptCost      int           `env:"BCRYPT_COST,       default=10" validate:"gte=4,lte=31"`
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT,  default=10" validate:"gte=0"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW, default=1m"`
}

type NotifyConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	From         string `env:"MAIL_FROM,      default=buecher@buch.example" validate:"omitempty,email"`
	To           string `env:"MAIL_TO,        default=joe@doe.mail"         validate:"omitempty,email"`
	Workers      int    `env:"NOTIFY_WORKERS, default=4"                    validate:"gte=1"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	alg, err := token.ParseAlgorithm(c.JWT.Algorithm)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if alg.Family() == token.FamilyHMAC {
		if c.JWT.Secret == "" {
			return fmt.Errorf("invalid config: JWT_SECRET is required for %s", alg)
		}
	} else if c.JWT.PrivateKeyFile == "" {
		return fmt.Errorf("invalid config: JWT_PRIVATE_KEY_FILE is required for %s", alg)
	}
	return nil
}

// IsLocal reports whether the process runs on a developer machine.
func (c *Config) IsLocal() bool { return c.Env == "local" }
