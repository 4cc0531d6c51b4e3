package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "buch_catalog" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWT.Algorithm != "HS256" || cfg.JWT.Lifetime != time.Hour {
		t.Fatalf("unexpected jwt defaults: %+v", cfg.JWT)
	}
	if cfg.Auth.BcryptCost != 10 || cfg.Auth.LoginRateWindow != time.Minute {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Notify.To != "joe@doe.mail" || cfg.Notify.Workers != 4 {
		t.Fatalf("unexpected notify defaults: %+v", cfg.Notify)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"hmac without secret": {"JWT_SECRET": ""},
		"rsa without key":     {"JWT_ALGORITHM": "RS256", "JWT_PRIVATE_KEY_FILE": ""},
		"unsupported alg":     {"JWT_ALGORITHM": "PS256", "JWT_SECRET": "x"},
		"bcrypt cost":         {"JWT_SECRET": "s", "BCRYPT_COST": "2"},
		"lifetime":            {"JWT_SECRET": "s", "JWT_LIFETIME": "10ms"},
		"env":                 {"JWT_SECRET": "s", "ENV": "qa"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_ECDSA(t *testing.T) {
	t.Setenv("JWT_ALGORITHM", "ES256")
	t.Setenv("JWT_PRIVATE_KEY_FILE", "/run/secrets/jwt.pem")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.JWT.PrivateKeyFile != "/run/secrets/jwt.pem" {
		t.Fatalf("unexpected key file %q", cfg.JWT.PrivateKeyFile)
	}
}
