package config

import (
	"fmt"
	"os"
	"time"
)

// Auth modes.
const (
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

// AuthConfig configures bearer-token verification.
//
// In jwt mode either an HMAC secret (HS256) or an RSA public key PEM (RS256)
// must be provided. Dev mode bypasses verification and resolves the subject
// from the X-Debug-Subject header.
type AuthConfig struct {
	Mode string

	Issuer   string
	Audience string

	HMACSecret      string
	RSAPublicKeyPEM string

	ClockSkew time.Duration

	// DevSubject is the fallback subject used in dev mode when the request
	// carries no X-Debug-Subject header.
	DevSubject string
}

func LoadAuthConfigFromEnv() (AuthConfig, error) {
	cfg := AuthConfig{
		Mode:            getenv("AUTH_MODE", AuthModeJWT),
		Issuer:          os.Getenv("JWT_ISSUER"),
		Audience:        os.Getenv("JWT_AUDIENCE"),
		HMACSecret:      os.Getenv("JWT_HMAC_SECRET"),
		RSAPublicKeyPEM: os.Getenv("JWT_RSA_PUBLIC_KEY"),
		ClockSkew:       30 * time.Second,
		DevSubject:      getenv("DEV_SUBJECT", "dev|local"),
	}

	if raw := os.Getenv("JWT_CLOCK_SKEW"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("invalid JWT_CLOCK_SKEW: %w", err)
		}
		cfg.ClockSkew = d
	}

	switch cfg.Mode {
	case AuthModeDev:
		return cfg, nil
	case AuthModeJWT:
	default:
		return AuthConfig{}, fmt.Errorf("invalid AUTH_MODE %q (want jwt or dev)", cfg.Mode)
	}

	if cfg.Issuer == "" {
		return AuthConfig{}, fmt.Errorf("JWT_ISSUER is required in jwt mode")
	}
	if cfg.Audience == "" {
		return AuthConfig{}, fmt.Errorf("JWT_AUDIENCE is required in jwt mode")
	}
	if cfg.HMACSecret == "" && cfg.RSAPublicKeyPEM == "" {
		return AuthConfig{}, fmt.Errorf("one of JWT_HMAC_SECRET or JWT_RSA_PUBLIC_KEY is required in jwt mode")
	}
	if cfg.HMACSecret != "" && cfg.RSAPublicKeyPEM != "" {
		return AuthConfig{}, fmt.Errorf("JWT_HMAC_SECRET and JWT_RSA_PUBLIC_KEY are mutually exclusive")
	}
	return cfg, nil
}
