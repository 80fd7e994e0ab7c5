package tokenverifier

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talentpoint-hq/candidate-profile-api/internal/platform/config"
)

var ErrUnauthorized = errors.New("unauthorized")

// Verifier validates bearer tokens and extracts the subject claim.
// It supports HS256 (shared secret) and RS256 (static public key).
type Verifier struct {
	cfg    config.AuthConfig
	hmac   []byte
	rsaKey *rsa.PublicKey
	method string
}

func New(cfg config.AuthConfig) (*Verifier, error) {
	v := &Verifier{cfg: cfg}
	switch {
	case cfg.HMACSecret != "":
		v.hmac = []byte(cfg.HMACSecret)
		v.method = jwt.SigningMethodHS256.Alg()
	case cfg.RSAPublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.RSAPublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		v.rsaKey = key
		v.method = jwt.SigningMethodRS256.Alg()
	default:
		return nil, errors.New("no verification key configured")
	}
	return v, nil
}

// Verify checks the token's signature, issuer, audience and lifetime, and
// returns the subject claim.
func (v *Verifier) Verify(ctx context.Context, raw string) (string, error) {
	_ = ctx

	tok, err := jwt.Parse(raw, v.keyFunc,
		jwt.WithValidMethods([]string{v.method}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithLeeway(v.cfg.ClockSkew),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrUnauthorized)
	}
	return sub, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if v.hmac != nil {
		return v.hmac, nil
	}
	return v.rsaKey, nil
}
