package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tiny dev-only token minter.
//
// It signs an HS256 bearer token matching the api's jwt-mode verification
// (iss/aud/sub/exp), so local requests can be exercised without a real IdP:
//
//	export JWT_HMAC_SECRET=local-secret
//	curl -H "Authorization: Bearer $(devtoken -sub 'auth0|me')" localhost:8080/v1/profile
func main() {
	var (
		issuer   = flag.String("iss", getenv("JWT_ISSUER", "http://localhost:8080"), "token issuer")
		audience = flag.String("aud", getenv("JWT_AUDIENCE", "candidate-profile-api"), "token audience")
		subject  = flag.String("sub", getenv("DEV_SUBJECT", "dev|local"), "subject claim")
		secret   = flag.String("secret", os.Getenv("JWT_HMAC_SECRET"), "HS256 signing secret")
		ttl      = flag.Duration("ttl", 30*time.Minute, "token lifetime")
	)
	flag.Parse()

	if *secret == "" {
		log.Fatal("missing signing secret (set -secret or JWT_HMAC_SECRET)")
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": *issuer,
		"aud": *audience,
		"sub": *subject,
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	})
	signed, err := tok.SignedString([]byte(*secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(signed)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
