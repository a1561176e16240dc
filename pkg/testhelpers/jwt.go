package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateTestJWT creates an HS256 token shaped like the backend's access
// tokens. The signature uses a throwaway key; the client never verifies it.
func GenerateTestJWT(sub, email string, expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"sub":  sub,
		"type": "access",
	}
	if email != "" {
		claims["email"] = email
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		panic(err)
	}
	return token
}
