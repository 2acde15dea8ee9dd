package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityTTL is how long a login survives on the client.
const IdentityTTL = 30 * 24 * time.Hour

var JWTSecret = []byte("campus-canteen-dev-secret")

// SetJWTSecret is called once from main with the configured secret.
func SetJWTSecret(secret string) {
	if secret == "" {
		ErrorLogger.Printf("Warning: JWT_SECRET not set, using development secret")
		return
	}
	JWTSecret = []byte(secret)
}

type IdentityClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

func GenerateIdentityToken(phone string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "CampusCanteen",
			Subject:   phone,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(JWTSecret)
	if err != nil {
		ErrorLogger.Printf("Error generating identity token: %v", err)
		return "", err
	}
	return tokenString, nil
}

func ParseIdentityToken(tokenString string) (*IdentityClaims, error) {
	if IsTokenRevoked(tokenString) {
		return nil, errors.New("token has been revoked")
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !ValidPhone(claims.Phone) {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
