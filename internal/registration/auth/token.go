// Package auth provides JWT issuance, validation and the gin middleware
// that carries the authenticated identity through the request context.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim.
const (
	RoleAdmin   = "admin"
	RoleCompany = "company"
)

const tokenTTL = 24 * time.Hour

// Identity is the authenticated caller extracted from a validated token.
type Identity struct {
	// Subject is the admin user ID or company ID.
	Subject string
	// Role is RoleAdmin or RoleCompany.
	Role string
}

// GenerateToken signs a token for the given subject and role.
func GenerateToken(subject, role, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
		"iss":  "eventreg",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken checks the token signature and returns the identity if valid.
func ValidateToken(tokenString, secret string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, fmt.Errorf("token missing subject or role")
	}
	return &Identity{Subject: sub, Role: role}, nil
}
