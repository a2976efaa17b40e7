// Package apikey issues and verifies the bearer keys clients present to the
// store service. Keys are HS256 JWTs carrying a role claim.
package apikey

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "homestock"

type Role string

const (
	RoleAnon    Role = "anon"
	RoleService Role = "service_role"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAnon, RoleService:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Allows reports whether a key with role r may act as want.
func (r Role) Allows(want Role) bool {
	return r == RoleService || r == want
}

var ErrInvalid = errors.New("invalid api key")

type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// Issue signs a key for role. A zero ttl produces a key that never expires.
func Issue(secret string, role Role, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("apikey: empty secret")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Role: role,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify checks the signature, issuer, expiry and role of key.
func Verify(secret, key string) (Role, error) {
	if secret == "" || key == "" {
		return "", ErrInvalid
	}
	token, err := jwt.ParseWithClaims(key, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalid
	}
	role, err := ParseRole(string(claims.Role))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return role, nil
}
