package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims used by this service. The restricted block
// and house number mirror the profile row the token was issued from; they
// travel in the token so scope checks never reread ambient session state.
type Claims struct {
	Username              string `json:"username"`
	Role                  string `json:"role"`
	RestrictedBlock       string `json:"restricted_block,omitempty"`
	RestrictedHouseNumber string `json:"restricted_house_number,omitempty"`
	jwt.RegisteredClaims
}

// Scope builds the household scope carried by the claims.
func (c *Claims) Scope() Scope {
	return Scope{Block: c.RestrictedBlock, HouseNumber: c.RestrictedHouseNumber}
}

// IssueJWT signs a session token for a profile.
func IssueJWT(secret []byte, username string, role Role, scope Scope, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth: empty secret")
	}
	if username == "" {
		return "", errors.New("auth: empty username")
	}
	now := time.Now()
	claims := Claims{
		Username:              username,
		Role:                  string(role),
		RestrictedBlock:       scope.Block,
		RestrictedHouseNumber: scope.HouseNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWT validates a JWT and returns claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("auth: empty token")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if claims.Username == "" {
		return nil, errors.New("auth: missing username")
	}
	if _, ok := NormalizeRole(claims.Role); !ok {
		return nil, errors.New("auth: invalid role")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("auth: token expired")
	}
	return claims, nil
}
