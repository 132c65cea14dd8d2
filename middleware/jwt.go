package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is the issuer claim stamped by the identity service.
const tokenIssuer = "momentum-id"

// Claims is the JWT payload. Tokens are issued by the identity service;
// this server only parses and validates them.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

var errInvalidToken = errors.New("middleware: invalid token")

// GenerateToken signs a JWT for the given user with the given secret and TTL.
// Used by tests and local tooling; production tokens come from the identity
// service with the same shape.
func GenerateToken(userID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a token string and returns its claims. The signing
// algorithm is pinned to HS256 and the issuer, expiry, and a positive user
// ID are all required, so a token minted elsewhere cannot slip through on
// a shared secret alone.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, errInvalidToken
	}
	return claims, nil
}
