package service

import (
	"fmt"

	"sportsbook-ledger/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenVerifier implements ports.TokenVerifier using HS256 JWT.
// Token issuance belongs to the upstream platform; this side only
// verifies and extracts the account identity.
type JWTTokenVerifier struct {
	secret []byte
	issuer string
}

// NewJWTTokenVerifier creates a new JWT token verifier.
func NewJWTTokenVerifier(secret, issuer string) *JWTTokenVerifier {
	return &JWTTokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses and validates a JWT token, returning the claims.
func (s *JWTTokenVerifier) Verify(tokenString string) (*ports.TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	username, _ := claims["username"].(string)

	return &ports.TokenClaims{
		AccountID: sub,
		Username:  username,
	}, nil
}
