package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/edustack/trainer-portal/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager issues and validates signed, expiring, scoped bearer
// tokens. Validity is purely signature + expiry; there is no server-side
// revocation.
type TokenManager struct {
	secret            string
	method            jwt.SigningMethod
	tokenExpiry       time.Duration
	setPasswordExpiry time.Duration
}

// NewTokenManager creates a TokenManager. algorithm must name a symmetric
// HMAC method (HS256/HS384/HS512); config validation guarantees this.
func NewTokenManager(secret, algorithm string, tokenExpiry, setPasswordExpiry time.Duration) (*TokenManager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}

	return &TokenManager{
		secret:            secret,
		method:            method,
		tokenExpiry:       tokenExpiry,
		setPasswordExpiry: setPasswordExpiry,
	}, nil
}

// Generate creates a signed token for the trainer with the given scope.
// set_password-scope tokens get their own TTL.
func (tm *TokenManager) Generate(trainer *models.Trainer, scope string) (string, error) {
	ttl := tm.tokenExpiry
	if scope == models.ScopeSetPassword {
		ttl = tm.setPasswordExpiry
	}

	now := time.Now()
	claims := &models.TokenClaims{
		Email: trainer.Email,
		Name:  trainer.Name,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(trainer.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies a token and returns its claims
func (tm *TokenManager) Validate(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Scope == "" {
		return nil, fmt.Errorf("invalid token: missing scope")
	}

	return claims, nil
}
