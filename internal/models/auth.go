package models

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. A set_password token is only good for the set-password
// endpoint; a full token unlocks the whole trainer portal.
const (
	ScopeFull        = "full"
	ScopeSetPassword = "set_password"
)

type TokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TrainerID returns the subject claim as the trainer's integer id
func (c *TokenClaims) TrainerID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
